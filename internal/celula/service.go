package celula

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrNaoEncontrada indica célula ou realização inexistente.
	ErrNaoEncontrada = errors.New("célula ou realização não encontrada")
	// ErrEdicaoBloqueada indica realização fechada: a próxima reunião já chegou.
	ErrEdicaoBloqueada = errors.New("realização bloqueada para edição")
	// ErrTransicaoPD indica tentativa de aprovar/rejeitar PD fora do estado pendente.
	ErrTransicaoPD = errors.New("valor de PD já foi avaliado")
	// ErrValidacao indica entrada inválida.
	ErrValidacao = errors.New("dados inválidos")
)

// CelulaRepository é o contrato de persistência do módulo de células.
type CelulaRepository interface {
	ListCelulas(context.Context) ([]Celula, error)
	GetCelula(context.Context, uuid.UUID) (Celula, error)
	CreateCelula(context.Context, Celula) (Celula, error)
	UpdateCelula(context.Context, Celula) error
	DeleteCelula(context.Context, uuid.UUID) error
	CreateRealizacao(context.Context, Realizacao) (Realizacao, error)
	UpdateRealizacao(context.Context, Realizacao) error
	GetRealizacao(context.Context, uuid.UUID) (Realizacao, error)
	ListRealizacoesPorMes(context.Context, string) ([]Realizacao, error)
	UpdateStatusPD(context.Context, uuid.UUID, StatusPD) error
}

// Service contém as regras do módulo de células.
type Service struct {
	repo  CelulaRepository
	cache *redis.Client
	agora func() time.Time
}

func NewService(repo CelulaRepository, cache *redis.Client) *Service {
	return &Service{repo: repo, cache: cache, agora: time.Now}
}

func (s *Service) ListCelulas(ctx context.Context) ([]Celula, error) {
	return s.repo.ListCelulas(ctx)
}

func (s *Service) GetCelula(ctx context.Context, id uuid.UUID) (Celula, error) {
	c, err := s.repo.GetCelula(ctx, id)
	if err != nil {
		return Celula{}, s.traduzErro(err)
	}
	return c, nil
}

func (s *Service) CriarCelula(ctx context.Context, c Celula) (Celula, error) {
	if strings.TrimSpace(c.Nome) == "" {
		return Celula{}, fmt.Errorf("%w: nome obrigatório", ErrValidacao)
	}
	return s.repo.CreateCelula(ctx, c)
}

func (s *Service) AtualizarCelula(ctx context.Context, c Celula) error {
	if strings.TrimSpace(c.Nome) == "" {
		return fmt.Errorf("%w: nome obrigatório", ErrValidacao)
	}
	return s.traduzErro(s.repo.UpdateCelula(ctx, c))
}

func (s *Service) ExcluirCelula(ctx context.Context, id uuid.UUID) error {
	return s.traduzErro(s.repo.DeleteCelula(ctx, id))
}

// RegistrarRealizacao grava a reunião do dia. O mês de referência deriva
// da data quando não informado.
func (s *Service) RegistrarRealizacao(ctx context.Context, realizacao Realizacao) (Realizacao, error) {
	if realizacao.CelulaID == uuid.Nil || realizacao.Data.IsZero() {
		return Realizacao{}, fmt.Errorf("%w: célula e data são obrigatórios", ErrValidacao)
	}
	if _, err := s.repo.GetCelula(ctx, realizacao.CelulaID); err != nil {
		return Realizacao{}, s.traduzErro(err)
	}
	if realizacao.MesReferencia == "" {
		realizacao.MesReferencia = realizacao.Data.Format("2006-01")
	}
	realizacao.StatusPD = PDPendente

	criada, err := s.repo.CreateRealizacao(ctx, realizacao)
	if err != nil {
		return Realizacao{}, err
	}
	s.invalidarElite(ctx, criada.MesReferencia)
	return criada, nil
}

// EditarRealizacao aceita a mutação enquanto a janela de edição estiver
// aberta: ela fecha exatamente quando a próxima reunião da agenda começa.
// liberadoPorAprovador pula a trava (código nomeado aprovar_edicao).
func (s *Service) EditarRealizacao(ctx context.Context, realizacao Realizacao, liberadoPorAprovador bool) error {
	existente, err := s.repo.GetRealizacao(ctx, realizacao.ID)
	if err != nil {
		return s.traduzErro(err)
	}

	if !liberadoPorAprovador {
		c, err := s.repo.GetCelula(ctx, existente.CelulaID)
		if err != nil {
			return s.traduzErro(err)
		}
		if !s.agora().Before(TravaEdicao(c.Agenda, existente.Data)) {
			return ErrEdicaoBloqueada
		}
	}

	realizacao.CelulaID = existente.CelulaID
	if realizacao.Data.IsZero() {
		realizacao.Data = existente.Data
	}
	if realizacao.MesReferencia == "" {
		realizacao.MesReferencia = realizacao.Data.Format("2006-01")
	}

	if err := s.repo.UpdateRealizacao(ctx, realizacao); err != nil {
		return s.traduzErro(err)
	}
	s.invalidarElite(ctx, existente.MesReferencia)
	s.invalidarElite(ctx, realizacao.MesReferencia)
	return nil
}

func (s *Service) GetRealizacao(ctx context.Context, id uuid.UUID) (Realizacao, error) {
	realizacao, err := s.repo.GetRealizacao(ctx, id)
	if err != nil {
		return Realizacao{}, s.traduzErro(err)
	}
	return realizacao, nil
}

// AprovarPD transiciona o valor pendente para aprovado.
func (s *Service) AprovarPD(ctx context.Context, id uuid.UUID) error {
	return s.avaliarPD(ctx, id, PDAprovado)
}

// RejeitarPD transiciona o valor pendente para rejeitado.
func (s *Service) RejeitarPD(ctx context.Context, id uuid.UUID) error {
	return s.avaliarPD(ctx, id, PDRejeitado)
}

func (s *Service) avaliarPD(ctx context.Context, id uuid.UUID, status StatusPD) error {
	realizacao, err := s.repo.GetRealizacao(ctx, id)
	if err != nil {
		return s.traduzErro(err)
	}
	if realizacao.StatusPD != PDPendente {
		return ErrTransicaoPD
	}
	if err := s.repo.UpdateStatusPD(ctx, id, status); err != nil {
		return s.traduzErro(err)
	}
	s.invalidarElite(ctx, realizacao.MesReferencia)
	return nil
}

// CelulasEliteDoMes recalcula o conjunto elite do mês e devolve as células
// qualificadas, com cache curto em Redis (best-effort).
func (s *Service) CelulasEliteDoMes(ctx context.Context, mesReferencia string) ([]Celula, error) {
	key := "celulas:elite:" + mesReferencia
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var celulas []Celula
			if json.Unmarshal(data, &celulas) == nil {
				return celulas, nil
			}
		}
	}

	realizacoes, err := s.repo.ListRealizacoesPorMes(ctx, mesReferencia)
	if err != nil {
		return nil, err
	}
	elite := CelulasElite(realizacoes, mesReferencia)

	todas, err := s.repo.ListCelulas(ctx)
	if err != nil {
		return nil, err
	}

	qualificadas := make([]Celula, 0, len(elite))
	for _, c := range todas {
		if _, ok := elite[c.ID]; ok {
			qualificadas = append(qualificadas, c)
		}
	}

	if s.cache != nil {
		if payload, err := json.Marshal(qualificadas); err == nil {
			_ = s.cache.Set(ctx, key, payload, 60*time.Second).Err()
		}
	}
	return qualificadas, nil
}

func (s *Service) invalidarElite(ctx context.Context, mesReferencia string) {
	if s.cache == nil || mesReferencia == "" {
		return
	}
	_ = s.cache.Del(ctx, "celulas:elite:"+mesReferencia).Err()
}

func (s *Service) traduzErro(err error) error {
	if errors.Is(err, errNaoEncontrado) {
		return ErrNaoEncontrada
	}
	return err
}
