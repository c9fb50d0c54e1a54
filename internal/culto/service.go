package culto

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNaoEncontrado indica culto ou registro inexistente.
	ErrNaoEncontrado = errors.New("culto não encontrado")
	// ErrValidacao indica entrada inválida.
	ErrValidacao = errors.New("dados inválidos")
)

// CultoRepository é o contrato de persistência do módulo de cultos.
type CultoRepository interface {
	ListDefinicoes(context.Context) ([]Definicao, error)
	CreateDefinicao(context.Context, Definicao) (Definicao, error)
	UpdateDefinicao(context.Context, Definicao) error
	DeleteDefinicao(context.Context, uuid.UUID) error
	CreatePresenca(context.Context, RegistroPresenca) (RegistroPresenca, error)
	ContarPresencas(context.Context, time.Time, time.Time) (int, error)
}

// FrequenciaPeriodo consolida a frequência de um intervalo: quantos cultos
// aconteceram de fato e quantos registros de presença existem.
type FrequenciaPeriodo struct {
	Inicio               string  `json:"inicio"`
	Fim                  string  `json:"fim"`
	OcorrenciasPrevistas int     `json:"ocorrencias_previstas"`
	RegistrosPresenca    int     `json:"registros_presenca"`
	Cobertura            float64 `json:"cobertura"`
}

// Service contém as regras do módulo de cultos.
type Service struct {
	repo  CultoRepository
	agora func() time.Time
}

func NewService(repo CultoRepository) *Service {
	return &Service{repo: repo, agora: time.Now}
}

func (s *Service) ListDefinicoes(ctx context.Context) ([]Definicao, error) {
	return s.repo.ListDefinicoes(ctx)
}

func (s *Service) CriarDefinicao(ctx context.Context, def Definicao) (Definicao, error) {
	if err := validarDefinicao(def); err != nil {
		return Definicao{}, err
	}
	return s.repo.CreateDefinicao(ctx, def)
}

func (s *Service) AtualizarDefinicao(ctx context.Context, def Definicao) error {
	if err := validarDefinicao(def); err != nil {
		return err
	}
	if err := s.repo.UpdateDefinicao(ctx, def); err != nil {
		if errors.Is(err, errNaoEncontrado) {
			return ErrNaoEncontrado
		}
		return err
	}
	return nil
}

func (s *Service) ExcluirDefinicao(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteDefinicao(ctx, id); err != nil {
		if errors.Is(err, errNaoEncontrado) {
			return ErrNaoEncontrado
		}
		return err
	}
	return nil
}

// RegistrarPresenca grava a contagem de presentes de um culto realizado.
func (s *Service) RegistrarPresenca(ctx context.Context, registro RegistroPresenca) (RegistroPresenca, error) {
	if registro.CultoID == uuid.Nil || registro.Data.IsZero() {
		return RegistroPresenca{}, fmt.Errorf("%w: culto e data são obrigatórios", ErrValidacao)
	}
	if registro.Presentes < 0 {
		return RegistroPresenca{}, fmt.Errorf("%w: presentes não pode ser negativo", ErrValidacao)
	}

	criado, err := s.repo.CreatePresenca(ctx, registro)
	if err != nil {
		if errors.Is(err, errNaoEncontrado) {
			return RegistroPresenca{}, ErrNaoEncontrado
		}
		return RegistroPresenca{}, err
	}
	return criado, nil
}

// FrequenciaNoPeriodo conta quantos cultos deveriam ter acontecido no
// intervalo (limitado a hoje) e compara com os registros de presença.
func (s *Service) FrequenciaNoPeriodo(ctx context.Context, inicioStr, fimStr string) (FrequenciaPeriodo, error) {
	inicio, err := ParseData(strings.TrimSpace(inicioStr))
	if err != nil {
		return FrequenciaPeriodo{}, fmt.Errorf("%w: início inválido", ErrValidacao)
	}
	fim, err := ParseData(strings.TrimSpace(fimStr))
	if err != nil {
		return FrequenciaPeriodo{}, fmt.Errorf("%w: fim inválido", ErrValidacao)
	}

	defs, err := s.repo.ListDefinicoes(ctx)
	if err != nil {
		return FrequenciaPeriodo{}, err
	}

	previstas := ContarOcorrencias(defs, inicio, fim, s.agora())

	registros, err := s.repo.ContarPresencas(ctx, inicio, fim.AddDate(0, 0, 1).Add(-time.Nanosecond))
	if err != nil {
		return FrequenciaPeriodo{}, err
	}

	freq := FrequenciaPeriodo{
		Inicio:               inicio.Format("2006-01-02"),
		Fim:                  fim.Format("2006-01-02"),
		OcorrenciasPrevistas: previstas,
		RegistrosPresenca:    registros,
	}
	if previstas > 0 {
		freq.Cobertura = float64(registros) / float64(previstas)
	}
	return freq, nil
}

func validarDefinicao(def Definicao) error {
	if strings.TrimSpace(def.Nome) == "" {
		return fmt.Errorf("%w: nome obrigatório", ErrValidacao)
	}
	if def.DiaSemana < time.Sunday || def.DiaSemana > time.Saturday {
		return fmt.Errorf("%w: dia da semana deve estar entre 0 e 6", ErrValidacao)
	}
	return nil
}
