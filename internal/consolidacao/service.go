package consolidacao

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Etapa é o estágio do acompanhamento de um novo convertido.
type Etapa string

const (
	EtapaNovoConvertido Etapa = "novo_convertido"
	EtapaContato        Etapa = "contato"
	EtapaVisita         Etapa = "visita"
	EtapaIntegrado      Etapa = "integrado"
)

// ordemEtapas define a progressão. O avanço é sempre para a próxima; não há
// retorno nem salto de etapa.
var ordemEtapas = []Etapa{EtapaNovoConvertido, EtapaContato, EtapaVisita, EtapaIntegrado}

var (
	ErrNaoEncontrado = errors.New("acompanhamento não encontrado")
	ErrEtapaFinal    = errors.New("acompanhamento já integrado")
	ErrValidacao     = errors.New("dados inválidos")
)

// AcompanhamentoRepository abstrai a persistência da consolidação.
type AcompanhamentoRepository interface {
	List(ctx context.Context, etapa Etapa) ([]Acompanhamento, error)
	Get(ctx context.Context, id uuid.UUID) (Acompanhamento, error)
	Create(ctx context.Context, a Acompanhamento) (Acompanhamento, error)
	UpdateEtapa(ctx context.Context, id uuid.UUID, etapa Etapa, observacao *string) error
	UpdateResponsavel(ctx context.Context, id uuid.UUID, responsavel *uuid.UUID) error
}

type Service struct {
	repo AcompanhamentoRepository
}

func NewService(repo AcompanhamentoRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Listar(ctx context.Context, etapa Etapa) ([]Acompanhamento, error) {
	if etapa != "" && !etapaValida(etapa) {
		return nil, ErrValidacao
	}
	itens, err := s.repo.List(ctx, etapa)
	if err != nil {
		return nil, err
	}
	if itens == nil {
		itens = []Acompanhamento{}
	}
	return itens, nil
}

func (s *Service) Iniciar(ctx context.Context, pessoaID uuid.UUID, responsavel *uuid.UUID) (Acompanhamento, error) {
	if pessoaID == uuid.Nil {
		return Acompanhamento{}, ErrValidacao
	}
	return s.repo.Create(ctx, Acompanhamento{
		PessoaID:    pessoaID,
		Responsavel: responsavel,
		Etapa:       EtapaNovoConvertido,
	})
}

// AvancarEtapa move o acompanhamento para a próxima etapa da progressão.
func (s *Service) AvancarEtapa(ctx context.Context, id uuid.UUID, observacao *string) (Acompanhamento, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, errNaoEncontrado) {
			return Acompanhamento{}, ErrNaoEncontrado
		}
		return Acompanhamento{}, err
	}

	proxima, ok := proximaEtapa(a.Etapa)
	if !ok {
		return Acompanhamento{}, ErrEtapaFinal
	}
	if err := s.repo.UpdateEtapa(ctx, id, proxima, observacao); err != nil {
		if errors.Is(err, errNaoEncontrado) {
			return Acompanhamento{}, ErrNaoEncontrado
		}
		return Acompanhamento{}, err
	}
	a.Etapa = proxima
	if observacao != nil {
		a.Observacao = observacao
	}
	return a, nil
}

func (s *Service) AtribuirResponsavel(ctx context.Context, id uuid.UUID, responsavel *uuid.UUID) error {
	if err := s.repo.UpdateResponsavel(ctx, id, responsavel); err != nil {
		if errors.Is(err, errNaoEncontrado) {
			return ErrNaoEncontrado
		}
		return err
	}
	return nil
}

func proximaEtapa(atual Etapa) (Etapa, bool) {
	for i, e := range ordemEtapas {
		if e == atual && i < len(ordemEtapas)-1 {
			return ordemEtapas[i+1], true
		}
	}
	return "", false
}

func etapaValida(e Etapa) bool {
	for _, v := range ordemEtapas {
		if v == e {
			return true
		}
	}
	return false
}
