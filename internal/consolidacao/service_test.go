package consolidacao

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type stubRepo struct {
	itens map[uuid.UUID]Acompanhamento
}

func newStubRepo() *stubRepo {
	return &stubRepo{itens: map[uuid.UUID]Acompanhamento{}}
}

func (s *stubRepo) List(_ context.Context, etapa Etapa) ([]Acompanhamento, error) {
	var out []Acompanhamento
	for _, a := range s.itens {
		if etapa == "" || a.Etapa == etapa {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubRepo) Get(_ context.Context, id uuid.UUID) (Acompanhamento, error) {
	a, ok := s.itens[id]
	if !ok {
		return Acompanhamento{}, errNaoEncontrado
	}
	return a, nil
}

func (s *stubRepo) Create(_ context.Context, a Acompanhamento) (Acompanhamento, error) {
	a.ID = uuid.New()
	s.itens[a.ID] = a
	return a, nil
}

func (s *stubRepo) UpdateEtapa(_ context.Context, id uuid.UUID, etapa Etapa, observacao *string) error {
	a, ok := s.itens[id]
	if !ok {
		return errNaoEncontrado
	}
	a.Etapa = etapa
	if observacao != nil {
		a.Observacao = observacao
	}
	s.itens[id] = a
	return nil
}

func (s *stubRepo) UpdateResponsavel(_ context.Context, id uuid.UUID, responsavel *uuid.UUID) error {
	a, ok := s.itens[id]
	if !ok {
		return errNaoEncontrado
	}
	a.Responsavel = responsavel
	s.itens[id] = a
	return nil
}

func TestAvancarEtapaSegueProgressao(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	a, err := svc.Iniciar(context.Background(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("iniciar: %v", err)
	}
	if a.Etapa != EtapaNovoConvertido {
		t.Fatalf("etapa inicial = %s, esperado %s", a.Etapa, EtapaNovoConvertido)
	}

	esperadas := []Etapa{EtapaContato, EtapaVisita, EtapaIntegrado}
	for _, esperada := range esperadas {
		atual, err := svc.AvancarEtapa(context.Background(), a.ID, nil)
		if err != nil {
			t.Fatalf("avançar para %s: %v", esperada, err)
		}
		if atual.Etapa != esperada {
			t.Fatalf("etapa = %s, esperado %s", atual.Etapa, esperada)
		}
	}
}

func TestAvancarEtapaFinalRetornaConflito(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	a, _ := svc.Iniciar(context.Background(), uuid.New(), nil)
	for i := 0; i < 3; i++ {
		if _, err := svc.AvancarEtapa(context.Background(), a.ID, nil); err != nil {
			t.Fatalf("avançar %d: %v", i, err)
		}
	}

	if _, err := svc.AvancarEtapa(context.Background(), a.ID, nil); !errors.Is(err, ErrEtapaFinal) {
		t.Fatalf("err = %v, esperado ErrEtapaFinal", err)
	}
}

func TestAvancarEtapaInexistente(t *testing.T) {
	svc := NewService(newStubRepo())

	if _, err := svc.AvancarEtapa(context.Background(), uuid.New(), nil); !errors.Is(err, ErrNaoEncontrado) {
		t.Fatalf("err = %v, esperado ErrNaoEncontrado", err)
	}
}

func TestListarEtapaInvalida(t *testing.T) {
	svc := NewService(newStubRepo())

	if _, err := svc.Listar(context.Background(), Etapa("qualquer")); !errors.Is(err, ErrValidacao) {
		t.Fatalf("err = %v, esperado ErrValidacao", err)
	}
}
