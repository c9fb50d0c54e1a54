package reserva

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNaoEncontrada = errors.New("registro não encontrado")
	ErrConflito      = errors.New("horário em conflito")
	ErrSalaInativa   = errors.New("sala inativa")
	ErrValidacao     = errors.New("dados inválidos")
)

// ReservaRepository abstrai a persistência de salas e reservas.
type ReservaRepository interface {
	ListSalas(ctx context.Context) ([]Sala, error)
	GetSala(ctx context.Context, id uuid.UUID) (Sala, error)
	CreateSala(ctx context.Context, s Sala) (Sala, error)
	UpdateSala(ctx context.Context, s Sala) error
	ListReservas(ctx context.Context, salaID uuid.UUID, de, ate time.Time) ([]Reserva, error)
	CreateReserva(ctx context.Context, res Reserva) (Reserva, error)
	DeleteReserva(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo ReservaRepository
}

func NewService(repo ReservaRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListarSalas(ctx context.Context) ([]Sala, error) {
	salas, err := s.repo.ListSalas(ctx)
	if err != nil {
		return nil, err
	}
	if salas == nil {
		salas = []Sala{}
	}
	return salas, nil
}

func (s *Service) CriarSala(ctx context.Context, sala Sala) (Sala, error) {
	sala.Nome = strings.TrimSpace(sala.Nome)
	if sala.Nome == "" || sala.Capacidade < 0 {
		return Sala{}, ErrValidacao
	}
	return s.repo.CreateSala(ctx, sala)
}

func (s *Service) AtualizarSala(ctx context.Context, sala Sala) (Sala, error) {
	sala.Nome = strings.TrimSpace(sala.Nome)
	if sala.Nome == "" || sala.Capacidade < 0 {
		return Sala{}, ErrValidacao
	}
	if err := s.repo.UpdateSala(ctx, sala); err != nil {
		return Sala{}, traduzirErro(err)
	}
	return sala, nil
}

func (s *Service) ListarReservas(ctx context.Context, salaID uuid.UUID, de, ate time.Time) ([]Reserva, error) {
	if !ate.After(de) {
		return nil, ErrValidacao
	}
	reservas, err := s.repo.ListReservas(ctx, salaID, de, ate)
	if err != nil {
		return nil, err
	}
	if reservas == nil {
		reservas = []Reserva{}
	}
	return reservas, nil
}

// Reservar ocupa a sala no intervalo pedido. Intervalos que apenas se
// encostam (fim de um igual ao início do outro) não conflitam.
func (s *Service) Reservar(ctx context.Context, res Reserva) (Reserva, error) {
	res.Titulo = strings.TrimSpace(res.Titulo)
	res.Responsavel = strings.TrimSpace(res.Responsavel)
	if res.Titulo == "" || res.Responsavel == "" || !res.Fim.After(res.Inicio) {
		return Reserva{}, ErrValidacao
	}

	sala, err := s.repo.GetSala(ctx, res.SalaID)
	if err != nil {
		return Reserva{}, traduzirErro(err)
	}
	if !sala.Ativa {
		return Reserva{}, ErrSalaInativa
	}

	criada, err := s.repo.CreateReserva(ctx, res)
	if err != nil {
		if errors.Is(err, errConflito) {
			return Reserva{}, ErrConflito
		}
		return Reserva{}, err
	}
	return criada, nil
}

func (s *Service) Cancelar(ctx context.Context, id uuid.UUID) error {
	return traduzirErro(s.repo.DeleteReserva(ctx, id))
}

func traduzirErro(err error) error {
	if errors.Is(err, errNaoEncontrada) {
		return ErrNaoEncontrada
	}
	return err
}
