package reserva

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubRepo struct {
	salas    map[uuid.UUID]Sala
	reservas map[uuid.UUID]Reserva
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		salas:    map[uuid.UUID]Sala{},
		reservas: map[uuid.UUID]Reserva{},
	}
}

func (s *stubRepo) ListSalas(_ context.Context) ([]Sala, error) {
	var out []Sala
	for _, sala := range s.salas {
		out = append(out, sala)
	}
	return out, nil
}

func (s *stubRepo) GetSala(_ context.Context, id uuid.UUID) (Sala, error) {
	sala, ok := s.salas[id]
	if !ok {
		return Sala{}, errNaoEncontrada
	}
	return sala, nil
}

func (s *stubRepo) CreateSala(_ context.Context, sala Sala) (Sala, error) {
	sala.ID = uuid.New()
	s.salas[sala.ID] = sala
	return sala, nil
}

func (s *stubRepo) UpdateSala(_ context.Context, sala Sala) error {
	if _, ok := s.salas[sala.ID]; !ok {
		return errNaoEncontrada
	}
	s.salas[sala.ID] = sala
	return nil
}

func (s *stubRepo) ListReservas(_ context.Context, salaID uuid.UUID, de, ate time.Time) ([]Reserva, error) {
	var out []Reserva
	for _, res := range s.reservas {
		if res.SalaID == salaID && res.Fim.After(de) && res.Inicio.Before(ate) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (s *stubRepo) CreateReserva(_ context.Context, res Reserva) (Reserva, error) {
	for _, outra := range s.reservas {
		if outra.SalaID == res.SalaID && outra.Fim.After(res.Inicio) && outra.Inicio.Before(res.Fim) {
			return Reserva{}, errConflito
		}
	}
	res.ID = uuid.New()
	s.reservas[res.ID] = res
	return res, nil
}

func (s *stubRepo) DeleteReserva(_ context.Context, id uuid.UUID) error {
	if _, ok := s.reservas[id]; !ok {
		return errNaoEncontrada
	}
	delete(s.reservas, id)
	return nil
}

func montarSala(t *testing.T, repo *stubRepo) Sala {
	t.Helper()
	sala, err := repo.CreateSala(context.Background(), Sala{Nome: "Sala de Oração", Capacidade: 20, Ativa: true})
	if err != nil {
		t.Fatalf("criar sala: %v", err)
	}
	return sala
}

func novaReserva(salaID uuid.UUID, inicio, fim time.Time) Reserva {
	return Reserva{SalaID: salaID, Titulo: "Ensaio do coral", Responsavel: "Marta", Inicio: inicio, Fim: fim}
}

func TestReservarSemConflito(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	sala := montarSala(t, repo)

	base := time.Date(2024, 3, 10, 19, 0, 0, 0, time.Local)
	criada, err := svc.Reservar(context.Background(), novaReserva(sala.ID, base, base.Add(2*time.Hour)))
	if err != nil {
		t.Fatalf("reservar: %v", err)
	}
	if criada.ID == uuid.Nil {
		t.Fatal("reserva sem id")
	}
}

func TestReservarComSobreposicaoConflita(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	sala := montarSala(t, repo)

	base := time.Date(2024, 3, 10, 19, 0, 0, 0, time.Local)
	if _, err := svc.Reservar(context.Background(), novaReserva(sala.ID, base, base.Add(2*time.Hour))); err != nil {
		t.Fatalf("primeira reserva: %v", err)
	}

	_, err := svc.Reservar(context.Background(), novaReserva(sala.ID, base.Add(time.Hour), base.Add(3*time.Hour)))
	if !errors.Is(err, ErrConflito) {
		t.Fatalf("err = %v, esperado ErrConflito", err)
	}
}

func TestReservasEncostadasNaoConflitam(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	sala := montarSala(t, repo)

	base := time.Date(2024, 3, 10, 19, 0, 0, 0, time.Local)
	if _, err := svc.Reservar(context.Background(), novaReserva(sala.ID, base, base.Add(time.Hour))); err != nil {
		t.Fatalf("primeira reserva: %v", err)
	}
	if _, err := svc.Reservar(context.Background(), novaReserva(sala.ID, base.Add(time.Hour), base.Add(2*time.Hour))); err != nil {
		t.Fatalf("reserva encostada: %v", err)
	}
}

func TestReservarSalaInativa(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	sala := montarSala(t, repo)
	sala.Ativa = false
	repo.salas[sala.ID] = sala

	base := time.Date(2024, 3, 10, 19, 0, 0, 0, time.Local)
	if _, err := svc.Reservar(context.Background(), novaReserva(sala.ID, base, base.Add(time.Hour))); !errors.Is(err, ErrSalaInativa) {
		t.Fatalf("err = %v, esperado ErrSalaInativa", err)
	}
}

func TestReservarIntervaloInvertido(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	sala := montarSala(t, repo)

	base := time.Date(2024, 3, 10, 19, 0, 0, 0, time.Local)
	if _, err := svc.Reservar(context.Background(), novaReserva(sala.ID, base.Add(time.Hour), base)); !errors.Is(err, ErrValidacao) {
		t.Fatalf("err = %v, esperado ErrValidacao", err)
	}
}
