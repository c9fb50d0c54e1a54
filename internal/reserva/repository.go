package reserva

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	errNaoEncontrada = errors.New("não encontrada")
	errConflito      = errors.New("horário em conflito")
)

const dbTimeout = 3 * time.Second

// Sala é um espaço reservável da igreja.
type Sala struct {
	ID         uuid.UUID `json:"id"`
	Nome       string    `json:"nome"`
	Capacidade int       `json:"capacidade"`
	Ativa      bool      `json:"ativa"`
	CriadoEm   time.Time `json:"criado_em"`
}

// Reserva ocupa uma sala num intervalo meio-aberto [inicio, fim).
type Reserva struct {
	ID          uuid.UUID `json:"id"`
	SalaID      uuid.UUID `json:"sala_id"`
	Titulo      string    `json:"titulo"`
	Responsavel string    `json:"responsavel"`
	Inicio      time.Time `json:"inicio"`
	Fim         time.Time `json:"fim"`
	CriadoEm    time.Time `json:"criado_em"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListSalas(ctx context.Context) ([]Sala, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, nome, capacidade, ativa, criado_em
		FROM reserva_salas
		ORDER BY nome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var salas []Sala
	for rows.Next() {
		var s Sala
		if err := rows.Scan(&s.ID, &s.Nome, &s.Capacidade, &s.Ativa, &s.CriadoEm); err != nil {
			return nil, err
		}
		salas = append(salas, s)
	}
	return salas, rows.Err()
}

func (r *Repository) GetSala(ctx context.Context, id uuid.UUID) (Sala, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var s Sala
	err := r.db.QueryRow(ctx, `
		SELECT id, nome, capacidade, ativa, criado_em
		FROM reserva_salas
		WHERE id = $1`, id).
		Scan(&s.ID, &s.Nome, &s.Capacidade, &s.Ativa, &s.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sala{}, errNaoEncontrada
		}
		return Sala{}, err
	}
	return s, nil
}

func (r *Repository) CreateSala(ctx context.Context, s Sala) (Sala, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	s.ID = uuid.New()
	s.CriadoEm = time.Now()
	_, err := r.db.Exec(ctx, `
		INSERT INTO reserva_salas (id, nome, capacidade, ativa, criado_em)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.Nome, s.Capacidade, s.Ativa, s.CriadoEm)
	if err != nil {
		return Sala{}, err
	}
	return s, nil
}

func (r *Repository) UpdateSala(ctx context.Context, s Sala) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE reserva_salas
		SET nome = $2, capacidade = $3, ativa = $4
		WHERE id = $1`,
		s.ID, s.Nome, s.Capacidade, s.Ativa)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrada
	}
	return nil
}

func (r *Repository) ListReservas(ctx context.Context, salaID uuid.UUID, de, ate time.Time) ([]Reserva, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, sala_id, titulo, responsavel, inicio, fim, criado_em
		FROM reservas
		WHERE sala_id = $1 AND fim > $2 AND inicio < $3
		ORDER BY inicio`, salaID, de, ate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservas []Reserva
	for rows.Next() {
		var res Reserva
		if err := rows.Scan(&res.ID, &res.SalaID, &res.Titulo, &res.Responsavel, &res.Inicio, &res.Fim, &res.CriadoEm); err != nil {
			return nil, err
		}
		reservas = append(reservas, res)
	}
	return reservas, rows.Err()
}

// CreateReserva grava a reserva se nenhuma outra ocupar o intervalo. A
// checagem e o insert rodam na mesma instrução para não abrir janela entre
// o SELECT e o INSERT.
func (r *Repository) CreateReserva(ctx context.Context, res Reserva) (Reserva, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	res.ID = uuid.New()
	res.CriadoEm = time.Now()

	tag, err := r.db.Exec(ctx, `
		INSERT INTO reservas (id, sala_id, titulo, responsavel, inicio, fim, criado_em)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE NOT EXISTS (
			SELECT 1 FROM reservas
			WHERE sala_id = $2 AND fim > $5 AND inicio < $6
		)`,
		res.ID, res.SalaID, res.Titulo, res.Responsavel, res.Inicio, res.Fim, res.CriadoEm)
	if err != nil {
		return Reserva{}, err
	}
	if tag.RowsAffected() == 0 {
		return Reserva{}, errConflito
	}
	return res, nil
}

func (r *Repository) DeleteReserva(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM reservas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrada
	}
	return nil
}
