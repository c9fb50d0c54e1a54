package consolidacao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errNaoEncontrado = errors.New("não encontrado")

const dbTimeout = 3 * time.Second

// Acompanhamento liga um novo convertido ao responsável pela consolidação.
type Acompanhamento struct {
	ID           uuid.UUID  `json:"id"`
	PessoaID     uuid.UUID  `json:"pessoa_id"`
	PessoaNome   string     `json:"pessoa_nome"`
	Responsavel  *uuid.UUID `json:"responsavel_id,omitempty"`
	Etapa        Etapa      `json:"etapa"`
	Observacao   *string    `json:"observacao,omitempty"`
	CriadoEm     time.Time  `json:"criado_em"`
	AtualizadoEm time.Time  `json:"atualizado_em"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context, etapa Etapa) ([]Acompanhamento, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `
		SELECT a.id, a.pessoa_id, p.nome, a.responsavel_id, a.etapa, a.observacao, a.criado_em, a.atualizado_em
		FROM acompanhamentos a
		JOIN pessoas p ON p.id = a.pessoa_id`
	args := []any{}
	if etapa != "" {
		query += " WHERE a.etapa = $1"
		args = append(args, string(etapa))
	}
	query += " ORDER BY a.atualizado_em DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var itens []Acompanhamento
	for rows.Next() {
		a, err := scanAcompanhamento(rows)
		if err != nil {
			return nil, err
		}
		itens = append(itens, a)
	}
	return itens, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Acompanhamento, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT a.id, a.pessoa_id, p.nome, a.responsavel_id, a.etapa, a.observacao, a.criado_em, a.atualizado_em
		FROM acompanhamentos a
		JOIN pessoas p ON p.id = a.pessoa_id
		WHERE a.id = $1`, id)

	a, err := scanAcompanhamento(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Acompanhamento{}, errNaoEncontrado
		}
		return Acompanhamento{}, err
	}
	return a, nil
}

func (r *Repository) Create(ctx context.Context, a Acompanhamento) (Acompanhamento, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	a.ID = uuid.New()
	agora := time.Now()
	a.CriadoEm = agora
	a.AtualizadoEm = agora
	_, err := r.db.Exec(ctx, `
		INSERT INTO acompanhamentos (id, pessoa_id, responsavel_id, etapa, observacao, criado_em, atualizado_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.PessoaID, a.Responsavel, string(a.Etapa), a.Observacao, a.CriadoEm, a.AtualizadoEm)
	if err != nil {
		return Acompanhamento{}, err
	}
	return a, nil
}

func (r *Repository) UpdateEtapa(ctx context.Context, id uuid.UUID, etapa Etapa, observacao *string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE acompanhamentos
		SET etapa = $2, observacao = COALESCE($3, observacao), atualizado_em = NOW()
		WHERE id = $1`, id, string(etapa), observacao)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrado
	}
	return nil
}

func (r *Repository) UpdateResponsavel(ctx context.Context, id uuid.UUID, responsavel *uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE acompanhamentos
		SET responsavel_id = $2, atualizado_em = NOW()
		WHERE id = $1`, id, responsavel)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrado
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAcompanhamento(row rowScanner) (Acompanhamento, error) {
	var a Acompanhamento
	var etapa string
	if err := row.Scan(&a.ID, &a.PessoaID, &a.PessoaNome, &a.Responsavel, &etapa, &a.Observacao, &a.CriadoEm, &a.AtualizadoEm); err != nil {
		return Acompanhamento{}, err
	}
	a.Etapa = Etapa(etapa)
	return a, nil
}
