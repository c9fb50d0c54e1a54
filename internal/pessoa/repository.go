package pessoa

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	errNaoEncontrada = errors.New("não encontrada")
)

const dbTimeout = 3 * time.Second

// Tipo distingue membro de visitante no cadastro.
type Tipo string

const (
	TipoMembro    Tipo = "membro"
	TipoVisitante Tipo = "visitante"
)

// Pessoa é o registro de membresia.
type Pessoa struct {
	ID         uuid.UUID  `json:"id"`
	Nome       string     `json:"nome"`
	Email      *string    `json:"email,omitempty"`
	Telefone   *string    `json:"telefone,omitempty"`
	Nascimento *time.Time `json:"nascimento,omitempty"`
	BatizadoEm *time.Time `json:"batizado_em,omitempty"`
	Tipo       Tipo       `json:"tipo"`
	CelulaID   *uuid.UUID `json:"celula_id,omitempty"`
	CriadoEm   time.Time  `json:"criado_em"`
}

// FiltroBusca parametriza a listagem paginada.
type FiltroBusca struct {
	Termo    string
	Tipo     Tipo
	CelulaID *uuid.UUID
	Limite   int
	Offset   int
}

// Repository fornece acesso aos dados de pessoas.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context, filtro FiltroBusca) ([]Pessoa, int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	where := []string{"TRUE"}
	args := []any{}

	if termo := strings.TrimSpace(filtro.Termo); termo != "" {
		args = append(args, "%"+termo+"%")
		where = append(where, "nome ILIKE $"+itoa(len(args)))
	}
	if filtro.Tipo != "" {
		args = append(args, string(filtro.Tipo))
		where = append(where, "tipo = $"+itoa(len(args)))
	}
	if filtro.CelulaID != nil {
		args = append(args, *filtro.CelulaID)
		where = append(where, "celula_id = $"+itoa(len(args)))
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM pessoas WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limite := filtro.Limite
	if limite <= 0 || limite > 100 {
		limite = 50
	}
	args = append(args, limite)
	limitArg := itoa(len(args))
	args = append(args, filtro.Offset)
	offsetArg := itoa(len(args))

	rows, err := r.db.Query(ctx, `
		SELECT id, nome, email, telefone, nascimento, batizado_em, tipo, celula_id, criado_em
		FROM pessoas
		WHERE `+cond+`
		ORDER BY nome
		LIMIT $`+limitArg+` OFFSET $`+offsetArg, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var pessoas []Pessoa
	for rows.Next() {
		p, err := scanPessoa(rows)
		if err != nil {
			return nil, 0, err
		}
		pessoas = append(pessoas, p)
	}
	return pessoas, total, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Pessoa, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT id, nome, email, telefone, nascimento, batizado_em, tipo, celula_id, criado_em
		FROM pessoas
		WHERE id = $1`, id)

	p, err := scanPessoa(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Pessoa{}, errNaoEncontrada
		}
		return Pessoa{}, err
	}
	return p, nil
}

func (r *Repository) Create(ctx context.Context, p Pessoa) (Pessoa, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	p.ID = uuid.New()
	p.CriadoEm = time.Now()
	_, err := r.db.Exec(ctx, `
		INSERT INTO pessoas (id, nome, email, telefone, nascimento, batizado_em, tipo, celula_id, criado_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Nome, p.Email, p.Telefone, p.Nascimento, p.BatizadoEm, string(p.Tipo), p.CelulaID, p.CriadoEm)
	if err != nil {
		return Pessoa{}, err
	}
	return p, nil
}

func (r *Repository) Update(ctx context.Context, p Pessoa) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE pessoas
		SET nome = $2, email = $3, telefone = $4, nascimento = $5, batizado_em = $6, tipo = $7, celula_id = $8
		WHERE id = $1`,
		p.ID, p.Nome, p.Email, p.Telefone, p.Nascimento, p.BatizadoEm, string(p.Tipo), p.CelulaID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrada
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM pessoas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrada
	}
	return nil
}

type pessoaScanner interface {
	Scan(dest ...any) error
}

func scanPessoa(row pessoaScanner) (Pessoa, error) {
	var p Pessoa
	var tipo string
	if err := row.Scan(&p.ID, &p.Nome, &p.Email, &p.Telefone, &p.Nascimento, &p.BatizadoEm, &tipo, &p.CelulaID, &p.CriadoEm); err != nil {
		return Pessoa{}, err
	}
	p.Tipo = Tipo(tipo)
	return p, nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
