package social

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

// StatusPost é o ciclo de vida de uma publicação.
type StatusPost string

const (
	PostRascunho  StatusPost = "rascunho"
	PostAgendado  StatusPost = "agendado"
	PostPublicado StatusPost = "publicado"
	PostFalha     StatusPost = "falha"
)

// Post é uma publicação agendável para as redes da igreja.
type Post struct {
	ID           uuid.UUID  `json:"id"`
	Conteudo     string     `json:"conteudo"`
	ImagemURL    *string    `json:"imagem_url,omitempty"`
	Status       StatusPost `json:"status"`
	AgendadoPara *time.Time `json:"agendado_para,omitempty"`
	PublicadoEm  *time.Time `json:"publicado_em,omitempty"`
	IDExterno    *string    `json:"id_externo,omitempty"`
	Erro         *string    `json:"erro,omitempty"`
	CriadoEm     time.Time  `json:"criado_em"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context, status StatusPost) ([]Post, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `
		SELECT id, conteudo, imagem_url, status, agendado_para, publicado_em, id_externo, erro, criado_em
		FROM social_posts`
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, string(status))
	}
	query += " ORDER BY criado_em DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Post, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT id, conteudo, imagem_url, status, agendado_para, publicado_em, id_externo, erro, criado_em
		FROM social_posts
		WHERE id = $1`, id)

	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, errNaoEncontrado
		}
		return Post{}, err
	}
	return p, nil
}

func (r *Repository) Create(ctx context.Context, p Post) (Post, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	p.ID = uuid.New()
	p.CriadoEm = time.Now()
	_, err := r.db.Exec(ctx, `
		INSERT INTO social_posts (id, conteudo, imagem_url, status, agendado_para, publicado_em, id_externo, erro, criado_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Conteudo, p.ImagemURL, string(p.Status), p.AgendadoPara, p.PublicadoEm, p.IDExterno, p.Erro, p.CriadoEm)
	if err != nil {
		return Post{}, err
	}
	return p, nil
}

func (r *Repository) Update(ctx context.Context, p Post) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE social_posts
		SET conteudo = $2, imagem_url = $3, status = $4, agendado_para = $5, publicado_em = $6, id_externo = $7, erro = $8
		WHERE id = $1`,
		p.ID, p.Conteudo, p.ImagemURL, string(p.Status), p.AgendadoPara, p.PublicadoEm, p.IDExterno, p.Erro)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrado
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM social_posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrado
	}
	return nil
}

// ListVencidos retorna posts agendados cujo horário já passou.
func (r *Repository) ListVencidos(ctx context.Context, ate time.Time) ([]Post, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, conteudo, imagem_url, status, agendado_para, publicado_em, id_externo, erro, criado_em
		FROM social_posts
		WHERE status = $1 AND agendado_para <= $2
		ORDER BY agendado_para`, string(PostAgendado), ate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var p Post
	var status string
	if err := row.Scan(&p.ID, &p.Conteudo, &p.ImagemURL, &status, &p.AgendadoPara, &p.PublicadoEm, &p.IDExterno, &p.Erro, &p.CriadoEm); err != nil {
		return Post{}, err
	}
	p.Status = StatusPost(status)
	return p, nil
}
