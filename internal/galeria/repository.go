package galeria

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

// Album agrupa fotos de um evento ou ministério.
type Album struct {
	ID        uuid.UUID `json:"id"`
	Titulo    string    `json:"titulo"`
	Descricao *string   `json:"descricao,omitempty"`
	Publicado bool      `json:"publicado"`
	Fotos     []Foto    `json:"fotos,omitempty"`
	CriadoEm  time.Time `json:"criado_em"`
}

// Foto referencia o objeto no storage pela chave; URL é a forma pública.
type Foto struct {
	ID       uuid.UUID `json:"id"`
	AlbumID  uuid.UUID `json:"album_id"`
	Chave    string    `json:"-"`
	URL      string    `json:"url"`
	Legenda  *string   `json:"legenda,omitempty"`
	CriadoEm time.Time `json:"criado_em"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListAlbuns(ctx context.Context, somentePublicados bool) ([]Album, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `
		SELECT id, titulo, descricao, publicado, criado_em
		FROM galeria_albuns`
	if somentePublicados {
		query += " WHERE publicado"
	}
	query += " ORDER BY criado_em DESC"

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var albuns []Album
	for rows.Next() {
		var a Album
		if err := rows.Scan(&a.ID, &a.Titulo, &a.Descricao, &a.Publicado, &a.CriadoEm); err != nil {
			return nil, err
		}
		albuns = append(albuns, a)
	}
	return albuns, rows.Err()
}

func (r *Repository) GetAlbum(ctx context.Context, id uuid.UUID) (Album, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var a Album
	err := r.db.QueryRow(ctx, `
		SELECT id, titulo, descricao, publicado, criado_em
		FROM galeria_albuns
		WHERE id = $1`, id).
		Scan(&a.ID, &a.Titulo, &a.Descricao, &a.Publicado, &a.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Album{}, errNaoEncontrado
		}
		return Album{}, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, album_id, chave, url, legenda, criado_em
		FROM galeria_fotos
		WHERE album_id = $1
		ORDER BY criado_em`, id)
	if err != nil {
		return Album{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var f Foto
		if err := rows.Scan(&f.ID, &f.AlbumID, &f.Chave, &f.URL, &f.Legenda, &f.CriadoEm); err != nil {
			return Album{}, err
		}
		a.Fotos = append(a.Fotos, f)
	}
	return a, rows.Err()
}

func (r *Repository) CreateAlbum(ctx context.Context, a Album) (Album, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	a.ID = uuid.New()
	a.CriadoEm = time.Now()
	_, err := r.db.Exec(ctx, `
		INSERT INTO galeria_albuns (id, titulo, descricao, publicado, criado_em)
		VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Titulo, a.Descricao, a.Publicado, a.CriadoEm)
	if err != nil {
		return Album{}, err
	}
	return a, nil
}

func (r *Repository) UpdateAlbum(ctx context.Context, a Album) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE galeria_albuns
		SET titulo = $2, descricao = $3, publicado = $4
		WHERE id = $1`,
		a.ID, a.Titulo, a.Descricao, a.Publicado)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrado
	}
	return nil
}

func (r *Repository) DeleteAlbum(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM galeria_albuns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrado
	}
	return nil
}

func (r *Repository) CreateFoto(ctx context.Context, f Foto) (Foto, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	f.ID = uuid.New()
	f.CriadoEm = time.Now()
	_, err := r.db.Exec(ctx, `
		INSERT INTO galeria_fotos (id, album_id, chave, url, legenda, criado_em)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ID, f.AlbumID, f.Chave, f.URL, f.Legenda, f.CriadoEm)
	if err != nil {
		return Foto{}, err
	}
	return f, nil
}

func (r *Repository) GetFoto(ctx context.Context, id uuid.UUID) (Foto, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var f Foto
	err := r.db.QueryRow(ctx, `
		SELECT id, album_id, chave, url, legenda, criado_em
		FROM galeria_fotos
		WHERE id = $1`, id).
		Scan(&f.ID, &f.AlbumID, &f.Chave, &f.URL, &f.Legenda, &f.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Foto{}, errNaoEncontrado
		}
		return Foto{}, err
	}
	return f, nil
}

func (r *Repository) DeleteFoto(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM galeria_fotos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNaoEncontrado
	}
	return nil
}
