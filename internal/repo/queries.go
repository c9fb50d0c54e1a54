package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/midia-hub/saraalagoas-sub008/internal/db"
)

// Queries concentra consultas de usuários, papéis e refresh tokens.
type Queries struct {
	pool *pgxpool.Pool
}

func NewQueries(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

const usuarioColunas = `
	u.id, u.nome, u.email, u.senha_hash, u.papel_id, p.nome, u.admin,
	u.pessoa_id, u.avatar_url, u.ativo, u.criado_em`

const usuarioFrom = `
	FROM usuarios u
	LEFT JOIN papeis p ON p.id = u.papel_id`

func (q *Queries) GetUsuarioByEmail(ctx context.Context, email string) (Usuario, error) {
	row := q.pool.QueryRow(ctx, `SELECT `+usuarioColunas+usuarioFrom+` WHERE u.email = $1`, strings.ToLower(email))
	return scanUsuario(row)
}

func (q *Queries) GetUsuarioByID(ctx context.Context, id uuid.UUID) (Usuario, error) {
	row := q.pool.QueryRow(ctx, `SELECT `+usuarioColunas+usuarioFrom+` WHERE u.id = $1`, id)
	return scanUsuario(row)
}

func (q *Queries) ListUsuarios(ctx context.Context) ([]Usuario, error) {
	rows, err := q.pool.Query(ctx, `SELECT `+usuarioColunas+usuarioFrom+` ORDER BY u.nome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usuarios []Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, err
		}
		usuarios = append(usuarios, u)
	}
	return usuarios, rows.Err()
}

func (q *Queries) InsertUsuario(ctx context.Context, u Usuario) (Usuario, error) {
	u.ID = uuid.New()
	u.CriadoEm = time.Now().UTC()
	u.Email = strings.ToLower(u.Email)
	_, err := q.pool.Exec(ctx, `
		INSERT INTO usuarios (id, nome, email, senha_hash, papel_id, admin, pessoa_id, avatar_url, ativo, criado_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.Nome, u.Email, u.SenhaHash, u.PapelID, u.Admin, u.PessoaID, u.AvatarURL, u.Ativo, u.CriadoEm)
	if err != nil {
		return Usuario{}, err
	}
	return u, nil
}

func (q *Queries) UpdateUsuario(ctx context.Context, id uuid.UUID, nome, email string, papelID *uuid.UUID, admin bool) error {
	cmd, err := q.pool.Exec(ctx, `
		UPDATE usuarios
		SET nome = $2, email = $3, papel_id = $4, admin = $5
		WHERE id = $1`,
		id, nome, strings.ToLower(email), papelID, admin)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *Queries) SetUsuarioAtivo(ctx context.Context, id uuid.UUID, ativo bool) error {
	cmd, err := q.pool.Exec(ctx, `UPDATE usuarios SET ativo = $2 WHERE id = $1`, id, ativo)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *Queries) UpdateSenhaHash(ctx context.Context, id uuid.UUID, senhaHash string) error {
	cmd, err := q.pool.Exec(ctx, `UPDATE usuarios SET senha_hash = $2 WHERE id = $1`, id, senhaHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *Queries) ListPapeis(ctx context.Context) ([]Papel, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT id, nome, descricao, criado_em
		FROM papeis
		ORDER BY nome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var papeis []Papel
	for rows.Next() {
		var p Papel
		if err := rows.Scan(&p.ID, &p.Nome, &p.Descricao, &p.CriadoEm); err != nil {
			return nil, err
		}
		papeis = append(papeis, p)
	}
	return papeis, rows.Err()
}

func (q *Queries) GetPapel(ctx context.Context, id uuid.UUID) (Papel, error) {
	var p Papel
	err := q.pool.QueryRow(ctx, `
		SELECT id, nome, descricao, criado_em
		FROM papeis
		WHERE id = $1`, id).
		Scan(&p.ID, &p.Nome, &p.Descricao, &p.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Papel{}, ErrNotFound
		}
		return Papel{}, err
	}
	return p, nil
}

func (q *Queries) InsertPapel(ctx context.Context, p Papel) (Papel, error) {
	p.ID = uuid.New()
	p.CriadoEm = time.Now().UTC()
	_, err := q.pool.Exec(ctx, `
		INSERT INTO papeis (id, nome, descricao, criado_em)
		VALUES ($1, $2, $3, $4)`,
		p.ID, p.Nome, p.Descricao, p.CriadoEm)
	if err != nil {
		return Papel{}, err
	}
	return p, nil
}

func (q *Queries) UpdatePapel(ctx context.Context, p Papel) error {
	cmd, err := q.pool.Exec(ctx, `
		UPDATE papeis SET nome = $2, descricao = $3 WHERE id = $1`,
		p.ID, p.Nome, p.Descricao)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *Queries) DeletePapel(ctx context.Context, id uuid.UUID) error {
	cmd, err := q.pool.Exec(ctx, `DELETE FROM papeis WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *Queries) ListPermissoes(ctx context.Context, papelID uuid.UUID) ([]PermissaoPapel, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT pagina, acao
		FROM papel_permissoes
		WHERE papel_id = $1
		ORDER BY pagina, acao`, papelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissoes []PermissaoPapel
	for rows.Next() {
		var p PermissaoPapel
		if err := rows.Scan(&p.Pagina, &p.Acao); err != nil {
			return nil, err
		}
		permissoes = append(permissoes, p)
	}
	return permissoes, rows.Err()
}

func (q *Queries) ListCodigos(ctx context.Context, papelID uuid.UUID) ([]string, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT codigo
		FROM papel_codigos
		WHERE papel_id = $1
		ORDER BY codigo`, papelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codigos []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		codigos = append(codigos, c)
	}
	return codigos, rows.Err()
}

// ReplacePermissoes substitui a grade e os códigos do papel numa transação.
func (q *Queries) ReplacePermissoes(ctx context.Context, papelID uuid.UUID, permissoes []PermissaoPapel, codigos []string) error {
	return db.WithTx(ctx, q.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM papel_permissoes WHERE papel_id = $1`, papelID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM papel_codigos WHERE papel_id = $1`, papelID); err != nil {
			return err
		}
		for _, perm := range permissoes {
			if _, err := tx.Exec(ctx, `
				INSERT INTO papel_permissoes (papel_id, pagina, acao)
				VALUES ($1, $2, $3)
				ON CONFLICT DO NOTHING`, papelID, perm.Pagina, perm.Acao); err != nil {
				return err
			}
		}
		for _, codigo := range codigos {
			if _, err := tx.Exec(ctx, `
				INSERT INTO papel_codigos (papel_id, codigo)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING`, papelID, codigo); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListUsuariosPorPapel devolve os ids para invalidação de cache de acesso.
func (q *Queries) ListUsuariosPorPapel(ctx context.Context, papelID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.pool.Query(ctx, `SELECT id FROM usuarios WHERE papel_id = $1`, papelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// InsertRefreshTokenParams agrupa campos para persistir refresh tokens.
type InsertRefreshTokenParams struct {
	ID        uuid.UUID
	Subject   uuid.UUID
	Audience  string
	TokenHash string
	Expiracao time.Time
	CriadoEm  time.Time
}

func (q *Queries) InsertRefreshToken(ctx context.Context, arg InsertRefreshTokenParams) (TokenRefresh, error) {
	_, err := q.pool.Exec(ctx, `
		INSERT INTO tokens_refresh (id, subject, audience, token_hash, expiracao, criado_em, revogado)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)`,
		arg.ID, arg.Subject, arg.Audience, arg.TokenHash, arg.Expiracao, arg.CriadoEm)
	if err != nil {
		return TokenRefresh{}, err
	}
	return TokenRefresh{
		ID:        arg.ID,
		Subject:   arg.Subject,
		Audience:  arg.Audience,
		TokenHash: arg.TokenHash,
		Expiracao: arg.Expiracao,
		CriadoEm:  arg.CriadoEm,
	}, nil
}

func (q *Queries) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (TokenRefresh, error) {
	var t TokenRefresh
	err := q.pool.QueryRow(ctx, `
		SELECT id, subject, audience, token_hash, expiracao, criado_em, revogado
		FROM tokens_refresh
		WHERE token_hash = $1`, tokenHash).
		Scan(&t.ID, &t.Subject, &t.Audience, &t.TokenHash, &t.Expiracao, &t.CriadoEm, &t.Revogado)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TokenRefresh{}, ErrNotFound
		}
		return TokenRefresh{}, err
	}
	return t, nil
}

func (q *Queries) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	cmd, err := q.pool.Exec(ctx, `
		UPDATE tokens_refresh SET revogado = TRUE WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *Queries) InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, audience, keepHash string) error {
	_, err := q.pool.Exec(ctx, `
		UPDATE tokens_refresh
		SET revogado = TRUE
		WHERE subject = $1 AND audience = $2 AND token_hash <> $3`,
		subject, audience, keepHash)
	return err
}

func scanUsuario(row pgx.Row) (Usuario, error) {
	var u Usuario
	err := row.Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash, &u.PapelID, &u.PapelNome, &u.Admin,
		&u.PessoaID, &u.AvatarURL, &u.Ativo, &u.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Usuario{}, ErrNotFound
		}
		return Usuario{}, err
	}
	return u, nil
}
