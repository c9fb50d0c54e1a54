package rbac

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrAcessoNaoEncontrado indica usuário inexistente ou desativado.
	ErrAcessoNaoEncontrado = errors.New("acesso não encontrado")
)

const dbTimeout = 3 * time.Second

// Repository carrega perfis e grades de permissão do Postgres.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CarregarAcesso monta o acesso efetivo do usuário: perfil, grade
// página×ação do papel e códigos nomeados. A normalização de cardinalidade
// acontece aqui — o núcleo nunca vê linha duplicada nem campo ambíguo.
func (r *Repository) CarregarAcesso(ctx context.Context, usuarioID uuid.UUID) (Acesso, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var (
		acesso  Acesso
		papelID uuid.UUID
	)

	err := r.db.QueryRow(ctx, `
		SELECT u.nome, u.email, u.pessoa_id, u.avatar_url, p.id, p.nome, p.admin
		FROM usuarios u
		JOIN papeis p ON p.id = u.papel_id
		WHERE u.id = $1 AND u.ativo`,
		usuarioID,
	).Scan(&acesso.Nome, &acesso.Email, &acesso.PessoaID, &acesso.AvatarURL, &papelID, &acesso.Papel, &acesso.Admin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Acesso{}, ErrAcessoNaoEncontrado
		}
		return Acesso{}, err
	}

	permissoes, err := r.listPermissoes(ctx, papelID)
	if err != nil {
		return Acesso{}, err
	}
	acesso.Permissoes = permissoes

	codigos, err := r.listCodigos(ctx, papelID)
	if err != nil {
		return Acesso{}, err
	}
	acesso.Codigos = codigos

	return acesso, nil
}

func (r *Repository) listPermissoes(ctx context.Context, papelID uuid.UUID) ([]PermissaoConcedida, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT pagina, acao
		FROM papel_permissoes
		WHERE papel_id = $1`,
		papelID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissoes []PermissaoConcedida
	for rows.Next() {
		var p PermissaoConcedida
		if err := rows.Scan(&p.Pagina, &p.Acao); err != nil {
			return nil, err
		}
		permissoes = append(permissoes, p)
	}
	return permissoes, rows.Err()
}

func (r *Repository) listCodigos(ctx context.Context, papelID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT codigo
		FROM papel_codigos
		WHERE papel_id = $1`,
		papelID,
	)
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
