package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/midia-hub/saraalagoas-sub008/internal/auth"
	"github.com/midia-hub/saraalagoas-sub008/internal/rbac"
	"github.com/midia-hub/saraalagoas-sub008/internal/repo"
	"github.com/midia-hub/saraalagoas-sub008/internal/util"
)

// ErrPapelEmUso bloqueia a remoção de papéis ainda atribuídos.
var ErrPapelEmUso = errors.New("papel em uso por usuários ativos")

// cacheAcesso desacopla o serviço do resolver de permissões.
type cacheAcesso interface {
	InvalidarCache(ctx context.Context, usuarioID uuid.UUID)
}

// UsuarioService centraliza a administração de usuários e papéis do painel.
type UsuarioService struct {
	repo  *repo.Queries
	cache cacheAcesso
}

// NewUsuarioService cria nova instância do serviço.
func NewUsuarioService(r *repo.Queries, cache cacheAcesso) *UsuarioService {
	return &UsuarioService{repo: r, cache: cache}
}

// ListUsuarios retorna os usuários cadastrados.
func (s *UsuarioService) ListUsuarios(ctx context.Context) ([]repo.Usuario, error) {
	return s.repo.ListUsuarios(ctx)
}

// CreateUsuario cria um usuário ativo imediatamente (senha bruta será hasheada).
func (s *UsuarioService) CreateUsuario(ctx context.Context, nome, email, senha string, papelID *uuid.UUID, admin bool) (repo.Usuario, error) {
	if err := util.RequireString(nome, "nome"); err != nil {
		return repo.Usuario{}, err
	}
	if err := util.ValidateEmail(email); err != nil {
		return repo.Usuario{}, err
	}
	if err := util.ValidatePassword(senha); err != nil {
		return repo.Usuario{}, err
	}

	hash, err := auth.Hash(strings.TrimSpace(senha))
	if err != nil {
		return repo.Usuario{}, err
	}

	return s.repo.InsertUsuario(ctx, repo.Usuario{
		Nome:      strings.TrimSpace(nome),
		Email:     strings.TrimSpace(email),
		SenhaHash: hash,
		PapelID:   papelID,
		Admin:     admin,
		Ativo:     true,
	})
}

// UpdateUsuario atualiza dados e papel do usuário.
func (s *UsuarioService) UpdateUsuario(ctx context.Context, id uuid.UUID, nome, email string, papelID *uuid.UUID, admin bool) error {
	if err := util.RequireString(nome, "nome"); err != nil {
		return err
	}
	if err := util.ValidateEmail(email); err != nil {
		return err
	}
	if err := s.repo.UpdateUsuario(ctx, id, strings.TrimSpace(nome), strings.TrimSpace(email), papelID, admin); err != nil {
		return err
	}
	s.cache.InvalidarCache(ctx, id)
	return nil
}

// SetAtivo ativa ou desativa o acesso do usuário.
func (s *UsuarioService) SetAtivo(ctx context.Context, id uuid.UUID, ativo bool) error {
	if err := s.repo.SetUsuarioAtivo(ctx, id, ativo); err != nil {
		return err
	}
	s.cache.InvalidarCache(ctx, id)
	return nil
}

// TrocarSenha redefine a senha do usuário.
func (s *UsuarioService) TrocarSenha(ctx context.Context, id uuid.UUID, senha string) error {
	if err := util.ValidatePassword(senha); err != nil {
		return err
	}
	hash, err := auth.Hash(strings.TrimSpace(senha))
	if err != nil {
		return err
	}
	return s.repo.UpdateSenhaHash(ctx, id, hash)
}

// ListPapeis retorna os papéis com suas grades.
func (s *UsuarioService) ListPapeis(ctx context.Context) ([]PapelDetalhado, error) {
	papeis, err := s.repo.ListPapeis(ctx)
	if err != nil {
		return nil, err
	}

	detalhados := make([]PapelDetalhado, 0, len(papeis))
	for _, p := range papeis {
		det, err := s.detalharPapel(ctx, p)
		if err != nil {
			return nil, err
		}
		detalhados = append(detalhados, det)
	}
	return detalhados, nil
}

// PapelDetalhado agrega o papel com grade de permissões e códigos.
type PapelDetalhado struct {
	Papel      repo.Papel
	Permissoes []repo.PermissaoPapel
	Codigos    []string
}

func (s *UsuarioService) GetPapel(ctx context.Context, id uuid.UUID) (PapelDetalhado, error) {
	p, err := s.repo.GetPapel(ctx, id)
	if err != nil {
		return PapelDetalhado{}, err
	}
	return s.detalharPapel(ctx, p)
}

func (s *UsuarioService) CreatePapel(ctx context.Context, nome string, descricao *string) (repo.Papel, error) {
	if err := util.RequireString(nome, "nome"); err != nil {
		return repo.Papel{}, err
	}
	return s.repo.InsertPapel(ctx, repo.Papel{Nome: strings.TrimSpace(nome), Descricao: descricao})
}

func (s *UsuarioService) UpdatePapel(ctx context.Context, p repo.Papel) error {
	if err := util.RequireString(p.Nome, "nome"); err != nil {
		return err
	}
	p.Nome = strings.TrimSpace(p.Nome)
	return s.repo.UpdatePapel(ctx, p)
}

func (s *UsuarioService) DeletePapel(ctx context.Context, id uuid.UUID) error {
	ids, err := s.repo.ListUsuariosPorPapel(ctx, id)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		return ErrPapelEmUso
	}
	return s.repo.DeletePapel(ctx, id)
}

// ReplacePermissoes substitui a grade do papel e derruba o cache de acesso
// de todos os usuários que o carregam.
func (s *UsuarioService) ReplacePermissoes(ctx context.Context, papelID uuid.UUID, permissoes []repo.PermissaoPapel, codigos []string) error {
	for _, perm := range permissoes {
		if !paginaValida(perm.Pagina) || !acaoValida(perm.Acao) {
			return errors.New("permissão desconhecida: " + perm.Pagina + "/" + perm.Acao)
		}
	}

	if err := s.repo.ReplacePermissoes(ctx, papelID, permissoes, codigos); err != nil {
		return err
	}

	ids, err := s.repo.ListUsuariosPorPapel(ctx, papelID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		s.cache.InvalidarCache(ctx, id)
	}
	return nil
}

func (s *UsuarioService) detalharPapel(ctx context.Context, p repo.Papel) (PapelDetalhado, error) {
	permissoes, err := s.repo.ListPermissoes(ctx, p.ID)
	if err != nil {
		return PapelDetalhado{}, err
	}
	codigos, err := s.repo.ListCodigos(ctx, p.ID)
	if err != nil {
		return PapelDetalhado{}, err
	}
	return PapelDetalhado{Papel: p, Permissoes: permissoes, Codigos: codigos}, nil
}

func paginaValida(pagina string) bool {
	switch pagina {
	case rbac.PaginaPessoas, rbac.PaginaConsolidacao, rbac.PaginaCelulas, rbac.PaginaCultos,
		rbac.PaginaLivrariaPDV, rbac.PaginaGaleria, rbac.PaginaSocial, rbac.PaginaReservas,
		rbac.PaginaConfiguracoes:
		return true
	}
	return false
}

func acaoValida(acao string) bool {
	switch rbac.Acao(acao) {
	case rbac.AcaoVisualizar, rbac.AcaoCriar, rbac.AcaoEditar, rbac.AcaoExcluir, rbac.AcaoGerenciar:
		return true
	}
	return false
}
