package rbac

import (
	"github.com/google/uuid"
)

// Acao enumera as ações possíveis sobre uma página do painel.
type Acao string

const (
	AcaoVisualizar Acao = "view"
	AcaoCriar      Acao = "create"
	AcaoEditar     Acao = "edit"
	AcaoExcluir    Acao = "delete"
	AcaoGerenciar  Acao = "manage"
)

// Páginas do painel administrativo. A chave é a linha da grade de permissões.
const (
	PaginaPessoas       = "pessoas"
	PaginaConsolidacao  = "consolidacao"
	PaginaCelulas       = "celulas"
	PaginaCultos        = "cultos"
	PaginaLivrariaPDV   = "livraria_pdv"
	PaginaGaleria       = "galeria"
	PaginaSocial        = "social"
	PaginaReservas      = "reservas"
	PaginaConfiguracoes = "configuracoes"
)

// Códigos de permissão nomeados: gates estreitos independentes da grade
// página×ação. Nunca concedem acesso a quem não tem a página; sempre
// restringem uma sub-ação sensível.
const (
	CodigoAprovarPD     = "aprovar_pd"
	CodigoAprovarEdicao = "aprovar_edicao"
)

// ConjuntoAcoes representa as ações liberadas numa página.
type ConjuntoAcoes map[Acao]struct{}

// GradePermissoes mapeia página → ações liberadas. Chave ausente significa
// nenhum acesso à página.
type GradePermissoes map[string]ConjuntoAcoes

// Perfil resume o usuário para exibição no painel.
type Perfil struct {
	Nome      string     `json:"nome"`
	Papel     string     `json:"papel"`
	PessoaID  *uuid.UUID `json:"pessoa_id,omitempty"`
	AvatarURL *string    `json:"avatar_url,omitempty"`
}

// Snapshot é o retrato imutável do que um usuário autenticado pode fazer.
// É construído uma vez por requisição pelo Resolver e flui explicitamente
// para os handlers; nunca existe parcialmente resolvido.
type Snapshot struct {
	UsuarioID   uuid.UUID
	Email       string
	Admin       bool
	AcessoAdmin bool
	Perfil      Perfil
	Permissoes  GradePermissoes
	Codigos     map[string]struct{}
}

// Pode responde se o snapshot autoriza a ação na página. Função total:
// snapshot nulo, página desconhecida ou grade vazia resultam em false,
// nunca em erro. Admin curto-circuita qualquer página e ação.
func (s *Snapshot) Pode(pagina string, acao Acao) bool {
	if s == nil {
		return false
	}
	if s.Admin {
		return true
	}
	acoes, ok := s.Permissoes[pagina]
	if !ok {
		return false
	}
	_, ok = acoes[acao]
	return ok
}

// TemCodigo responde se o snapshot carrega o código de permissão nomeado.
// Admin possui todos os códigos.
func (s *Snapshot) TemCodigo(codigo string) bool {
	if s == nil {
		return false
	}
	if s.Admin {
		return true
	}
	_, ok := s.Codigos[codigo]
	return ok
}
