package repo

import (
	"time"

	"github.com/google/uuid"
)

// Usuario representa colaborador do painel administrativo.
type Usuario struct {
	ID        uuid.UUID
	Nome      string
	Email     string
	SenhaHash string
	PapelID   *uuid.UUID
	PapelNome *string
	Admin     bool
	PessoaID  *uuid.UUID
	AvatarURL *string
	Ativo     bool
	CriadoEm  time.Time
}

// Papel agrupa permissões nomeadas atribuíveis a usuários.
type Papel struct {
	ID        uuid.UUID
	Nome      string
	Descricao *string
	CriadoEm  time.Time
}

// PermissaoPapel é uma célula da grade página/ação.
type PermissaoPapel struct {
	Pagina string
	Acao   string
}

// TokenRefresh modela tabela de refresh tokens.
type TokenRefresh struct {
	ID        uuid.UUID
	Subject   uuid.UUID
	Audience  string
	TokenHash string
	Expiracao time.Time
	CriadoEm  time.Time
	Revogado  bool
}
