package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/midia-hub/saraalagoas-sub008/internal/auth"
)

var (
	// ErrSessaoInvalida indica token ausente, expirado ou não resolvível.
	// Consumidores tratam como "sem acesso", nunca como acesso padrão.
	ErrSessaoInvalida = errors.New("sessão inválida")
)

const (
	cookieAcesso  = "access_token"
	cacheSnapTTL  = 30 * time.Second
	cacheSnapPref = "rbac:acesso:"
)

// PermissaoConcedida é uma linha pagina×ação vinda do store, já com
// cardinalidade normalizada (uma linha por par).
type PermissaoConcedida struct {
	Pagina string `json:"pagina"`
	Acao   string `json:"acao"`
}

// Acesso é o retrato bruto carregado do store antes de virar Snapshot.
// Serializável para o cache best-effort em Redis.
type Acesso struct {
	Nome       string               `json:"nome"`
	Email      string               `json:"email"`
	Papel      string               `json:"papel"`
	Admin      bool                 `json:"admin"`
	PessoaID   *uuid.UUID           `json:"pessoa_id,omitempty"`
	AvatarURL  *string              `json:"avatar_url,omitempty"`
	Permissoes []PermissaoConcedida `json:"permissoes"`
	Codigos    []string             `json:"codigos"`
}

// Store carrega o acesso efetivo de um usuário (perfil + grade + códigos).
type Store interface {
	CarregarAcesso(ctx context.Context, usuarioID uuid.UUID) (Acesso, error)
}

type verificadorToken interface {
	ParseAndValidate(token string) (*auth.Claims, error)
}

// Resolver transforma uma credencial bearer em Snapshot. Somente leitura;
// o cache em Redis é otimização best-effort, nunca dependência de correção.
type Resolver struct {
	jwt   verificadorToken
	store Store
	cache *redis.Client
}

// NewResolver cria o resolvedor. cache pode ser nil.
func NewResolver(jwtManager *auth.JWTManager, store Store, cache *redis.Client) *Resolver {
	return &Resolver{jwt: jwtManager, store: store, cache: cache}
}

// ResolverRequisicao extrai o token do header Authorization ou do cookie
// de acesso e resolve o Snapshot.
func (r *Resolver) ResolverRequisicao(req *http.Request) (*Snapshot, error) {
	token := tokenDaRequisicao(req)
	if token == "" {
		return nil, ErrSessaoInvalida
	}
	return r.ResolverToken(req.Context(), token)
}

// ResolverToken valida o token e monta o Snapshot completo.
func (r *Resolver) ResolverToken(ctx context.Context, token string) (*Snapshot, error) {
	claims, err := r.jwt.ParseAndValidate(token)
	if err != nil {
		return nil, ErrSessaoInvalida
	}

	usuarioID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrSessaoInvalida
	}

	acesso, err := r.carregarAcesso(ctx, usuarioID)
	if err != nil {
		if errors.Is(err, ErrAcessoNaoEncontrado) {
			return nil, ErrSessaoInvalida
		}
		return nil, err
	}

	return montarSnapshot(usuarioID, acesso), nil
}

func (r *Resolver) carregarAcesso(ctx context.Context, usuarioID uuid.UUID) (Acesso, error) {
	key := cacheSnapPref + usuarioID.String()

	if r.cache != nil {
		if data, err := r.cache.Get(ctx, key).Bytes(); err == nil {
			var acesso Acesso
			if json.Unmarshal(data, &acesso) == nil {
				return acesso, nil
			}
		}
	}

	acesso, err := r.store.CarregarAcesso(ctx, usuarioID)
	if err != nil {
		return Acesso{}, err
	}

	if r.cache != nil {
		if payload, err := json.Marshal(acesso); err == nil {
			_ = r.cache.Set(ctx, key, payload, cacheSnapTTL).Err()
		}
	}

	return acesso, nil
}

// InvalidarCache remove o acesso cacheado de um usuário após mudança de
// papel ou permissões.
func (r *Resolver) InvalidarCache(ctx context.Context, usuarioID uuid.UUID) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Del(ctx, cacheSnapPref+usuarioID.String()).Err()
}

func montarSnapshot(usuarioID uuid.UUID, acesso Acesso) *Snapshot {
	grade := make(GradePermissoes, len(acesso.Permissoes))
	for _, p := range acesso.Permissoes {
		pagina := strings.TrimSpace(p.Pagina)
		if pagina == "" {
			continue
		}
		acoes, ok := grade[pagina]
		if !ok {
			acoes = make(ConjuntoAcoes)
			grade[pagina] = acoes
		}
		acoes[Acao(p.Acao)] = struct{}{}
	}

	codigos := make(map[string]struct{}, len(acesso.Codigos))
	for _, c := range acesso.Codigos {
		if c = strings.TrimSpace(c); c != "" {
			codigos[c] = struct{}{}
		}
	}

	return &Snapshot{
		UsuarioID:   usuarioID,
		Email:       acesso.Email,
		Admin:       acesso.Admin,
		AcessoAdmin: acesso.Admin || len(grade) > 0,
		Perfil: Perfil{
			Nome:      acesso.Nome,
			Papel:     acesso.Papel,
			PessoaID:  acesso.PessoaID,
			AvatarURL: acesso.AvatarURL,
		},
		Permissoes: grade,
		Codigos:    codigos,
	}
}

func tokenDaRequisicao(req *http.Request) string {
	authHeader := req.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && strings.TrimSpace(parts[1]) != "" {
		return strings.TrimSpace(parts[1])
	}
	if cookie, err := req.Cookie(cookieAcesso); err == nil {
		return cookie.Value
	}
	return ""
}
