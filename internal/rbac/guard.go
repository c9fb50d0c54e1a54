package rbac

import (
	"net/http"
)

// Recusa encapsula a negativa de acesso pronta para resposta HTTP:
// 401 quando a identidade não resolve, 403 quando resolve mas falta
// permissão. Único contrato externamente observável do guard.
type Recusa struct {
	Status  int
	Code    string
	Message string
}

// ParPermissao é um requisito (página, ação) para acesso disjuntivo.
type ParPermissao struct {
	Pagina string
	Acao   Acao
}

// Guard combina resolução de snapshot e avaliação de permissão em uma
// chamada. Idempotente e só leitura: seguro chamar mais de uma vez na
// mesma requisição.
type Guard struct {
	resolver *Resolver
}

// NewGuard cria o guard sobre um resolver já configurado.
func NewGuard(resolver *Resolver) *Guard {
	return &Guard{resolver: resolver}
}

// Resolver expõe o resolvedor subjacente (útil para o endpoint /me).
func (g *Guard) Resolver() *Resolver {
	return g.resolver
}

// Exigir resolve o snapshot e exige a ação na página. Retorna o snapshot
// em sucesso ou a recusa apropriada.
func (g *Guard) Exigir(r *http.Request, pagina string, acao Acao) (*Snapshot, *Recusa) {
	return g.ExigirQualquer(r, ParPermissao{Pagina: pagina, Acao: acao})
}

// ExigirQualquer exige que pelo menos um dos pares (página, ação) esteja
// liberado — usado quando uma feature é alcançável por mais de uma seção
// do painel.
func (g *Guard) ExigirQualquer(r *http.Request, pares ...ParPermissao) (*Snapshot, *Recusa) {
	snap, recusa := g.resolverRequisicao(r)
	if recusa != nil {
		return nil, recusa
	}

	for _, par := range pares {
		if snap.Pode(par.Pagina, par.Acao) {
			return snap, nil
		}
	}
	return nil, recusaProibido()
}

// ExigirCodigo exige a ação na página E o código de permissão nomeado.
// Códigos nomeados são sempre um estreitamento do acesso à página, nunca
// um atalho por fora dela.
func (g *Guard) ExigirCodigo(r *http.Request, pagina string, acao Acao, codigo string) (*Snapshot, *Recusa) {
	snap, recusa := g.Exigir(r, pagina, acao)
	if recusa != nil {
		return nil, recusa
	}
	if !snap.TemCodigo(codigo) {
		return nil, recusaProibido()
	}
	return snap, nil
}

// ExigirAcessoAdmin exige apenas que o usuário possa entrar no painel
// (admin ou grade não vazia), sem exigir página específica.
func (g *Guard) ExigirAcessoAdmin(r *http.Request) (*Snapshot, *Recusa) {
	snap, recusa := g.resolverRequisicao(r)
	if recusa != nil {
		return nil, recusa
	}
	if !snap.AcessoAdmin {
		return nil, recusaProibido()
	}
	return snap, nil
}

func (g *Guard) resolverRequisicao(r *http.Request) (*Snapshot, *Recusa) {
	snap, err := g.resolver.ResolverRequisicao(r)
	if err != nil {
		return nil, &Recusa{Status: http.StatusUnauthorized, Code: "AUTH", Message: "sessão inválida"}
	}
	return snap, nil
}

func recusaProibido() *Recusa {
	return &Recusa{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: "acesso negado"}
}
