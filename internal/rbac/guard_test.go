package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/midia-hub/saraalagoas-sub008/internal/auth"
)

const testSecret = "chave-de-teste-com-32-caracteres!!"

type stubStore struct {
	acessos map[uuid.UUID]Acesso
}

func (s *stubStore) CarregarAcesso(ctx context.Context, usuarioID uuid.UUID) (Acesso, error) {
	acesso, ok := s.acessos[usuarioID]
	if !ok {
		return Acesso{}, ErrAcessoNaoEncontrado
	}
	return acesso, nil
}

func novoGuard(t *testing.T, acessos map[uuid.UUID]Acesso) (*Guard, *auth.JWTManager) {
	t.Helper()
	jwtManager := auth.NewJWTManager(testSecret, time.Minute)
	resolver := NewResolver(jwtManager, &stubStore{acessos: acessos}, nil)
	return NewGuard(resolver), jwtManager
}

func requisicaoCom(t *testing.T, jwtManager *auth.JWTManager, usuarioID uuid.UUID) *http.Request {
	t.Helper()
	token, _, err := jwtManager.GenerateAccessToken(usuarioID.String(), "admin", "Secretária", false)
	if err != nil {
		t.Fatalf("gerar token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/admin/celulas", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestGuardSemToken(t *testing.T) {
	guard, _ := novoGuard(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/celulas", nil)
	snap, recusa := guard.Exigir(req, PaginaCelulas, AcaoVisualizar)

	if snap != nil {
		t.Fatal("não deveria haver snapshot sem token")
	}
	if recusa == nil || recusa.Status != http.StatusUnauthorized || recusa.Code != "AUTH" {
		t.Fatalf("esperava recusa 401 AUTH, veio %+v", recusa)
	}
}

func TestGuardTokenDeUsuarioInexistente(t *testing.T) {
	guard, jwtManager := novoGuard(t, map[uuid.UUID]Acesso{})

	req := requisicaoCom(t, jwtManager, uuid.New())
	_, recusa := guard.Exigir(req, PaginaCelulas, AcaoVisualizar)

	if recusa == nil || recusa.Status != http.StatusUnauthorized {
		t.Fatalf("usuário inexistente deveria dar 401, veio %+v", recusa)
	}
}

func TestGuardSemPermissao(t *testing.T) {
	usuarioID := uuid.New()
	guard, jwtManager := novoGuard(t, map[uuid.UUID]Acesso{
		usuarioID: {
			Nome:       "Maria",
			Email:      "maria@example.com",
			Permissoes: []PermissaoConcedida{{Pagina: PaginaPessoas, Acao: "view"}},
		},
	})

	req := requisicaoCom(t, jwtManager, usuarioID)
	snap, recusa := guard.Exigir(req, PaginaCelulas, AcaoEditar)

	if snap != nil {
		t.Fatal("não deveria haver snapshot em recusa")
	}
	if recusa == nil || recusa.Status != http.StatusForbidden || recusa.Code != "FORBIDDEN" {
		t.Fatalf("esperava recusa 403, veio %+v", recusa)
	}
}

func TestGuardComPermissao(t *testing.T) {
	usuarioID := uuid.New()
	guard, jwtManager := novoGuard(t, map[uuid.UUID]Acesso{
		usuarioID: {
			Nome:       "Maria",
			Email:      "maria@example.com",
			Permissoes: []PermissaoConcedida{{Pagina: PaginaCelulas, Acao: "edit"}},
		},
	})

	req := requisicaoCom(t, jwtManager, usuarioID)
	snap, recusa := guard.Exigir(req, PaginaCelulas, AcaoEditar)

	if recusa != nil {
		t.Fatalf("não esperava recusa: %+v", recusa)
	}
	if snap == nil || snap.UsuarioID != usuarioID {
		t.Fatal("snapshot ausente ou de outro usuário")
	}
}

func TestGuardExigirQualquer(t *testing.T) {
	usuarioID := uuid.New()
	guard, jwtManager := novoGuard(t, map[uuid.UUID]Acesso{
		usuarioID: {
			Permissoes: []PermissaoConcedida{{Pagina: PaginaConsolidacao, Acao: "view"}},
		},
	})

	req := requisicaoCom(t, jwtManager, usuarioID)
	_, recusa := guard.ExigirQualquer(req,
		ParPermissao{Pagina: PaginaPessoas, Acao: AcaoVisualizar},
		ParPermissao{Pagina: PaginaConsolidacao, Acao: AcaoVisualizar},
	)
	if recusa != nil {
		t.Fatalf("segundo par deveria liberar: %+v", recusa)
	}

	_, recusa = guard.ExigirQualquer(req,
		ParPermissao{Pagina: PaginaPessoas, Acao: AcaoVisualizar},
		ParPermissao{Pagina: PaginaCelulas, Acao: AcaoVisualizar},
	)
	if recusa == nil || recusa.Status != http.StatusForbidden {
		t.Fatalf("nenhum par liberado deveria dar 403, veio %+v", recusa)
	}
}

func TestGuardExigirCodigo(t *testing.T) {
	comCodigo := uuid.New()
	semCodigo := uuid.New()
	guard, jwtManager := novoGuard(t, map[uuid.UUID]Acesso{
		comCodigo: {
			Permissoes: []PermissaoConcedida{{Pagina: PaginaCelulas, Acao: "edit"}},
			Codigos:    []string{CodigoAprovarPD},
		},
		semCodigo: {
			Permissoes: []PermissaoConcedida{{Pagina: PaginaCelulas, Acao: "edit"}},
		},
	})

	req := requisicaoCom(t, jwtManager, semCodigo)
	_, recusa := guard.ExigirCodigo(req, PaginaCelulas, AcaoEditar, CodigoAprovarPD)
	if recusa == nil || recusa.Status != http.StatusForbidden {
		t.Fatalf("edit sem código nomeado deveria dar 403, veio %+v", recusa)
	}

	req = requisicaoCom(t, jwtManager, comCodigo)
	snap, recusa := guard.ExigirCodigo(req, PaginaCelulas, AcaoEditar, CodigoAprovarPD)
	if recusa != nil {
		t.Fatalf("edit + código deveria liberar: %+v", recusa)
	}
	if !snap.TemCodigo(CodigoAprovarPD) {
		t.Fatal("snapshot deveria carregar o código")
	}
}

func TestGuardIdempotente(t *testing.T) {
	usuarioID := uuid.New()
	guard, jwtManager := novoGuard(t, map[uuid.UUID]Acesso{
		usuarioID: {Permissoes: []PermissaoConcedida{{Pagina: PaginaCelulas, Acao: "view"}}},
	})

	req := requisicaoCom(t, jwtManager, usuarioID)
	for i := 0; i < 3; i++ {
		snap, recusa := guard.Exigir(req, PaginaCelulas, AcaoVisualizar)
		if recusa != nil || snap == nil {
			t.Fatalf("chamada %d falhou: %+v", i, recusa)
		}
	}
}

func TestGuardTokenViaCookie(t *testing.T) {
	usuarioID := uuid.New()
	guard, jwtManager := novoGuard(t, map[uuid.UUID]Acesso{
		usuarioID: {Permissoes: []PermissaoConcedida{{Pagina: PaginaGaleria, Acao: "view"}}},
	})

	token, _, err := jwtManager.GenerateAccessToken(usuarioID.String(), "admin", "", false)
	if err != nil {
		t.Fatalf("gerar token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/galeria", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})

	_, recusa := guard.Exigir(req, PaginaGaleria, AcaoVisualizar)
	if recusa != nil {
		t.Fatalf("cookie deveria autenticar: %+v", recusa)
	}
}
