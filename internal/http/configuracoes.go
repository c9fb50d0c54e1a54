package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/midia-hub/saraalagoas-sub008/internal/rbac"
	"github.com/midia-hub/saraalagoas-sub008/internal/repo"
	"github.com/midia-hub/saraalagoas-sub008/internal/service"
)

// Handlers da página de configurações: administração de usuários do painel
// e da grade de permissões por papel.

type usuarioView struct {
	ID       uuid.UUID  `json:"id"`
	Nome     string     `json:"nome"`
	Email    string     `json:"email"`
	PapelID  *uuid.UUID `json:"papel_id,omitempty"`
	Papel    *string    `json:"papel,omitempty"`
	Admin    bool       `json:"admin"`
	Ativo    bool       `json:"ativo"`
	CriadoEm time.Time  `json:"criado_em"`
}

type papelView struct {
	ID         uuid.UUID       `json:"id"`
	Nome       string          `json:"nome"`
	Descricao  *string         `json:"descricao,omitempty"`
	CriadoEm   time.Time       `json:"criado_em"`
	Permissoes []permissaoView `json:"permissoes"`
	Codigos    []string        `json:"codigos"`
}

type permissaoView struct {
	Pagina string `json:"pagina"`
	Acao   string `json:"acao"`
}

func toUsuarioView(u repo.Usuario) usuarioView {
	return usuarioView{
		ID:       u.ID,
		Nome:     u.Nome,
		Email:    u.Email,
		PapelID:  u.PapelID,
		Papel:    u.PapelNome,
		Admin:    u.Admin,
		Ativo:    u.Ativo,
		CriadoEm: u.CriadoEm,
	}
}

func toPapelView(det service.PapelDetalhado) papelView {
	permissoes := make([]permissaoView, 0, len(det.Permissoes))
	for _, p := range det.Permissoes {
		permissoes = append(permissoes, permissaoView{Pagina: p.Pagina, Acao: p.Acao})
	}
	codigos := det.Codigos
	if codigos == nil {
		codigos = []string{}
	}
	return papelView{
		ID:         det.Papel.ID,
		Nome:       det.Papel.Nome,
		Descricao:  det.Papel.Descricao,
		CriadoEm:   det.Papel.CriadoEm,
		Permissoes: permissoes,
		Codigos:    codigos,
	}
}

func (h *Handler) ListUsuarios(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaConfiguracoes, rbac.AcaoVisualizar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	usuarios, err := h.usuarios.ListUsuarios(r.Context())
	if err != nil {
		writeInternalError(w, "configuracoes", err)
		return
	}

	views := make([]usuarioView, 0, len(usuarios))
	for _, u := range usuarios {
		views = append(views, toUsuarioView(u))
	}
	WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) CreateUsuario(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaConfiguracoes, rbac.AcaoGerenciar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	var payload struct {
		Nome    string     `json:"nome"`
		Email   string     `json:"email"`
		Senha   string     `json:"senha"`
		PapelID *uuid.UUID `json:"papel_id"`
		Admin   bool       `json:"admin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	criado, err := h.usuarios.CreateUsuario(r.Context(), payload.Nome, payload.Email, payload.Senha, payload.PapelID, payload.Admin)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	WriteJSON(w, http.StatusCreated, toUsuarioView(criado))
}

func (h *Handler) UpdateUsuario(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaConfiguracoes, rbac.AcaoGerenciar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Nome    string     `json:"nome"`
		Email   string     `json:"email"`
		PapelID *uuid.UUID `json:"papel_id"`
		Admin   bool       `json:"admin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if err := h.usuarios.UpdateUsuario(r.Context(), id, payload.Nome, payload.Email, payload.PapelID, payload.Admin); err != nil {
		escreverErroConfiguracoes(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) SetUsuarioAtivo(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaConfiguracoes, rbac.AcaoGerenciar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Ativo bool `json:"ativo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if err := h.usuarios.SetAtivo(r.Context(), id, payload.Ativo); err != nil {
		escreverErroConfiguracoes(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) TrocarSenha(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaConfiguracoes, rbac.AcaoGerenciar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Senha string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if err := h.usuarios.TrocarSenha(r.Context(), id, payload.Senha); err != nil {
		escreverErroConfiguracoes(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) ListPapeis(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaConfiguracoes, rbac.AcaoVisualizar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	papeis, err := h.usuarios.ListPapeis(r.Context())
	if err != nil {
		writeInternalError(w, "configuracoes", err)
		return
	}

	views := make([]papelView, 0, len(papeis))
	for _, det := range papeis {
		views = append(views, toPapelView(det))
	}
	WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) GetPapel(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaConfiguracoes, rbac.AcaoVisualizar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	det, err := h.usuarios.GetPapel(r.Context(), id)
	if err != nil {
		escreverErroConfiguracoes(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toPapelView(det))
}

func (h *Handler) CreatePapel(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaConfiguracoes, rbac.AcaoGerenciar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	var payload struct {
		Nome      string  `json:"nome"`
		Descricao *string `json:"descricao"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	papel, err := h.usuarios.CreatePapel(r.Context(), payload.Nome, payload.Descricao)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	WriteJSON(w, http.StatusCreated, toPapelView(service.PapelDetalhado{Papel: papel}))
}

func (h *Handler) UpdatePapel(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaConfiguracoes, rbac.AcaoGerenciar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Nome      string  `json:"nome"`
		Descricao *string `json:"descricao"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if err := h.usuarios.UpdatePapel(r.Context(), repo.Papel{ID: id, Nome: payload.Nome, Descricao: payload.Descricao}); err != nil {
		escreverErroConfiguracoes(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) DeletePapel(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaConfiguracoes, rbac.AcaoGerenciar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.usuarios.DeletePapel(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrPapelEmUso) {
			WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
			return
		}
		escreverErroConfiguracoes(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ReplacePermissoes substitui a grade inteira do papel de uma vez. A grade
// enviada vale como estado final; células ausentes são revogadas.
func (h *Handler) ReplacePermissoes(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaConfiguracoes, rbac.AcaoGerenciar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Permissoes []permissaoView `json:"permissoes"`
		Codigos    []string        `json:"codigos"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	permissoes := make([]repo.PermissaoPapel, 0, len(payload.Permissoes))
	for _, p := range payload.Permissoes {
		permissoes = append(permissoes, repo.PermissaoPapel{Pagina: p.Pagina, Acao: p.Acao})
	}

	if err := h.usuarios.ReplacePermissoes(r.Context(), id, permissoes, payload.Codigos); err != nil {
		escreverErroConfiguracoes(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func escreverErroConfiguracoes(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "registro não encontrado", nil)
	default:
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	}
}

func writeInternalError(w http.ResponseWriter, componente string, err error) {
	log.Error().Err(err).Str("component", componente).Msg("erro interno")
	WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
}

func escreverRecusa(w http.ResponseWriter, recusa *rbac.Recusa) {
	WriteError(w, recusa.Status, recusa.Code, recusa.Message, nil)
}
