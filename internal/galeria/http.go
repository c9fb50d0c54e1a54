package galeria

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/midia-hub/saraalagoas-sub008/internal/rbac"
)

const maxFotoBytes = 10 << 20

type Handler struct {
	service *Service
	guard   *rbac.Guard
}

func NewHandler(service *Service, guard *rbac.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/galeria", func(r chi.Router) {
		r.Get("/albuns", h.handleListarAlbuns)
		r.Post("/albuns", h.handleCriarAlbum)
		r.Get("/albuns/{id}", h.handleObterAlbum)
		r.Put("/albuns/{id}", h.handleAtualizarAlbum)
		r.Delete("/albuns/{id}", h.handleExcluirAlbum)
		r.Post("/albuns/{id}/fotos", h.handleEnviarFoto)
		r.Delete("/fotos/{id}", h.handleExcluirFoto)
	})
}

func (h *Handler) handleListarAlbuns(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaGaleria, rbac.AcaoVisualizar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	albuns, err := h.service.ListarAlbuns(r.Context(), false)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, albuns)
}

func (h *Handler) handleObterAlbum(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaGaleria, rbac.AcaoVisualizar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}
	album, err := h.service.ObterAlbum(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

func (h *Handler) handleCriarAlbum(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaGaleria, rbac.AcaoCriar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	var a Album
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}
	criado, err := h.service.CriarAlbum(r.Context(), a)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, criado)
}

func (h *Handler) handleAtualizarAlbum(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaGaleria, rbac.AcaoEditar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}
	var a Album
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}
	a.ID = id
	atualizado, err := h.service.AtualizarAlbum(r.Context(), a)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, atualizado)
}

func (h *Handler) handleExcluirAlbum(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaGaleria, rbac.AcaoExcluir); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}
	if err := h.service.ExcluirAlbum(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleEnviarFoto(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaGaleria, rbac.AcaoCriar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	albumID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	corpo, err := io.ReadAll(io.LimitReader(r.Body, maxFotoBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "corpo inválido")
		return
	}

	var legenda *string
	if v := r.URL.Query().Get("legenda"); v != "" {
		legenda = &v
	}

	foto, err := h.service.EnviarFoto(r.Context(), albumID, corpo, r.Header.Get("Content-Type"), legenda)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, foto)
}

func (h *Handler) handleExcluirFoto(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaGaleria, rbac.AcaoExcluir); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}
	if err := h.service.ExcluirFoto(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNaoEncontrado):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "registro não encontrado")
	case errors.Is(err, ErrValidacao):
		writeError(w, http.StatusBadRequest, "VALIDATION", "dados inválidos")
	default:
		writeInternalError(w, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "error": nil})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":  nil,
		"error": map[string]any{"code": code, "message": message},
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("galeria: erro interno")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
}

func escreverRecusa(w http.ResponseWriter, recusa *rbac.Recusa) {
	writeError(w, recusa.Status, recusa.Code, recusa.Message)
}
