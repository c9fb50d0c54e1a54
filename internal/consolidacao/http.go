package consolidacao

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/midia-hub/saraalagoas-sub008/internal/rbac"
)

type Handler struct {
	service *Service
	guard   *rbac.Guard
}

func NewHandler(service *Service, guard *rbac.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/consolidacao", func(r chi.Router) {
		r.Get("/", h.handleListar)
		r.Post("/", h.handleIniciar)
		r.Post("/{id}/avancar", h.handleAvancar)
		r.Put("/{id}/responsavel", h.handleResponsavel)
	})
}

func (h *Handler) handleListar(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaConsolidacao, rbac.AcaoVisualizar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	itens, err := h.service.Listar(r.Context(), Etapa(r.URL.Query().Get("etapa")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itens)
}

func (h *Handler) handleIniciar(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaConsolidacao, rbac.AcaoCriar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	var payload struct {
		PessoaID    uuid.UUID  `json:"pessoa_id"`
		Responsavel *uuid.UUID `json:"responsavel_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}
	a, err := h.service.Iniciar(r.Context(), payload.PessoaID, payload.Responsavel)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handler) handleAvancar(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaConsolidacao, rbac.AcaoEditar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}
	var payload struct {
		Observacao *string `json:"observacao"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
			return
		}
	}
	a, err := h.service.AvancarEtapa(r.Context(), id, payload.Observacao)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) handleResponsavel(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaConsolidacao, rbac.AcaoEditar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}
	var payload struct {
		Responsavel *uuid.UUID `json:"responsavel_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}
	if err := h.service.AtribuirResponsavel(r.Context(), id, payload.Responsavel); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNaoEncontrado):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "acompanhamento não encontrado")
	case errors.Is(err, ErrEtapaFinal):
		writeError(w, http.StatusConflict, "CONFLICT", "acompanhamento já integrado")
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
	log.Error().Err(err).Msg("consolidacao: erro interno")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
}

func escreverRecusa(w http.ResponseWriter, recusa *rbac.Recusa) {
	writeError(w, recusa.Status, recusa.Code, recusa.Message)
}
