package reserva

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

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
	r.Route("/reservas", func(r chi.Router) {
		r.Get("/salas", h.handleListarSalas)
		r.Post("/salas", h.handleCriarSala)
		r.Put("/salas/{id}", h.handleAtualizarSala)
		r.Get("/salas/{id}/reservas", h.handleListarReservas)
		r.Post("/", h.handleReservar)
		r.Delete("/{id}", h.handleCancelar)
	})
}

func (h *Handler) handleListarSalas(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaReservas, rbac.AcaoVisualizar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	salas, err := h.service.ListarSalas(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, salas)
}

func (h *Handler) handleCriarSala(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaReservas, rbac.AcaoGerenciar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	var sala Sala
	if err := json.NewDecoder(r.Body).Decode(&sala); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}
	criada, err := h.service.CriarSala(r.Context(), sala)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, criada)
}

func (h *Handler) handleAtualizarSala(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaReservas, rbac.AcaoGerenciar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}
	var sala Sala
	if err := json.NewDecoder(r.Body).Decode(&sala); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}
	sala.ID = id
	atualizada, err := h.service.AtualizarSala(r.Context(), sala)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, atualizada)
}

func (h *Handler) handleListarReservas(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaReservas, rbac.AcaoVisualizar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	salaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}
	de, err1 := time.Parse(time.RFC3339, r.URL.Query().Get("de"))
	ate, err2 := time.Parse(time.RFC3339, r.URL.Query().Get("ate"))
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "intervalo inválido")
		return
	}

	reservas, err := h.service.ListarReservas(r.Context(), salaID, de, ate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservas)
}

func (h *Handler) handleReservar(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaReservas, rbac.AcaoCriar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	var res Reserva
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}
	criada, err := h.service.Reservar(r.Context(), res)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, criada)
}

func (h *Handler) handleCancelar(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaReservas, rbac.AcaoExcluir); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}
	if err := h.service.Cancelar(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNaoEncontrada):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "registro não encontrado")
	case errors.Is(err, ErrConflito):
		writeError(w, http.StatusConflict, "CONFLICT", "horário em conflito")
	case errors.Is(err, ErrSalaInativa):
		writeError(w, http.StatusConflict, "CONFLICT", "sala inativa")
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
	log.Error().Err(err).Msg("reserva: erro interno")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
}

func escreverRecusa(w http.ResponseWriter, recusa *rbac.Recusa) {
	writeError(w, recusa.Status, recusa.Code, recusa.Message)
}
