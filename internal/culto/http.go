package culto

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

// Handler orquestra as rotas do módulo de cultos.
type Handler struct {
	service *Service
	guard   *rbac.Guard
}

func NewHandler(service *Service, guard *rbac.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cultos", func(r chi.Router) {
		r.Get("/", h.handleListar)
		r.Post("/", h.handleCriar)
		r.Put("/{id}", h.handleAtualizar)
		r.Delete("/{id}", h.handleExcluir)
		r.Post("/{id}/presencas", h.handleRegistrarPresenca)
		r.Get("/frequencia", h.handleFrequencia)
	})
}

type definicaoPayload struct {
	Nome      string `json:"nome"`
	DiaSemana int    `json:"dia_semana"`
	Horario   string `json:"horario"`
	Ativo     *bool  `json:"ativo"`
}

func (p definicaoPayload) paraDefinicao() Definicao {
	ativo := true
	if p.Ativo != nil {
		ativo = *p.Ativo
	}
	return Definicao{
		Nome:      p.Nome,
		DiaSemana: time.Weekday(p.DiaSemana),
		Horario:   p.Horario,
		Ativo:     ativo,
	}
}

func (h *Handler) handleListar(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaCultos, rbac.AcaoVisualizar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	defs, err := h.service.ListDefinicoes(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cultos": defs})
}

func (h *Handler) handleCriar(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaCultos, rbac.AcaoCriar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	var payload definicaoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	def, err := h.service.CriarDefinicao(r.Context(), payload.paraDefinicao())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, def)
}

func (h *Handler) handleAtualizar(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaCultos, rbac.AcaoEditar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload definicaoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	def := payload.paraDefinicao()
	def.ID = id
	if err := h.service.AtualizarDefinicao(r.Context(), def); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleExcluir(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaCultos, rbac.AcaoExcluir); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.service.ExcluirDefinicao(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleRegistrarPresenca(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaCultos, rbac.AcaoCriar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	cultoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Data      string `json:"data"`
		Presentes int    `json:"presentes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	data, err := ParseData(payload.Data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "data inválida, use o formato 2006-01-02", nil)
		return
	}

	registro, err := h.service.RegistrarPresenca(r.Context(), RegistroPresenca{
		CultoID:   cultoID,
		Data:      data,
		Presentes: payload.Presentes,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, registro)
}

func (h *Handler) handleFrequencia(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaCultos, rbac.AcaoVisualizar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	freq, err := h.service.FrequenciaNoPeriodo(r.Context(), r.URL.Query().Get("inicio"), r.URL.Query().Get("fim"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, freq)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNaoEncontrado):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrValidacao):
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		writeInternalError(w, err)
	}
}

type successEnvelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type errorEnvelope struct {
	Data  any            `json:"data"`
	Error *errorResponse `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successEnvelope{Data: payload, Error: nil})
}

func writeError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Data: nil, Error: &errorResponse{Code: code, Message: message, Details: details}})
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("cultos: erro interno")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
}

func escreverRecusa(w http.ResponseWriter, recusa *rbac.Recusa) {
	writeError(w, recusa.Status, recusa.Code, recusa.Message, nil)
}
