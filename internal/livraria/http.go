package livraria

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
	r.Route("/livraria", func(r chi.Router) {
		r.Get("/produtos", h.handleListarProdutos)
		r.Post("/produtos", h.handleCriarProduto)
		r.Put("/produtos/{id}", h.handleAtualizarProduto)
		r.Post("/vendas", h.handleVender)
		r.Get("/vendas/{id}", h.handleObterVenda)
		r.Post("/vendas/{id}/estorno", h.handleEstornar)
	})
}

func (h *Handler) handleListarProdutos(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaLivrariaPDV, rbac.AcaoVisualizar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	somenteAtivos := r.URL.Query().Get("todos") == ""
	produtos, err := h.service.ListarProdutos(r.Context(), somenteAtivos)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, produtos)
}

func (h *Handler) handleCriarProduto(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaLivrariaPDV, rbac.AcaoCriar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	var p Produto
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}
	criado, err := h.service.CriarProduto(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, criado)
}

func (h *Handler) handleAtualizarProduto(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaLivrariaPDV, rbac.AcaoEditar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}
	var p Produto
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}
	p.ID = id
	atualizado, err := h.service.AtualizarProduto(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, atualizado)
}

func (h *Handler) handleVender(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaLivrariaPDV, rbac.AcaoCriar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	var payload struct {
		Itens []ItemPedido `json:"itens"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}
	venda, err := h.service.Vender(r.Context(), payload.Itens)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, venda)
}

func (h *Handler) handleObterVenda(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaLivrariaPDV, rbac.AcaoVisualizar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}
	venda, err := h.service.ObterVenda(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, venda)
}

// handleEstornar mexe em dinheiro; só quem administra o PDV estorna.
func (h *Handler) handleEstornar(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaLivrariaPDV, rbac.AcaoGerenciar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}
	venda, err := h.service.Estornar(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, venda)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNaoEncontrado):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "registro não encontrado")
	case errors.Is(err, ErrEstoqueInsuficiente):
		writeError(w, http.StatusConflict, "CONFLICT", "estoque insuficiente")
	case errors.Is(err, ErrVendaNaoPaga):
		writeError(w, http.StatusConflict, "CONFLICT", "venda não está paga")
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
	log.Error().Err(err).Msg("livraria: erro interno")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
}

func escreverRecusa(w http.ResponseWriter, recusa *rbac.Recusa) {
	writeError(w, recusa.Status, recusa.Code, recusa.Message)
}
