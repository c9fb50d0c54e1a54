package celula

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/midia-hub/saraalagoas-sub008/internal/rbac"
)

// Handler orquestra as rotas do módulo de células.
type Handler struct {
	service *Service
	guard   *rbac.Guard
}

func NewHandler(service *Service, guard *rbac.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/celulas", func(r chi.Router) {
		r.Get("/", h.handleListCelulas)
		r.Post("/", h.handleCriarCelula)
		r.Get("/elite", h.handleElite)
		r.Get("/{id}", h.handleGetCelula)
		r.Put("/{id}", h.handleAtualizarCelula)
		r.Delete("/{id}", h.handleExcluirCelula)
		r.Post("/{id}/realizacoes", h.handleRegistrarRealizacao)
	})

	r.Route("/realizacoes", func(r chi.Router) {
		r.Get("/{id}", h.handleGetRealizacao)
		r.Put("/{id}", h.handleEditarRealizacao)
		r.Post("/{id}/pd/aprovar", h.handleAprovarPD)
		r.Post("/{id}/pd/rejeitar", h.handleRejeitarPD)
	})
}

type celulaPayload struct {
	Nome       string     `json:"nome"`
	LiderID    *uuid.UUID `json:"lider_id"`
	Anfitriao  string     `json:"anfitriao"`
	Endereco   string     `json:"endereco"`
	DiaSemana  int        `json:"dia_semana"`
	Horario    string     `json:"horario"`
	Frequencia string     `json:"frequencia"`
	Ativa      *bool      `json:"ativa"`
}

func (p celulaPayload) paraCelula() Celula {
	ativa := true
	if p.Ativa != nil {
		ativa = *p.Ativa
	}
	return Celula{
		Nome:      strings.TrimSpace(p.Nome),
		LiderID:   p.LiderID,
		Anfitriao: strings.TrimSpace(p.Anfitriao),
		Endereco:  strings.TrimSpace(p.Endereco),
		Agenda: Agenda{
			DiaSemana:  time.Weekday(p.DiaSemana),
			Horario:    strings.TrimSpace(p.Horario),
			Frequencia: Frequencia(strings.TrimSpace(p.Frequencia)),
		},
		Ativa: ativa,
	}
}

type realizacaoPayload struct {
	Data       string   `json:"data"` // "2006-01-02"
	Horario    string   `json:"horario,omitempty"`
	ValorPD    float64  `json:"valor_pd"`
	Visitantes []string `json:"visitantes"`
	Presencas  []struct {
		PessoaID uuid.UUID `json:"pessoa_id"`
		Tipo     string    `json:"tipo"`
	} `json:"presencas"`
}

func (p realizacaoPayload) paraRealizacao() (Realizacao, error) {
	data, err := time.ParseInLocation("2006-01-02", p.Data, time.Local)
	if err != nil {
		return Realizacao{}, err
	}
	if horario := strings.TrimSpace(p.Horario); horario != "" {
		data = aplicarHorario(data, horario)
	}

	realizacao := Realizacao{
		Data:       data,
		ValorPD:    p.ValorPD,
		Visitantes: p.Visitantes,
	}
	for _, presenca := range p.Presencas {
		tipo := PresencaMembro
		if TipoPresenca(presenca.Tipo) == PresencaVisitante {
			tipo = PresencaVisitante
		}
		realizacao.Presencas = append(realizacao.Presencas, Presenca{PessoaID: presenca.PessoaID, Tipo: tipo})
	}
	return realizacao, nil
}

func (h *Handler) handleListCelulas(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaCelulas, rbac.AcaoVisualizar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	celulas, err := h.service.ListCelulas(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"celulas": celulas})
}

func (h *Handler) handleGetCelula(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaCelulas, rbac.AcaoVisualizar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	c, err := h.service.GetCelula(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleCriarCelula(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaCelulas, rbac.AcaoCriar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	var payload celulaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	c, err := h.service.CriarCelula(r.Context(), payload.paraCelula())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleAtualizarCelula(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaCelulas, rbac.AcaoEditar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload celulaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	c := payload.paraCelula()
	c.ID = id
	if err := h.service.AtualizarCelula(r.Context(), c); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleExcluirCelula(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaCelulas, rbac.AcaoExcluir); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.service.ExcluirCelula(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleElite é alcançável tanto pela seção de células quanto pela de
// consolidação, por isso o acesso é disjuntivo.
func (h *Handler) handleElite(w http.ResponseWriter, r *http.Request) {
	_, recusa := h.guard.ExigirQualquer(r,
		rbac.ParPermissao{Pagina: rbac.PaginaCelulas, Acao: rbac.AcaoVisualizar},
		rbac.ParPermissao{Pagina: rbac.PaginaConsolidacao, Acao: rbac.AcaoVisualizar},
	)
	if recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	mes := strings.TrimSpace(r.URL.Query().Get("mes"))
	if mes == "" {
		mes = time.Now().Format("2006-01")
	}
	if _, err := time.Parse("2006-01", mes); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "mes inválido, use o formato 2006-01", nil)
		return
	}

	celulas, err := h.service.CelulasEliteDoMes(r.Context(), mes)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mes": mes, "celulas": celulas})
}

func (h *Handler) handleRegistrarRealizacao(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaCelulas, rbac.AcaoCriar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	celulaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload realizacaoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	realizacao, err := payload.paraRealizacao()
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "data inválida, use o formato 2006-01-02", nil)
		return
	}
	realizacao.CelulaID = celulaID

	criada, err := h.service.RegistrarRealizacao(r.Context(), realizacao)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, criada)
}

func (h *Handler) handleGetRealizacao(w http.ResponseWriter, r *http.Request) {
	if _, recusa := h.guard.Exigir(r, rbac.PaginaCelulas, rbac.AcaoVisualizar); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	realizacao, err := h.service.GetRealizacao(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, realizacao)
}

func (h *Handler) handleEditarRealizacao(w http.ResponseWriter, r *http.Request) {
	snap, recusa := h.guard.Exigir(r, rbac.PaginaCelulas, rbac.AcaoEditar)
	if recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload realizacaoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	realizacao, err := payload.paraRealizacao()
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "data inválida, use o formato 2006-01-02", nil)
		return
	}
	realizacao.ID = id

	// quem carrega aprovar_edicao pode mexer mesmo com a janela fechada
	liberado := snap.TemCodigo(rbac.CodigoAprovarEdicao)
	if err := h.service.EditarRealizacao(r.Context(), realizacao, liberado); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleAprovarPD(w http.ResponseWriter, r *http.Request) {
	h.avaliarPD(w, r, h.service.AprovarPD)
}

func (h *Handler) handleRejeitarPD(w http.ResponseWriter, r *http.Request) {
	h.avaliarPD(w, r, h.service.RejeitarPD)
}

// avaliarPD exige edit na página E o código nomeado aprovar_pd: edit
// genérico sozinho não avalia valor de PD.
func (h *Handler) avaliarPD(w http.ResponseWriter, r *http.Request, avaliar func(context.Context, uuid.UUID) error) {
	if _, recusa := h.guard.ExigirCodigo(r, rbac.PaginaCelulas, rbac.AcaoEditar, rbac.CodigoAprovarPD); recusa != nil {
		escreverRecusa(w, recusa)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := avaliar(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNaoEncontrada):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrEdicaoBloqueada):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, ErrTransicaoPD):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
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
	log.Error().Err(err).Msg("celulas: erro interno")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
}

func escreverRecusa(w http.ResponseWriter, recusa *rbac.Recusa) {
	writeError(w, recusa.Status, recusa.Code, recusa.Message, nil)
}
