// Package site expõe a superfície pública do portal da igreja: somente
// leitura, sem sessão, atrás do rate limit público.
package site

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/midia-hub/saraalagoas-sub008/internal/culto"
	"github.com/midia-hub/saraalagoas-sub008/internal/galeria"
)

// InfoIgreja é o cartão de visita servido ao site.
type InfoIgreja struct {
	Nome      string `json:"nome"`
	Endereco  string `json:"endereco,omitempty"`
	Telefone  string `json:"telefone,omitempty"`
	Email     string `json:"email,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

type Handler struct {
	info    InfoIgreja
	galeria *galeria.Service
	cultos  *culto.Service
}

func NewHandler(info InfoIgreja, galeriaSvc *galeria.Service, cultoSvc *culto.Service) *Handler {
	return &Handler{info: info, galeria: galeriaSvc, cultos: cultoSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/site", func(r chi.Router) {
		r.Get("/igreja", h.handleIgreja)
		r.Get("/cultos", h.handleCultos)
		r.Get("/albuns", h.handleAlbuns)
		r.Get("/albuns/{id}", h.handleAlbum)
	})
}

func (h *Handler) handleIgreja(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.info)
}

// handleCultos publica só as definições ativas, sem dados de presença.
func (h *Handler) handleCultos(w http.ResponseWriter, r *http.Request) {
	defs, err := h.cultos.ListDefinicoes(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}

	type horario struct {
		Nome      string `json:"nome"`
		DiaSemana int    `json:"dia_semana"`
		Horario   string `json:"horario"`
	}
	horarios := []horario{}
	for _, def := range defs {
		if !def.Ativo {
			continue
		}
		horarios = append(horarios, horario{Nome: def.Nome, DiaSemana: int(def.DiaSemana), Horario: def.Horario})
	}
	writeJSON(w, http.StatusOK, horarios)
}

func (h *Handler) handleAlbuns(w http.ResponseWriter, r *http.Request) {
	albuns, err := h.galeria.ListarAlbuns(r.Context(), true)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, albuns)
}

func (h *Handler) handleAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}
	album, err := h.galeria.ObterAlbumPublicado(r.Context(), id)
	if err != nil {
		if errors.Is(err, galeria.ErrNaoEncontrado) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "álbum não encontrado")
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
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
	log.Error().Err(err).Msg("site: erro interno")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
}
