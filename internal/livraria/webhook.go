package livraria

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/midia-hub/saraalagoas-sub008/internal/pagamento"
)

// WebhookHandler recebe as notificações do provedor de pagamentos. A rota é
// pública; a autenticidade vem da assinatura HMAC no cabeçalho.
type WebhookHandler struct {
	service *Service
	segredo string
}

func NewWebhookHandler(service *Service, segredo string) *WebhookHandler {
	return &WebhookHandler{service: service, segredo: segredo}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	corpo, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "corpo inválido")
		return
	}

	assinatura := r.Header.Get("X-Assinatura")
	if !pagamento.VerificarAssinatura(h.segredo, corpo, assinatura) {
		writeError(w, http.StatusUnauthorized, "AUTH", "assinatura inválida")
		return
	}

	var evento struct {
		Tipo       string `json:"tipo"`
		CobrancaID string `json:"cobranca_id"`
	}
	if err := json.Unmarshal(corpo, &evento); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}

	switch evento.Tipo {
	case "cobranca.paga":
		if err := h.service.ConfirmarPagamento(r.Context(), evento.CobrancaID); err != nil {
			if errors.Is(err, ErrNaoEncontrado) {
				// Cobrança de outro ambiente ou já removida; confirma o
				// recebimento para o provedor parar de reenviar.
				writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
				return
			}
			writeInternalError(w, err)
			return
		}
	default:
		log.Debug().Str("tipo", evento.Tipo).Msg("livraria: evento de webhook ignorado")
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
