package pagamento

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.pagamentos.example.com/v1"

// StatusCobranca é o estado de uma cobrança no provedor.
type StatusCobranca string

const (
	CobrancaPendente   StatusCobranca = "pendente"
	CobrancaPaga       StatusCobranca = "paga"
	CobrancaCancelada  StatusCobranca = "cancelada"
	CobrancaEstornada  StatusCobranca = "estornada"
	CobrancaExpirada   StatusCobranca = "expirada"
)

// Cobranca é a representação retornada pelo provedor.
type Cobranca struct {
	ID         string         `json:"id"`
	Status     StatusCobranca `json:"status"`
	ValorCents int64          `json:"valor_cents"`
	CopiaECola string         `json:"copia_e_cola,omitempty"`
	QRCodeURL  string         `json:"qrcode_url,omitempty"`
	CriadoEm   time.Time      `json:"criado_em"`
}

// NovaCobranca descreve o pedido de cobrança Pix.
type NovaCobranca struct {
	ValorCents  int64  `json:"valor_cents"`
	Descricao   string `json:"descricao"`
	Referencia  string `json:"referencia"`
	ExpiraEmSeg int    `json:"expira_em_seg,omitempty"`
}

// Cobrador é o contrato consumido pela livraria.
type Cobrador interface {
	CriarCobranca(ctx context.Context, pedido NovaCobranca) (Cobranca, error)
	ConsultarCobranca(ctx context.Context, id string) (Cobranca, error)
	EstornarCobranca(ctx context.Context, id string) (Cobranca, error)
}

// Client encapsula chamadas à API do provedor de pagamentos.
type Client struct {
	httpClient  *http.Client
	accessToken string
	baseURL     string
}

// Config descreve credenciais essenciais para o cliente.
type Config struct {
	APIBase     string
	AccessToken string
}

// New cria um novo cliente utilizando access token.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, errors.New("pagamento: access token obrigatório")
	}

	apiBase := strings.TrimSpace(cfg.APIBase)
	if apiBase == "" {
		apiBase = defaultAPIBase
	}

	return &Client{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		accessToken: cfg.AccessToken,
		baseURL:     strings.TrimRight(apiBase, "/"),
	}, nil
}

func (c *Client) CriarCobranca(ctx context.Context, pedido NovaCobranca) (Cobranca, error) {
	if pedido.ValorCents <= 0 {
		return Cobranca{}, errors.New("pagamento: valor da cobrança deve ser positivo")
	}
	if pedido.ExpiraEmSeg <= 0 {
		pedido.ExpiraEmSeg = 3600
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/cobrancas", pedido)
	if err != nil {
		return Cobranca{}, err
	}

	var resp respostaCobranca
	if err := c.do(req, &resp); err != nil {
		return Cobranca{}, err
	}
	if !resp.Success {
		return Cobranca{}, joinAPIErrors(resp.Errors)
	}
	return resp.Result, nil
}

func (c *Client) ConsultarCobranca(ctx context.Context, id string) (Cobranca, error) {
	if strings.TrimSpace(id) == "" {
		return Cobranca{}, errors.New("pagamento: id da cobrança vazio")
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+"/cobrancas/"+id, nil)
	if err != nil {
		return Cobranca{}, err
	}

	var resp respostaCobranca
	if err := c.do(req, &resp); err != nil {
		return Cobranca{}, err
	}
	if !resp.Success {
		return Cobranca{}, joinAPIErrors(resp.Errors)
	}
	return resp.Result, nil
}

func (c *Client) EstornarCobranca(ctx context.Context, id string) (Cobranca, error) {
	if strings.TrimSpace(id) == "" {
		return Cobranca{}, errors.New("pagamento: id da cobrança vazio")
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/cobrancas/"+id+"/estorno", nil)
	if err != nil {
		return Cobranca{}, err
	}

	var resp respostaCobranca
	if err := c.do(req, &resp); err != nil {
		return Cobranca{}, err
	}
	if !resp.Success {
		return Cobranca{}, joinAPIErrors(resp.Errors)
	}
	return resp.Result, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	var req *http.Request
	var err error
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		req, err = http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
		if err != nil {
			return nil, err
		}
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("pagamento api: status %d", resp.StatusCode)
	}

	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

type respostaCobranca struct {
	Success bool       `json:"success"`
	Errors  []apiError `json:"errors"`
	Result  Cobranca   `json:"result"`
}

type apiError struct {
	Message string `json:"message"`
}

func (a apiError) Error() string {
	if strings.TrimSpace(a.Message) == "" {
		return "pagamento: erro desconhecido"
	}
	return a.Message
}

func joinAPIErrors(errs []apiError) error {
	if len(errs) == 0 {
		return errors.New("pagamento: resposta sem sucesso")
	}
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	return errors.New(strings.Join(messages, "; "))
}

// VerificarAssinatura confere o HMAC-SHA256 do corpo do webhook contra o
// cabeçalho enviado pelo provedor.
func VerificarAssinatura(segredo string, corpo []byte, assinatura string) bool {
	if strings.TrimSpace(segredo) == "" || strings.TrimSpace(assinatura) == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(segredo))
	mac.Write(corpo)
	esperada := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(esperada), []byte(strings.ToLower(strings.TrimSpace(assinatura))))
}
