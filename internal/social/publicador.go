package social

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultGraphBase = "https://graph.facebook.com/v19.0"

// Publicador envia um post para a rede social e devolve o id externo.
type Publicador interface {
	Publicar(ctx context.Context, post Post) (string, error)
}

// GraphClient publica na página da igreja via Graph API.
type GraphClient struct {
	httpClient  *http.Client
	accessToken string
	pageID      string
	baseURL     string
}

// GraphConfig descreve credenciais essenciais para o cliente.
type GraphConfig struct {
	APIBase     string
	AccessToken string
	PageID      string
}

// NewGraphClient cria um publicador para a página configurada.
func NewGraphClient(cfg GraphConfig) (*GraphClient, error) {
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, errors.New("social: access token obrigatório")
	}
	if strings.TrimSpace(cfg.PageID) == "" {
		return nil, errors.New("social: page id obrigatório")
	}

	apiBase := strings.TrimSpace(cfg.APIBase)
	if apiBase == "" {
		apiBase = defaultGraphBase
	}

	return &GraphClient{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		accessToken: cfg.AccessToken,
		pageID:      cfg.PageID,
		baseURL:     strings.TrimRight(apiBase, "/"),
	}, nil
}

func (c *GraphClient) Publicar(ctx context.Context, post Post) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/feed", c.baseURL, c.pageID)
	body := map[string]any{
		"message":      post.Conteudo,
		"access_token": c.accessToken,
	}
	if post.ImagemURL != nil && strings.TrimSpace(*post.ImagemURL) != "" {
		endpoint = fmt.Sprintf("%s/%s/photos", c.baseURL, c.pageID)
		body["url"] = *post.ImagemURL
		body["caption"] = post.Conteudo
		delete(body, "message")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed struct {
		ID    string `json:"id"`
		PostID string `json:"post_id"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 || parsed.Error != nil {
		msg := "erro desconhecido"
		if parsed.Error != nil && strings.TrimSpace(parsed.Error.Message) != "" {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("social graph: status %d: %s", resp.StatusCode, msg)
	}

	if parsed.PostID != "" {
		return parsed.PostID, nil
	}
	return parsed.ID, nil
}
