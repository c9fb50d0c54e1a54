package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port             int
	DBDSN            string
	RedisURL         string
	JWTAccessTTL     time.Duration
	JWTRefreshTTL    time.Duration
	JWTSecret        string
	AllowOrigins     []string
	RateLimitPublic  RateLimitConfig
	RateLimitAuth    RateLimitConfig
	WebAuthnRPID     string
	WebAuthnRPOrigin string
	WebAuthnRPName   string
	Storage          StorageConfig
	Pagamento        PagamentoConfig
	Social           SocialConfig
	Igreja           IgrejaConfig
}

// IgrejaConfig alimenta a superfície pública do site institucional.
type IgrejaConfig struct {
	Nome      string
	Endereco  string
	Telefone  string
	Email     string
	Instagram string
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// StorageConfig descreve o provedor de arquivos das galerias.
type StorageConfig struct {
	Provider    string
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

// PagamentoConfig descreve credenciais do provedor de pagamento do PDV.
type PagamentoConfig struct {
	APIBase       string
	AccessToken   string
	WebhookSecret string
}

// SocialConfig controla o agendador de publicações em redes sociais.
type SocialConfig struct {
	Enabled     bool
	Interval    time.Duration
	APIBase     string
	AccessToken string
	PageID      string
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	refreshTTL, err := parseDurationEnv("JWT_REFRESH_TTL", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTRefreshTTL = refreshTTL

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	cfg.WebAuthnRPID = strings.TrimSpace(getEnv("WEBAUTHN_RP_ID", "localhost"))
	if cfg.WebAuthnRPID == "" {
		cfg.WebAuthnRPID = "localhost"
	}
	cfg.WebAuthnRPOrigin = strings.TrimSpace(getEnv("WEBAUTHN_RP_ORIGIN", "http://localhost:5173"))
	if cfg.WebAuthnRPOrigin == "" {
		cfg.WebAuthnRPOrigin = "http://localhost:5173"
	}
	cfg.WebAuthnRPName = strings.TrimSpace(getEnv("WEBAUTHN_RP_NAME", "Sara Alagoas"))
	if cfg.WebAuthnRPName == "" {
		cfg.WebAuthnRPName = "Sara Alagoas"
	}

	cfg.Storage = StorageConfig{
		Provider:    strings.TrimSpace(getEnv("STORAGE_PROVIDER", "noop")),
		S3Endpoint:  getEnv("STORAGE_S3_ENDPOINT", ""),
		S3Region:    getEnv("STORAGE_S3_REGION", "auto"),
		S3Bucket:    getEnv("STORAGE_S3_BUCKET", ""),
		S3AccessKey: getEnv("STORAGE_S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("STORAGE_S3_SECRET_KEY", ""),
		S3PublicURL: getEnv("STORAGE_S3_PUBLIC_URL", ""),
	}

	cfg.Pagamento = PagamentoConfig{
		APIBase:       getEnv("PAGAMENTO_API_BASE", ""),
		AccessToken:   getEnv("PAGAMENTO_ACCESS_TOKEN", ""),
		WebhookSecret: getEnv("PAGAMENTO_WEBHOOK_SECRET", ""),
	}

	socialInterval, err := parseDurationEnv("SOCIAL_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.Social = SocialConfig{
		Enabled:     getEnv("SOCIAL_ENABLED", "") == "true",
		Interval:    socialInterval,
		APIBase:     getEnv("SOCIAL_API_BASE", ""),
		AccessToken: getEnv("SOCIAL_ACCESS_TOKEN", ""),
		PageID:      getEnv("SOCIAL_PAGE_ID", ""),
	}

	cfg.Igreja = IgrejaConfig{
		Nome:      getEnv("IGREJA_NOME", "Sara Nossa Terra Alagoas"),
		Endereco:  getEnv("IGREJA_ENDERECO", ""),
		Telefone:  getEnv("IGREJA_TELEFONE", ""),
		Email:     getEnv("IGREJA_EMAIL", ""),
		Instagram: getEnv("IGREJA_INSTAGRAM", ""),
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
