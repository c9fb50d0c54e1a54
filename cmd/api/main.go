package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/midia-hub/saraalagoas-sub008/internal/auth"
	"github.com/midia-hub/saraalagoas-sub008/internal/config"
	"github.com/midia-hub/saraalagoas-sub008/internal/db"
	internalhttp "github.com/midia-hub/saraalagoas-sub008/internal/http"
	"github.com/midia-hub/saraalagoas-sub008/internal/repo"
	"github.com/midia-hub/saraalagoas-sub008/internal/service"
	"github.com/midia-hub/saraalagoas-sub008/internal/social"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	queries := repo.NewQueries(pool)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := service.NewAuthService(queries, pool, redisClient, jwtManager, cfg.JWTRefreshTTL)

	socialRepo := social.NewRepository(pool)

	var publicador social.Publicador
	if cfg.Social.Enabled {
		client, err := social.NewGraphClient(social.GraphConfig{
			APIBase:     cfg.Social.APIBase,
			AccessToken: cfg.Social.AccessToken,
			PageID:      cfg.Social.PageID,
		})
		if err != nil {
			return fmt.Errorf("social: %w", err)
		}
		publicador = client
	}

	socialLogger := log.With().Str("component", "social").Logger()
	socialWorker := social.NewWorker(socialRepo, publicador, cfg.Social, socialLogger)
	socialWorker.Start(ctx)
	defer socialWorker.Stop()

	handler, err := internalhttp.NewRouter(cfg, pool, redisClient, internalhttp.Dependencies{
		AuthService: authService,
		SocialRepo:  socialRepo,
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
