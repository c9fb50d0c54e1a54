package social

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/midia-hub/saraalagoas-sub008/internal/config"
)

// Worker publica periodicamente os posts agendados vencidos.
type Worker struct {
	repo       PostRepository
	publicador Publicador
	cfg        config.SocialConfig
	logger     zerolog.Logger
	agora      func() time.Time

	once   sync.Once
	cancel context.CancelFunc
}

func NewWorker(repo PostRepository, publicador Publicador, cfg config.SocialConfig, logger zerolog.Logger) *Worker {
	return &Worker{
		repo:       repo,
		publicador: publicador,
		cfg:        cfg,
		logger:     logger,
		agora:      time.Now,
	}
}

// Start inicia loop periódico. Safe para chamar múltiplas vezes.
func (w *Worker) Start(parent context.Context) {
	if !w.cfg.Enabled {
		return
	}
	w.once.Do(func() {
		ctx, cancel := context.WithCancel(parent)
		w.cancel = cancel
		go w.runLoop(ctx)
	})
}

// Stop encerra loop periódico.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *Worker) runLoop(ctx context.Context) {
	interval := w.cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", interval).Msg("social: loop iniciado")

	if err := w.RunOnce(ctx); err != nil {
		w.logger.Error().Err(err).Msg("social: primeira execução falhou")
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("social: loop encerrado")
			return
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.Error().Err(err).Msg("social: execução periódica falhou")
			}
		}
	}
}

// RunOnce publica tudo que venceu até agora. Falhas individuais não param o
// lote; o post falho fica marcado para reagendamento manual.
func (w *Worker) RunOnce(ctx context.Context) error {
	vencidos, err := w.repo.ListVencidos(ctx, w.agora())
	if err != nil {
		return fmt.Errorf("listar posts vencidos: %w", err)
	}

	for _, post := range vencidos {
		if err := w.publicar(ctx, post); err != nil {
			w.logger.Warn().Err(err).Str("post", post.ID.String()).Msg("social: publicação falhou")
		}
	}
	return nil
}

func (w *Worker) publicar(ctx context.Context, post Post) error {
	idExterno, err := w.publicador.Publicar(ctx, post)
	if err != nil {
		msg := err.Error()
		post.Status = PostFalha
		post.Erro = &msg
		if uerr := w.repo.Update(ctx, post); uerr != nil {
			w.logger.Error().Err(uerr).Str("post", post.ID.String()).Msg("social: falha ao marcar post")
		}
		return err
	}

	agora := w.agora()
	post.Status = PostPublicado
	post.PublicadoEm = &agora
	post.IDExterno = &idExterno
	post.Erro = nil
	return w.repo.Update(ctx, post)
}
