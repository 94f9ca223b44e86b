package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"filippo.io/csrf"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/postboard/internal/config"
	"github.com/yourusername/postboard/internal/logger"
)

// ServeCmd は HTTP サーバーを起動します。
type ServeCmd struct{}

// Run は SIGINT / SIGTERM を受けるまでサーバーを動かし、その後グレースフルに停止します。
func (s *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := config.Load(globals.EnvFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Setup(globals.Debug || cfg.GinMode == config.ModeDebug, cfg.LogLevel)
	if cfg.GeneratedSecret {
		log.Warn().Msg("SESSION_SECRET is not set; using a random secret, sessions will not survive restarts")
	}

	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close stores")
		}
	}()

	router, err := newRouter(cfg, st, log, globals.Version)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           csrf.New().Handler(router),
		ReadHeaderTimeout: cfg.ReadTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		MaxHeaderBytes:    8 * 1024,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("mode", cfg.GinMode).Str("version", globals.Version).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	log.Info().Msg("HTTP server stopped")
	return nil
}
