package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vytor/codedrill/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	log := logger.Default()

	log.Info("===========================================")
	log.Info("CodeDrill Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("backend_url=%s", cfg.BackendURL)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("generation_worker_count=%d", cfg.GenerationWorkerCount)
	log.Debug("generation_queue_size=%d", cfg.GenerationQueueSize)
	log.Debug("page_size=%d", cfg.PageSize)

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	if cfg.SeedOnStart {
		if _, err := a.catalog.EnsureSeeded(ctx, false); err != nil {
			log.Error("failed to seed catalog: %v", err)
			return err
		}
	}

	a.pool.Start(ctx)
	go a.purgeSessions(ctx, time.Hour)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      a.server.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server error: %v", err)
			cancel()
			a.pool.Stop()
			return err
		}
	case <-sigCtx.Done():
		log.Info("received shutdown signal, initiating graceful shutdown")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping generation pool")
	cancel()
	a.pool.Stop()

	log.Info("===========================================")
	log.Info("CodeDrill Server Stopped")
	log.Info("===========================================")
	return nil
}
