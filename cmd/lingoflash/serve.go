package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/lingoflash/internal/api"
	"github.com/vytor/lingoflash/internal/jobs"
	"github.com/vytor/lingoflash/internal/services"
	"github.com/vytor/lingoflash/internal/worker"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := loadApp(context.Background(), opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if addr != "" {
				a.cfg.Addr = addr
			}
			return serve(a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides ADDR)")
	return cmd
}

func serve(a *app) error {
	log := a.log
	cfg := a.cfg

	log.Info("===========================================")
	log.Info("LingoFlash Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("import_worker_count=%d", cfg.ImportWorkerCount)
	log.Debug("import_queue_size=%d", cfg.ImportQueueSize)
	log.Debug("analysis_worker_count=%d", cfg.AnalysisWorkerCount)
	log.Debug("analysis_queue_size=%d", cfg.AnalysisQueueSize)

	importPool := worker.NewPool("import", cfg.ImportWorkerCount, cfg.ImportQueueSize)
	analysisPool := worker.NewPool("analysis", cfg.AnalysisWorkerCount, cfg.AnalysisQueueSize)
	queue := jobs.NewWorkerQueue(importPool, analysisPool, worker.NewTracker(0), a.pipeline, a.cards, a.analysis)

	srv := &api.Server{
		Cards:    a.cards,
		Reviews:  a.reviews,
		Stats:    a.stats,
		Settings: a.settings,
		Analysis: a.analysis,
		Imports:  services.NewImportService(a.ws, queue),
	}
	if a.reviewDB != nil {
		srv.DB = a.reviewDB.DB
	}

	ctx, cancel := context.WithCancel(a.baseContext())
	defer cancel()
	importPool.Start(ctx)
	analysisPool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-stop:
		log.Info("received signal %v, initiating graceful shutdown", sig)
	case serveErr = <-errCh:
		log.Error("HTTP server error: %v", serveErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Cancelling the worker context aborts in-flight imports before their
	// cards are added.
	log.Debug("stopping worker pools")
	cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	importPool.Stop()
	analysisPool.Stop()

	log.Info("===========================================")
	log.Info("LingoFlash Server Stopped")
	log.Info("===========================================")
	return serveErr
}
