package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vytor/lingoflash/internal/analysis"
	"github.com/vytor/lingoflash/internal/config"
	"github.com/vytor/lingoflash/internal/db"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/media"
	"github.com/vytor/lingoflash/internal/repository"
	"github.com/vytor/lingoflash/internal/repository/sqlite"
	"github.com/vytor/lingoflash/internal/services"
	"github.com/vytor/lingoflash/internal/workspace"
)

const transcribeTimeout = 10 * time.Minute

type rootOptions struct {
	dataDir  string
	logLevel string
}

// app holds the wired services shared by every command.
type app struct {
	cfg      config.Config
	log      *logger.Logger
	ws       *workspace.Workspace
	reviewDB *db.DB
	pipeline media.Pipeline

	cards    services.CardService
	reviews  services.ReviewService
	stats    services.StatsService
	settings services.SettingsService
	analysis services.AnalysisService
}

func loadApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg := config.Load()
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Logs go to stderr so command output stays parseable.
	log := logger.New(
		logger.WithOutput(os.Stderr),
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)
	ctx = logger.NewContext(ctx, log)

	log.Debug("data_dir=%s", cfg.DataDir)
	log.Debug("download_dir=%s", cfg.DownloadDir)
	log.Debug("review_log_path=%s", cfg.ReviewLogPath)
	log.Debug("analysis_backend=%s", cfg.AnalysisBackend)

	ws, err := workspace.Open(ctx, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open data directory: %w", err)
	}

	a := &app{cfg: cfg, log: log, ws: ws}

	// A nil interface disables the review log in every service.
	var reviewLog repository.ReviewLogRepository
	if cfg.ReviewLogPath != "" {
		a.reviewDB, err = db.Open(cfg.ReviewLogPath)
		if err != nil {
			return nil, fmt.Errorf("open review log: %w", err)
		}
		reviewLog = sqlite.NewReviewLogRepository(a.reviewDB.DB)
	}

	analyzer, err := analysis.FromConfig(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("configure analysis backend: %w", err)
	}

	transcriber := media.DisabledTranscriber()
	if cfg.TranscribeURL != "" {
		transcriber = media.NewWhisperClient(cfg.TranscribeURL, cfg.TranscribeModel, transcribeTimeout)
	}
	a.pipeline, err = media.NewLocalPipeline(cfg.DownloadDir, transcriber)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("prepare download directory: %w", err)
	}

	a.cards = services.NewCardService(ws, reviewLog)
	a.reviews = services.NewReviewService(ws, reviewLog)
	a.stats = services.NewStatsService(ws, reviewLog)
	a.settings = services.NewSettingsService(ws)
	a.analysis = services.NewAnalysisService(ws, analyzer)
	return a, nil
}

// baseContext returns a background context carrying the app logger.
func (a *app) baseContext() context.Context {
	return logger.NewContext(context.Background(), a.log)
}

func (a *app) Close() {
	if a.reviewDB != nil {
		a.log.Debug("closing review log database")
		_ = a.reviewDB.Close()
	}
}
