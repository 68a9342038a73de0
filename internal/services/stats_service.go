package services

import (
	"context"

	"github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/flashcard"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/repository"
	"github.com/vytor/lingoflash/internal/stats"
	"github.com/vytor/lingoflash/internal/workspace"
)

// StatsService handles study statistics
type StatsService interface {
	GetStats(ctx context.Context) (models.DueSummary, error)
	GetDetailedStats(ctx context.Context) (models.DetailedStats, error)
	ResetStats(ctx context.Context) error
	ReviewHistory(ctx context.Context, filter models.ReviewLogFilter) ([]models.ReviewLogEntry, error)
	ResponseBreakdown(ctx context.Context, filter models.ReviewLogFilter) ([]models.ResponseCount, error)
}

type statsService struct {
	ws        *workspace.Workspace
	reviewLog repository.ReviewLogRepository
}

// NewStatsService creates a new StatsService. reviewLog may be nil, in which
// case the history queries report a bad request.
func NewStatsService(ws *workspace.Workspace, reviewLog repository.ReviewLogRepository) StatsService {
	return &statsService{ws: ws, reviewLog: reviewLog}
}

func (s *statsService) GetStats(ctx context.Context) (models.DueSummary, error) {
	var out models.DueSummary
	_ = s.ws.View(func(st *workspace.State) error {
		out = flashcard.Summarize(st.Deck.Items(), st.Settings, s.ws.Now())
		return nil
	})
	logger.FromContext(ctx).Debug("stats: due=%d, new=%d, total=%d", out.Due, out.New, out.Total)
	return out, nil
}

func (s *statsService) GetDetailedStats(ctx context.Context) (models.DetailedStats, error) {
	var out models.DetailedStats
	_ = s.ws.View(func(st *workspace.State) error {
		out = stats.Detailed(st.Stats, st.Deck.Items(), st.Settings, s.ws.Now())
		return nil
	})
	logger.FromContext(ctx).Debug("detailed stats: streak=%d, today=%d", out.Streak, out.TodayReviews)
	return out, nil
}

// ResetStats clears all statistics, returns every card to new and drops the
// skipped cards.
func (s *statsService) ResetStats(ctx context.Context) error {
	log := logger.FromContext(ctx)

	err := s.ws.Update(ctx, func(st *workspace.State) error {
		resetState(st, s.ws.Now())
		return nil
	})
	if err != nil {
		log.Error("failed to reset stats: %v", err)
		return err
	}

	if s.reviewLog != nil {
		if err := s.reviewLog.DeleteAll(ctx); err != nil {
			log.Warn("failed to clear review log: %v", err)
		}
	}
	log.Info("statistics and learning progress reset")
	return nil
}

func (s *statsService) ReviewHistory(ctx context.Context, filter models.ReviewLogFilter) ([]models.ReviewLogEntry, error) {
	log := logger.FromContext(ctx)

	if s.reviewLog == nil {
		return nil, errors.NewBadRequestError("review log is disabled")
	}
	entries, err := s.reviewLog.List(ctx, filter)
	if err != nil {
		log.Error("failed to list review history: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return entries, nil
}

func (s *statsService) ResponseBreakdown(ctx context.Context, filter models.ReviewLogFilter) ([]models.ResponseCount, error) {
	log := logger.FromContext(ctx)

	if s.reviewLog == nil {
		return nil, errors.NewBadRequestError("review log is disabled")
	}
	counts, err := s.reviewLog.CountByResponse(ctx, filter)
	if err != nil {
		log.Error("failed to count responses: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return counts, nil
}
