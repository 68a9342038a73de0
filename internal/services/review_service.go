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

// ReviewService handles study sessions and graded responses
type ReviewService interface {
	GetDueItems(ctx context.Context, limit int) ([]models.Card, error)
	ProcessReview(ctx context.Context, cardID string, response flashcard.Response) (models.Card, error)
	CheckDailyLimit(ctx context.Context) (models.DailyLimit, error)
	ContinueBeyondLimit(ctx context.Context) (models.DailyLimit, error)
	StartSession(ctx context.Context) error
	EndSession(ctx context.Context) (float64, error)
}

type reviewService struct {
	ws        *workspace.Workspace
	reviewLog repository.ReviewLogRepository
}

// NewReviewService creates a new ReviewService. reviewLog may be nil.
func NewReviewService(ws *workspace.Workspace, reviewLog repository.ReviewLogRepository) ReviewService {
	return &reviewService{ws: ws, reviewLog: reviewLog}
}

func (s *reviewService) GetDueItems(ctx context.Context, limit int) ([]models.Card, error) {
	log := logger.FromContext(ctx)

	if limit < 0 {
		return nil, errors.NewValidationError("limit", "must not be negative")
	}

	var batch []models.Card
	_ = s.ws.View(func(st *workspace.State) error {
		batch = flashcard.SelectDue(st.Deck.Items(), st.Settings, s.ws.Now(), limit)
		return nil
	})
	log.Debug("selected %d due cards", len(batch))
	return batch, nil
}

func (s *reviewService) ProcessReview(ctx context.Context, cardID string, response flashcard.Response) (models.Card, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"card_id":  cardID,
		"response": response.String(),
	})
	log.Debug("processing review")

	if !response.IsValid() {
		return models.Card{}, errors.NewValidationError("response", "must be one of again, hard, good, easy")
	}

	now := s.ws.Now()
	var updated models.Card
	err := s.ws.Update(ctx, func(st *workspace.State) error {
		card, ok := st.Deck.Find(cardID)
		if !ok {
			return errors.NewNotFoundError("card", cardID)
		}
		next, err := flashcard.ApplyReview(card, response, now)
		if err != nil {
			return errors.NewValidationError("response", err.Error())
		}
		// RecordResponse compares against the previous review date, so it
		// runs before UpdateStreak moves it.
		stats.RecordResponse(&st.Stats, now, response)
		stats.UpdateStreak(&st.Stats, now)
		st.Deck.Replace(next)
		updated = next
		return nil
	})
	if err != nil {
		log.Warn("review not applied: %v", err)
		return models.Card{}, err
	}

	log.Debug("applied review, new interval=%.2f days, ease=%.2f", updated.Interval, updated.Ease)

	if s.reviewLog != nil {
		_, err := s.reviewLog.Append(ctx, models.ReviewLogEntry{
			CardID:     updated.ID,
			AudioPath:  updated.AudioPath,
			Response:   response.String(),
			Interval:   updated.Interval,
			Ease:       updated.Ease,
			ReviewedAt: now,
		})
		if err != nil {
			// Don't fail the review if history storage fails
			log.Warn("failed to store review history: %v", err)
		}
	}
	return updated, nil
}

func (s *reviewService) CheckDailyLimit(ctx context.Context) (models.DailyLimit, error) {
	log := logger.FromContext(ctx)

	now := s.ws.Now()
	var out models.DailyLimit
	err := s.ws.Update(ctx, func(st *workspace.State) error {
		settings, changed := flashcard.RollDailyLimit(st.Settings, now)
		out = flashcard.CheckDailyLimit(settings, stats.ReviewsToday(st.Stats, now))
		if !changed {
			return workspace.ErrNoChange
		}
		log.Debug("new study day, extra card counter reset")
		st.Settings = settings
		return nil
	})
	if err != nil {
		log.Error("failed to check daily limit: %v", err)
		return models.DailyLimit{}, err
	}
	return out, nil
}

func (s *reviewService) ContinueBeyondLimit(ctx context.Context) (models.DailyLimit, error) {
	log := logger.FromContext(ctx)

	now := s.ws.Now()
	var out models.DailyLimit
	err := s.ws.Update(ctx, func(st *workspace.State) error {
		st.Settings = flashcard.ContinueBeyondLimit(st.Settings, now)
		out = flashcard.CheckDailyLimit(st.Settings, stats.ReviewsToday(st.Stats, now))
		return nil
	})
	if err != nil {
		log.Error("failed to record extra cards: %v", err)
		return models.DailyLimit{}, err
	}
	log.Info("continuing beyond daily limit, extra_cards=%d", out.ExtraCards)
	return out, nil
}

func (s *reviewService) StartSession(ctx context.Context) error {
	log := logger.FromContext(ctx)

	err := s.ws.Update(ctx, func(st *workspace.State) error {
		if st.Stats.SessionStart != nil {
			log.Debug("session already open, restarting it")
		}
		stats.StartSession(&st.Stats, s.ws.Now())
		return nil
	})
	if err != nil {
		log.Error("failed to start session: %v", err)
		return err
	}
	log.Debug("study session started")
	return nil
}

// EndSession closes the open session and returns the seconds it added to
// the study time. Without an open session it returns 0.
func (s *reviewService) EndSession(ctx context.Context) (float64, error) {
	log := logger.FromContext(ctx)

	var elapsed float64
	err := s.ws.Update(ctx, func(st *workspace.State) error {
		if st.Stats.SessionStart == nil {
			return workspace.ErrNoChange
		}
		elapsed = stats.EndSession(&st.Stats, s.ws.Now())
		return nil
	})
	if err != nil {
		log.Error("failed to end session: %v", err)
		return 0, err
	}
	log.Debug("study session ended after %.0f seconds", elapsed)
	return elapsed, nil
}
