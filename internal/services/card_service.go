package services

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/vytor/lingoflash/internal/deck"
	"github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/flashcard"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/repository"
	"github.com/vytor/lingoflash/internal/stats"
	"github.com/vytor/lingoflash/internal/workspace"
)

// CardService handles card store operations
type CardService interface {
	AddSource(ctx context.Context, source models.SourceInfo, segments []models.Segment) (models.AddResult, error)
	GetCard(ctx context.Context, id string) (models.Card, error)
	DeleteCard(ctx context.Context, id string) error
	EditCardText(ctx context.Context, id, text string) (models.Card, error)
	SkipCard(ctx context.Context, id string) error
	Sources(ctx context.Context) ([]models.Source, error)
	SourceSegments(ctx context.Context, audioPath string) ([]models.SourceSegment, error)
	DeleteSource(ctx context.Context, audioPath string) (models.DeleteSourceResult, error)
	FocusCards(ctx context.Context, audioPaths []string, shuffle bool) ([]models.Card, error)
}

type cardService struct {
	ws         *workspace.Workspace
	reviewLog  repository.ReviewLogRepository
	removeFile func(string) error
}

// NewCardService creates a new CardService. reviewLog may be nil when the
// review log is disabled.
func NewCardService(ws *workspace.Workspace, reviewLog repository.ReviewLogRepository) CardService {
	return &cardService{ws: ws, reviewLog: reviewLog, removeFile: os.Remove}
}

func (s *cardService) AddSource(ctx context.Context, source models.SourceInfo, segments []models.Segment) (models.AddResult, error) {
	log := logger.FromContext(ctx).WithField("audio_path", source.AudioPath)
	log.Debug("adding source with %d segments", len(segments))

	var res models.AddResult
	err := s.ws.Update(ctx, func(st *workspace.State) error {
		// A background import cancelled before reaching the lock must not
		// change the deck.
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		res, err = st.Deck.Add(source, segments, st.Settings.LearningLanguage, s.ws.Now())
		if stderrors.Is(err, deck.ErrNoSegments) {
			return errors.NewValidationError("segments", "no segments provided")
		}
		if err != nil {
			return errors.NewInternalError(err)
		}
		if res.Added == 0 {
			return errors.NewValidationError("segments", "no usable segments")
		}
		return nil
	})
	if err != nil {
		log.Warn("source not added: %v", err)
		return res, err
	}

	if res.Blank+res.Invalid+res.Duplicate > 0 {
		log.Info("dropped segments: blank=%d, invalid=%d, duplicate=%d", res.Blank, res.Invalid, res.Duplicate)
	}
	log.Info("added %d cards", res.Added)
	return res, nil
}

func (s *cardService) GetCard(ctx context.Context, id string) (models.Card, error) {
	var card models.Card
	err := s.ws.View(func(st *workspace.State) error {
		c, ok := st.Deck.Find(id)
		if !ok {
			return errors.NewNotFoundError("card", id)
		}
		card = c
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Debug("card lookup failed: %v", err)
	}
	return card, err
}

func (s *cardService) DeleteCard(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithField("card_id", id)

	err := s.ws.Update(ctx, func(st *workspace.State) error {
		if !st.Deck.Delete(id) {
			return errors.NewNotFoundError("card", id)
		}
		return nil
	})
	if err != nil {
		log.Warn("delete card: %v", err)
		return err
	}
	log.Info("card deleted")
	return nil
}

func (s *cardService) EditCardText(ctx context.Context, id, text string) (models.Card, error) {
	log := logger.FromContext(ctx).WithField("card_id", id)

	if strings.TrimSpace(text) == "" {
		return models.Card{}, errors.NewValidationError("text", "cannot be empty")
	}

	var card models.Card
	err := s.ws.Update(ctx, func(st *workspace.State) error {
		if !st.Deck.EditText(id, text) {
			return errors.NewNotFoundError("card", id)
		}
		card, _ = st.Deck.Find(id)
		return nil
	})
	if err != nil {
		log.Warn("edit card: %v", err)
		return models.Card{}, err
	}
	log.Debug("card text updated")
	return card, nil
}

func (s *cardService) SkipCard(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithField("card_id", id)

	err := s.ws.Update(ctx, func(st *workspace.State) error {
		switch st.Deck.Skip(id) {
		case deck.SkipNotFound:
			return errors.NewNotFoundError("card", id)
		case deck.SkipAlreadySkipped:
			log.Debug("card already skipped")
			return workspace.ErrNoChange
		}
		return nil
	})
	if err != nil {
		log.Warn("skip card: %v", err)
		return err
	}
	log.Info("card skipped")
	return nil
}

func (s *cardService) Sources(ctx context.Context) ([]models.Source, error) {
	var out []models.Source
	_ = s.ws.View(func(st *workspace.State) error {
		out = st.Deck.Sources()
		return nil
	})
	logger.FromContext(ctx).Debug("listed %d sources", len(out))
	return out, nil
}

func (s *cardService) SourceSegments(ctx context.Context, audioPath string) ([]models.SourceSegment, error) {
	var out []models.SourceSegment
	_ = s.ws.View(func(st *workspace.State) error {
		out = st.Deck.SourceSegments(audioPath)
		return nil
	})
	if len(out) == 0 {
		logger.FromContext(ctx).Debug("no segments for source: %s", audioPath)
		return nil, errors.NewNotFoundError("source", audioPath)
	}
	return out, nil
}

// DeleteSource removes every card of a source and its media file. When no
// cards remain, stats are reset as well.
func (s *cardService) DeleteSource(ctx context.Context, audioPath string) (models.DeleteSourceResult, error) {
	log := logger.FromContext(ctx).WithField("audio_path", audioPath)

	var res models.DeleteSourceResult
	err := s.ws.Update(ctx, func(st *workspace.State) error {
		res.CardsDeleted = st.Deck.DeleteSource(audioPath)
		if res.CardsDeleted == 0 {
			return errors.NewNotFoundError("source", audioPath)
		}
		if st.Deck.Empty() {
			resetState(st, s.ws.Now())
			res.StatsReset = true
		}
		return nil
	})
	if err != nil {
		log.Warn("delete source: %v", err)
		return models.DeleteSourceResult{}, err
	}

	if err := s.removeFile(audioPath); err == nil {
		res.FileDeleted = true
	} else if !stderrors.Is(err, fs.ErrNotExist) {
		log.Warn("failed to delete media file: %v", err)
	}

	if s.reviewLog != nil {
		if res.StatsReset {
			if err := s.reviewLog.DeleteAll(ctx); err != nil {
				log.Warn("failed to clear review log: %v", err)
			}
		} else if _, err := s.reviewLog.DeleteBySource(ctx, audioPath); err != nil {
			log.Warn("failed to delete review log entries: %v", err)
		}
	}

	log.Info("source deleted: cards=%d, file=%t, stats_reset=%t", res.CardsDeleted, res.FileDeleted, res.StatsReset)
	return res, nil
}

func (s *cardService) FocusCards(ctx context.Context, audioPaths []string, shuffle bool) ([]models.Card, error) {
	if len(audioPaths) == 0 {
		return nil, errors.NewValidationError("sources", "at least one source is required")
	}
	var out []models.Card
	_ = s.ws.View(func(st *workspace.State) error {
		out = flashcard.Focus(st.Deck.Items(), audioPaths, shuffle)
		return nil
	})
	logger.FromContext(ctx).Debug("focus mode: %d cards from %d sources", len(out), len(audioPaths))
	return out, nil
}

// resetState clears stats and returns every card to new.
func resetState(st *workspace.State, now time.Time) {
	st.Stats = stats.Reset()
	st.Deck.ResetProgress(now)
}
