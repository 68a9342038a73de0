package services

import (
	"context"
	"strings"

	"github.com/vytor/lingoflash/internal/analysis"
	"github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/workspace"
	"golang.org/x/sync/singleflight"
)

// AnalysisService memoizes text analyses in the workspace cache
type AnalysisService interface {
	Get(ctx context.Context, key models.AnalysisKey) (models.Analysis, error)
	Regenerate(ctx context.Context, key models.AnalysisKey) (models.Analysis, error)
	KeyForCard(ctx context.Context, cardID string) (models.AnalysisKey, error)
}

type analysisService struct {
	ws       *workspace.Workspace
	analyzer analysis.Analyzer
	inflight singleflight.Group
}

// NewAnalysisService creates a new AnalysisService
func NewAnalysisService(ws *workspace.Workspace, analyzer analysis.Analyzer) AnalysisService {
	return &analysisService{ws: ws, analyzer: analyzer}
}

// Get returns the cached analysis for key or asks the analyzer. Failures
// come back as degraded results and are cached like any other, except a
// cancelled ctx, which returns ctx.Err() and stores nothing.
func (s *analysisService) Get(ctx context.Context, key models.AnalysisKey) (models.Analysis, error) {
	log := logger.FromContext(ctx).WithPrefix("analysis")

	key, err := s.complete(key)
	if err != nil {
		return models.Analysis{}, err
	}

	var cached models.Analysis
	var hit bool
	_ = s.ws.View(func(st *workspace.State) error {
		cached, hit = st.Cache.Get(key)
		return nil
	})
	if hit {
		log.Debug("cache hit: %s/%s", key.LearningLanguage, key.NativeLanguage)
		return cached, nil
	}
	return s.compute(ctx, key)
}

// Regenerate evicts the cached entry and computes a fresh one.
func (s *analysisService) Regenerate(ctx context.Context, key models.AnalysisKey) (models.Analysis, error) {
	log := logger.FromContext(ctx).WithPrefix("analysis")

	key, err := s.complete(key)
	if err != nil {
		return models.Analysis{}, err
	}

	err = s.ws.Update(ctx, func(st *workspace.State) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !st.Cache.Evict(key) {
			return workspace.ErrNoChange
		}
		return nil
	})
	if err != nil {
		log.Error("failed to evict cached analysis: %v", err)
		return models.Analysis{}, err
	}
	log.Info("cached analysis evicted, regenerating")
	return s.compute(ctx, key)
}

func (s *analysisService) KeyForCard(ctx context.Context, cardID string) (models.AnalysisKey, error) {
	var key models.AnalysisKey
	err := s.ws.View(func(st *workspace.State) error {
		card, ok := st.Deck.Find(cardID)
		if !ok {
			return errors.NewNotFoundError("card", cardID)
		}
		key = models.AnalysisKey{
			Text:             card.Text,
			LearningLanguage: st.Settings.LearningLanguage,
			NativeLanguage:   st.Settings.NativeLanguage,
		}
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Debug("no analysis key: %v", err)
	}
	return key, err
}

// compute runs the analyzer outside the workspace lock and stores the
// result. Concurrent requests for one key share a single analyzer call.
func (s *analysisService) compute(ctx context.Context, key models.AnalysisKey) (models.Analysis, error) {
	log := logger.FromContext(ctx).WithPrefix("analysis")

	v, err, shared := s.inflight.Do(key.String(), func() (any, error) {
		result := analysis.Run(ctx, s.analyzer, key)
		// A cancelled caller gets no result and the cache stays untouched;
		// otherwise the cancellation would be stored as a degraded entry.
		if err := ctx.Err(); err != nil {
			log.Debug("analysis cancelled: %v", err)
			return nil, err
		}
		if result.Degraded {
			log.Warn("analysis degraded: %s", result.Translation)
		}

		var stored models.Analysis
		err := s.ws.Update(ctx, func(st *workspace.State) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Keep an entry another writer stored while we were computing.
			var hit bool
			stored, hit = st.Cache.GetOrCompute(ctx, key, analysis.AnalyzerFunc(
				func(context.Context, models.AnalysisKey) (models.Analysis, error) {
					return result, nil
				}))
			if hit {
				return workspace.ErrNoChange
			}
			return nil
		})
		if err != nil {
			log.Error("failed to store analysis: %v", err)
			return nil, err
		}
		return stored, nil
	})
	if err != nil {
		return models.Analysis{}, err
	}
	if shared {
		log.Debug("analysis shared with a concurrent request")
	}
	return v.(models.Analysis), nil
}

// complete fills missing languages from the settings and rejects blank text.
func (s *analysisService) complete(key models.AnalysisKey) (models.AnalysisKey, error) {
	if strings.TrimSpace(key.Text) == "" {
		return key, errors.NewValidationError("text", "cannot be empty")
	}
	if key.LearningLanguage != "" && key.NativeLanguage != "" {
		return key, nil
	}
	_ = s.ws.View(func(st *workspace.State) error {
		if key.LearningLanguage == "" {
			key.LearningLanguage = st.Settings.LearningLanguage
		}
		if key.NativeLanguage == "" {
			key.NativeLanguage = st.Settings.NativeLanguage
		}
		return nil
	})
	return key, nil
}
