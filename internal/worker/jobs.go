package worker

import (
	"context"
	"fmt"

	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/media"
	"github.com/vytor/lingoflash/internal/models"
)

// SourceAdder receives the transcribed segments of a finished import. The
// context is checked again under the store lock, so a job cancelled before
// that point never changes the deck.
type SourceAdder interface {
	AddSource(ctx context.Context, source models.SourceInfo, segments []models.Segment) (models.AddResult, error)
}

// AnalysisWarmer fills the analysis cache for one text.
type AnalysisWarmer interface {
	Get(ctx context.Context, key models.AnalysisKey) (models.Analysis, error)
}

// ImportSourceJob runs a source through the media pipeline and adds the
// resulting segments as cards.
type ImportSourceJob struct {
	Pipeline media.Pipeline
	Cards    SourceAdder
	Request  models.ImportRequest

	result models.AddResult
}

func (j *ImportSourceJob) Name() string { return "import_" + j.Request.Kind }

func (j *ImportSourceJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"kind":     j.Request.Kind,
		"language": j.Request.Language,
	})
	log.Info("starting background import")

	var (
		res models.MediaResult
		err error
	)
	switch j.Request.Kind {
	case models.ImportUpload:
		res, err = j.Pipeline.ProcessUpload(ctx, j.Request.Path, j.Request.Language)
	case models.ImportYouTube:
		res, err = j.Pipeline.ProcessYouTube(ctx, j.Request.URL, j.Request.Language)
	case models.ImportPodcast:
		res, err = j.Pipeline.ProcessPodcastEpisode(ctx, j.Request.URL, j.Request.Title, j.Request.Language)
	default:
		err = fmt.Errorf("unknown import kind %q", j.Request.Kind)
	}
	if err != nil {
		log.Error("media processing failed: %v", err)
		return err
	}

	if err := ctx.Err(); err != nil {
		log.Warn("import cancelled after processing, discarding %d segments", len(res.Segments))
		return err
	}

	added, err := j.Cards.AddSource(ctx, res.SourceInfo, res.Segments)
	if err != nil {
		log.Error("failed to add source: %v", err)
		return err
	}
	j.result = added
	log.Info("imported %d cards from %s", added.Added, res.Title)
	return nil
}

func (j *ImportSourceJob) Result() any { return j.result }

// AnalyzeCardJob precomputes the analysis of a card's text.
type AnalyzeCardJob struct {
	Analysis AnalysisWarmer
	Key      models.AnalysisKey
}

func (j *AnalyzeCardJob) Name() string { return "analyze_text" }

func (j *AnalyzeCardJob) Run(ctx context.Context) error {
	_, err := j.Analysis.Get(ctx, j.Key)
	return err
}
