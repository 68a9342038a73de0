package jobs

import (
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/worker"
)

// JobQueue provides an abstraction for enqueueing background jobs and
// following their progress.
type JobQueue interface {
	EnqueueImport(req models.ImportRequest) (string, error)
	EnqueueAnalysis(key models.AnalysisKey) (string, error)
	Status(id string) (worker.Record, bool)
	List() []worker.Record
	Cancel(id string) bool
}
