package jobs

import (
	"github.com/vytor/lingoflash/internal/media"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/worker"
)

// WorkerQueue implements JobQueue using worker pools
type WorkerQueue struct {
	importPool   *worker.Pool
	analysisPool *worker.Pool
	tracker      *worker.Tracker
	pipeline     media.Pipeline
	cards        worker.SourceAdder
	analysis     worker.AnalysisWarmer
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(
	importPool *worker.Pool,
	analysisPool *worker.Pool,
	tracker *worker.Tracker,
	pipeline media.Pipeline,
	cards worker.SourceAdder,
	analysis worker.AnalysisWarmer,
) *WorkerQueue {
	return &WorkerQueue{
		importPool:   importPool,
		analysisPool: analysisPool,
		tracker:      tracker,
		pipeline:     pipeline,
		cards:        cards,
		analysis:     analysis,
	}
}

func (q *WorkerQueue) EnqueueImport(req models.ImportRequest) (string, error) {
	return q.submit(q.importPool, &worker.ImportSourceJob{
		Pipeline: q.pipeline,
		Cards:    q.cards,
		Request:  req,
	})
}

func (q *WorkerQueue) EnqueueAnalysis(key models.AnalysisKey) (string, error) {
	return q.submit(q.analysisPool, &worker.AnalyzeCardJob{
		Analysis: q.analysis,
		Key:      key,
	})
}

func (q *WorkerQueue) submit(pool *worker.Pool, job worker.Job) (string, error) {
	tracked, id := q.tracker.Track(job)
	if err := pool.Submit(tracked); err != nil {
		q.tracker.Abort(id, err)
		return id, err
	}
	return id, nil
}

func (q *WorkerQueue) Status(id string) (worker.Record, bool) {
	return q.tracker.Get(id)
}

func (q *WorkerQueue) List() []worker.Record {
	return q.tracker.List()
}

func (q *WorkerQueue) Cancel(id string) bool {
	return q.tracker.Cancel(id)
}

var _ JobQueue = (*WorkerQueue)(nil)
