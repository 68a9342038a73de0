package worker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/lingoflash/internal/logger"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Finished reports whether the status is terminal.
func (s Status) Finished() bool {
	return s == StatusDone || s == StatusFailed || s == StatusCancelled
}

// Record is the observable state of one tracked job.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Result    any       `json:"result,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Resulter is implemented by jobs that expose a result once done.
type Resulter interface {
	Result() any
}

type entry struct {
	rec    Record
	cancel context.CancelFunc
}

// Tracker assigns ids to jobs and records their lifecycle so callers can
// poll status and cancel work that has not finished.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   int
	now     func() time.Time
}

// NewTracker keeps at most limit records, forgetting the oldest finished
// ones first.
func NewTracker(limit int) *Tracker {
	if limit <= 0 {
		limit = 256
	}
	return &Tracker{
		entries: make(map[string]*entry),
		limit:   limit,
		now:     time.Now,
	}
}

// Track registers job as queued and returns a wrapper to submit in its place.
func (t *Tracker) Track(job Job) (Job, string) {
	id := uuid.NewString()
	now := t.now()

	t.mu.Lock()
	t.entries[id] = &entry{rec: Record{
		ID:        id,
		Name:      job.Name(),
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}}
	t.prune()
	t.mu.Unlock()

	return &trackedJob{tracker: t, id: id, job: job}, id
}

// Get returns a copy of the record for id.
func (t *Tracker) Get(id string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		return Record{}, false
	}
	return e.rec, true
}

// List returns every record, newest first.
func (t *Tracker) List() []Record {
	t.mu.Lock()
	out := make([]Record, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e.rec)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Cancel stops a queued or running job. It returns false when the job is
// unknown or already finished.
func (t *Tracker) Cancel(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok || e.rec.Status.Finished() {
		return false
	}
	if e.cancel != nil {
		e.cancel()
	}
	t.set(e, StatusCancelled, "")
	return true
}

// Abort marks a job that never reached a worker as failed.
func (t *Tracker) Abort(id string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[id]; ok && !e.rec.Status.Finished() {
		t.set(e, StatusFailed, err.Error())
	}
}

// start moves a queued job to running. It returns false if the job was
// cancelled while waiting.
func (t *Tracker) start(id string, cancel context.CancelFunc) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok || e.rec.Status != StatusQueued {
		return false
	}
	e.cancel = cancel
	t.set(e, StatusRunning, "")
	return true
}

func (t *Tracker) finish(id string, err error, result any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		return
	}
	e.cancel = nil
	if e.rec.Status == StatusCancelled {
		return
	}
	switch {
	case errors.Is(err, context.Canceled):
		t.set(e, StatusCancelled, "")
	case err != nil:
		t.set(e, StatusFailed, err.Error())
	default:
		e.rec.Result = result
		t.set(e, StatusDone, "")
	}
}

func (t *Tracker) set(e *entry, s Status, msg string) {
	e.rec.Status = s
	e.rec.Error = msg
	e.rec.UpdatedAt = t.now()
}

// prune must be called with mu held.
func (t *Tracker) prune() {
	for len(t.entries) > t.limit {
		var oldest *entry
		for _, e := range t.entries {
			if !e.rec.Status.Finished() {
				continue
			}
			if oldest == nil || e.rec.CreatedAt.Before(oldest.rec.CreatedAt) {
				oldest = e
			}
		}
		if oldest == nil {
			return
		}
		delete(t.entries, oldest.rec.ID)
	}
}

type trackedJob struct {
	tracker *Tracker
	id      string
	job     Job
}

func (j *trackedJob) Name() string { return j.job.Name() }

func (j *trackedJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("job_id", j.id)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !j.tracker.start(j.id, cancel) {
		log.Info("job cancelled before it started, skipping")
		return nil
	}

	err := j.job.Run(logger.NewContext(ctx, log))

	var result any
	if r, ok := j.job.(Resulter); ok && err == nil {
		result = r.Result()
	}
	j.tracker.finish(j.id, err, result)
	return err
}
