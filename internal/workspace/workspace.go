// Package workspace is the single owner of a profile's study state. It
// serializes every read-modify-write sequence and persists after each
// successful change.
package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vytor/lingoflash/internal/analysis"
	"github.com/vytor/lingoflash/internal/deck"
	apperrors "github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/store"
)

// ErrNoChange may be returned from an Update callback that decided not to
// modify anything. Update then skips the save and returns nil.
var ErrNoChange = errors.New("workspace: no change")

// State is the in-memory study state.
type State struct {
	Deck     *deck.Deck
	Settings models.Settings
	Stats    models.Stats
	Cache    *analysis.Cache
}

func fromSnapshot(snap store.Snapshot) *State {
	return &State{
		Deck:     deck.New(snap.Items, snap.Skipped),
		Settings: snap.Settings,
		Stats:    cloneStats(snap.Stats),
		Cache:    analysis.NewCache(snap.AnalysisCache),
	}
}

// Snapshot converts the state for persisting.
func (s *State) Snapshot() store.Snapshot {
	return store.Snapshot{
		Items:         s.Deck.Items(),
		Skipped:       s.Deck.Skipped(),
		Settings:      s.Settings,
		Stats:         cloneStats(s.Stats),
		AnalysisCache: s.Cache.Entries(),
	}
}

func (s *State) clone() *State {
	return &State{
		Deck:     s.Deck.Clone(),
		Settings: s.Settings,
		Stats:    cloneStats(s.Stats),
		Cache:    s.Cache.Clone(),
	}
}

func cloneStats(s models.Stats) models.Stats {
	out := s
	if s.LastReviewDate != nil {
		v := *s.LastReviewDate
		out.LastReviewDate = &v
	}
	if s.SessionStart != nil {
		v := *s.SessionStart
		out.SessionStart = &v
	}
	out.ReviewHistory = make(map[string]*models.DayHistory, len(s.ReviewHistory))
	for k, day := range s.ReviewHistory {
		if day == nil {
			continue
		}
		d := *day
		out.ReviewHistory[k] = &d
	}
	return out
}

type Option func(*Workspace)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) { w.now = now }
}

type Workspace struct {
	mu        sync.Mutex
	state     *State
	persister store.Persister
	now       func() time.Time
}

// New wraps a loaded snapshot.
func New(snap store.Snapshot, persister store.Persister, opts ...Option) *Workspace {
	w := &Workspace{
		state:     fromSnapshot(snap),
		persister: persister,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Open loads the state file in dir. A missing or unreadable file yields an
// empty workspace; only an unusable directory is an error.
func Open(ctx context.Context, dir string, opts ...Option) (*Workspace, error) {
	fs, err := store.NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	snap, err := fs.Load(ctx)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("workspace").Warn("continuing with empty state: %v", err)
	}
	return New(snap, fs, opts...), nil
}

// Now is the workspace clock.
func (w *Workspace) Now() time.Time {
	return w.now()
}

// View runs fn with the current state under the lock. fn must not modify
// the state.
func (w *Workspace) View(fn func(*State) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(w.state)
}

// Update runs fn on a copy of the state and persists the result. The copy
// replaces the live state only after a successful save, so a failed save
// leaves memory and disk in agreement. Save failures are returned as
// persistence errors.
func (w *Workspace) Update(ctx context.Context, fn func(*State) error) error {
	log := logger.FromContext(ctx).WithPrefix("workspace")

	w.mu.Lock()
	defer w.mu.Unlock()

	work := w.state.clone()
	if err := fn(work); err != nil {
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		log.Debug("update abandoned: %v", err)
		return err
	}

	if err := w.persister.Save(ctx, work.Snapshot()); err != nil {
		log.Error("failed to persist state, changes rolled back: %v", err)
		return apperrors.NewPersistenceError(err)
	}
	w.state = work
	return nil
}

// Snapshot returns a copy of the current state for export.
func (w *Workspace) Snapshot() store.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Snapshot()
}
