// Package store persists the whole study state as one JSON document,
// rewritten atomically after every change.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
)

// FileName is the state document inside the data directory.
const FileName = "state.json"

// ErrCorruptState marks a state file that could not be decoded.
var ErrCorruptState = errors.New("store: corrupt state file")

// Snapshot is everything that is persisted.
type Snapshot struct {
	Items         []models.Card
	Skipped       []models.Card
	Settings      models.Settings
	Stats         models.Stats
	AnalysisCache map[string]models.Analysis
}

// Empty is the state of a fresh profile.
func Empty() Snapshot {
	return Snapshot{
		Settings:      models.DefaultSettings(),
		Stats:         models.NewStats(),
		AnalysisCache: map[string]models.Analysis{},
	}
}

// Persister saves snapshots.
type Persister interface {
	Save(ctx context.Context, snap Snapshot) error
}

type FileStore struct {
	dir  string
	path string
}

// NewFileStore prepares dir for state.json, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir, path: filepath.Join(dir, FileName)}, nil
}

func (s *FileStore) Path() string {
	return s.path
}

// Load reads the state file. It always returns a usable snapshot: a missing
// file gives the empty state with a nil error, while an unreadable or
// corrupt file gives the empty state together with the reason. A corrupt
// file is moved aside so the next save does not destroy it.
func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	log := logger.FromContext(ctx).WithPrefix("store").WithField("path", s.path)

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info("no state file, starting empty")
		return Empty(), nil
	}
	if err != nil {
		log.Error("failed to read state: %v", err)
		return Empty(), fmt.Errorf("read state: %w", err)
	}

	snap, err := decode(b)
	if err != nil {
		log.Error("failed to decode state, starting empty: %v", err)
		backup := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
		if rerr := os.Rename(s.path, backup); rerr != nil {
			log.Warn("could not move corrupt state aside: %v", rerr)
		} else {
			log.Warn("corrupt state kept at %s", backup)
		}
		return Empty(), err
	}

	log.Info("loaded %d cards, %d skipped, %d cached analyses", len(snap.Items), len(snap.Skipped), len(snap.AnalysisCache))
	return snap, nil
}

// Save writes the snapshot to a temporary file and renames it over
// state.json, so a failed save leaves the previous file intact.
func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	log := logger.FromContext(ctx).WithPrefix("store")

	b, err := encode(snap)
	if err != nil {
		log.Error("failed to encode state: %v", err)
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, FileName+".*.tmp")
	if err != nil {
		log.Error("failed to create temp file: %v", err)
		return fmt.Errorf("save state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		log.Error("failed to write state: %v", err)
		return fmt.Errorf("save state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		log.Error("failed to sync state: %v", err)
		return fmt.Errorf("save state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		log.Error("failed to replace state file: %v", err)
		return fmt.Errorf("save state: %w", err)
	}

	log.Debug("saved %d cards (%d bytes)", len(snap.Items), len(b))
	return nil
}

var _ Persister = (*FileStore)(nil)
