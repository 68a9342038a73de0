package testutil

import (
	"context"
	"database/sql"
	"strconv"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/lingoflash/internal/db"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/store"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// A single connection keeps every query on the same in-memory database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), sqlDB), "failed to apply migrations")
	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// Float returns a pointer to v, for building segment bounds.
func Float(v float64) *float64 {
	return &v
}

// Segments builds n valid segments of one second each, with ids
// "<prefix>-1".. and texts "line 1"...
func Segments(prefix string, n int) []models.Segment {
	segs := make([]models.Segment, 0, n)
	for i := 0; i < n; i++ {
		segs = append(segs, models.Segment{
			ID:    prefix + "-" + strconv.Itoa(i+1),
			Text:  "line " + strconv.Itoa(i+1),
			Start: Float(float64(i)),
			End:   Float(float64(i + 1)),
		})
	}
	return segs
}

// Clock is a settable time source for tests.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{t: t}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// MemPersister records saved snapshots in memory. Setting Fail makes every
// Save return it.
type MemPersister struct {
	mu    sync.Mutex
	Saves []store.Snapshot
	Fail  error
}

func (p *MemPersister) Save(ctx context.Context, snap store.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail != nil {
		return p.Fail
	}
	p.Saves = append(p.Saves, snap)
	return nil
}

// SaveCount returns how many snapshots were saved.
func (p *MemPersister) SaveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Saves)
}
