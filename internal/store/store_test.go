package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/lingoflash/internal/models"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	return s
}

func sampleSnapshot() Snapshot {
	now := time.Date(2024, 3, 1, 12, 30, 15, 123456000, time.UTC)
	last := now.Add(-2 * time.Hour)
	snap := Empty()
	snap.Items = []models.Card{
		{ID: "a", Text: "おはよう", AudioPath: "/d/ep1.mp3", StartTime: 0, EndTime: 1.25, Language: "ja",
			NextReview: now.Add(72 * time.Hour), Interval: 3, Ease: 2.35, Reviews: 4, LastReviewDate: "2024-03-01"},
		{ID: "b", Text: "こんばんは", AudioPath: "/d/ep1.mp3", StartTime: 1.25, EndTime: 2, Language: "ja",
			NextReview: now, Ease: 2.5},
	}
	snap.Skipped = []models.Card{
		{ID: "c", Text: "skip me", AudioPath: "/d/ep2.mp3", StartTime: 3, EndTime: 4, Language: "ja", NextReview: now, Ease: 2.5},
	}
	snap.Settings.DailyNewCards = 7
	snap.Settings.LastStudyDate = "2024-03-01"
	snap.Stats.Streak = 5
	snap.Stats.TodayReviews = 9
	snap.Stats.StudyTime = 1234.5
	snap.Stats.LastReviewDate = &last
	snap.Stats.ReviewHistory["2024-03-01"] = &models.DayHistory{Total: 9, Ratings: models.RatingCounts{Again: 1, Good: 8}}
	snap.AnalysisCache[models.AnalysisKey{Text: "おはよう", LearningLanguage: "ja", NativeLanguage: "en"}.String()] = models.Analysis{
		Translation: "good morning",
		Words:       json.RawMessage(`[]`),
		Grammar:     json.RawMessage(`[]`),
		Notes:       json.RawMessage(`["casual"]`),
	}
	return snap
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newStore(t)
	want := sampleSnapshot()

	require.NoError(t, s.Save(context.Background(), want))
	got, err := s.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, got.Items, len(want.Items))
	for i := range want.Items {
		w, g := want.Items[i], got.Items[i]
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.Text, g.Text)
		assert.Equal(t, w.Interval, g.Interval)
		assert.Equal(t, w.Ease, g.Ease)
		assert.Equal(t, w.Reviews, g.Reviews)
		assert.True(t, w.NextReview.Truncate(time.Second).Equal(g.NextReview.Truncate(time.Second)))
	}
	assert.Equal(t, "c", got.Skipped[0].ID)
	assert.Equal(t, want.Settings, got.Settings)
	assert.Equal(t, 5, got.Stats.Streak)
	assert.Equal(t, 1234.5, got.Stats.StudyTime)
	assert.True(t, want.Stats.LastReviewDate.Equal(*got.Stats.LastReviewDate))
	assert.Nil(t, got.Stats.SessionStart)
	assert.Equal(t, want.Stats.ReviewHistory, got.Stats.ReviewHistory)
	assert.Equal(t, "good morning", got.AnalysisCache["おはよう:ja:en"].Translation)
}

func TestSave_WritesVersionedDocument(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(context.Background(), sampleSnapshot()))

	b, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.JSONEq(t, `2`, string(raw["version"]))
	for _, key := range []string{"items", "skipped_cards", "settings", "stats", "analysis_cache"} {
		assert.Contains(t, raw, key)
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestLoad_MissingFile(t *testing.T) {
	s := newStore(t)

	got, err := s.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.Equal(t, models.DefaultSettings(), got.Settings)
	assert.NotNil(t, got.AnalysisCache)
}

func TestLoad_CorruptFileDegradesToEmpty(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"items": [`), 0o644))

	got, err := s.Load(context.Background())

	assert.ErrorIs(t, err, ErrCorruptState)
	assert.Empty(t, got.Items)
	assert.Empty(t, got.Skipped)
	assert.Empty(t, got.AnalysisCache)
	assert.Equal(t, models.DefaultSettings(), got.Settings)

	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr), "corrupt file is moved aside")
	matches, _ := filepath.Glob(s.Path() + ".corrupt-*")
	assert.Len(t, matches, 1)
}

func TestLoad_BadTimestampIsCorrupt(t *testing.T) {
	s := newStore(t)
	doc := `{"items":[{"id":"a","text":"x","audio_path":"/a.mp3","start_time":0,"end_time":1,"next_review":"yesterday"}]}`
	require.NoError(t, os.WriteFile(s.Path(), []byte(doc), 0o644))

	got, err := s.Load(context.Background())

	assert.ErrorIs(t, err, ErrCorruptState)
	assert.Empty(t, got.Items)
}

func TestLoad_NewerVersionIsRejected(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"version": 99, "items": []}`), 0o644))

	_, err := s.Load(context.Background())

	assert.ErrorIs(t, err, ErrCorruptState)
}

const legacyState = `{
  "items": [
    {"id": "6f1c", "text": "今日は", "audio_path": "/downloads/ep.mp3", "url": "",
     "start_time": 0.0, "end_time": 2.4, "next_review": "2024-03-01T09:15:30.123456",
     "interval": 2.5, "ease": 2.4, "reviews": 2},
    {"id": "7a2d", "text": "ありがとう", "audio_path": "/downloads/ep.mp3",
     "start_time": 2.4, "end_time": 3.0, "next_review": "2024-03-01T09:15:30",
     "interval": 0, "reviews": 0, "language": "ja"}
  ],
  "skipped_cards": [],
  "settings": {"daily_new_cards": 10, "cards_per_session": 5, "learning_language": "es"},
  "stats": {"last_review_date": "2024-02-29T21:04:11.501122", "streak": 3, "today_reviews": 4,
            "study_time": 1800.5, "session_start": 1709280000.25,
            "review_history": {"2024-02-29": {"total": 4, "ratings": {"again": 1, "hard": 0, "good": 2, "easy": 1}}}},
  "analysis_cache": {"今日は:es:en": {"translation": "Hello", "words": ["今日"], "grammar": [], "notes": []}}
}`

func TestLoad_LegacyDocument(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(legacyState), 0o644))

	got, err := s.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, got.Items, 2)
	first := got.Items[0]
	assert.True(t, time.Date(2024, 3, 1, 9, 15, 30, 123456000, time.Local).Equal(first.NextReview))
	assert.Equal(t, "es", first.Language, "missing language falls back to the learning language")
	assert.Equal(t, 2.4, first.Ease)
	assert.Equal(t, 2.5, got.Items[1].Ease, "missing ease falls back to the default")
	assert.Equal(t, "ja", got.Items[1].Language)

	assert.Equal(t, 10, got.Settings.DailyNewCards)
	assert.Equal(t, "en", got.Settings.NativeLanguage, "absent settings keep defaults")
	assert.Equal(t, models.DefaultDailyLimit, got.Settings.DailyLimit)

	require.NotNil(t, got.Stats.LastReviewDate)
	assert.Equal(t, 29, got.Stats.LastReviewDate.Day())
	require.NotNil(t, got.Stats.SessionStart)
	assert.Equal(t, int64(1709280000), got.Stats.SessionStart.Unix())
	assert.Equal(t, 250*time.Millisecond, time.Duration(got.Stats.SessionStart.Nanosecond()))
	assert.Equal(t, 2, got.Stats.ReviewHistory["2024-02-29"].Ratings.Good)

	analysis, ok := got.AnalysisCache["今日は:es:en"]
	require.True(t, ok)
	assert.Equal(t, "Hello", analysis.Translation)
	assert.False(t, analysis.Degraded)
}

func TestLoad_LegacyRoundTripUpgradesFormat(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(legacyState), 0o644))
	first, err := s.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), first))
	second, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(first.Items), len(second.Items))
	assert.True(t, first.Items[0].NextReview.Equal(second.Items[0].NextReview))
	assert.True(t, first.Stats.SessionStart.Equal(*second.Stats.SessionStart))
}

func TestTimestamp_Formats(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2024-03-01T10:00:00Z"`, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{`"2024-03-01T10:00:00.5+02:00"`, time.Date(2024, 3, 1, 8, 0, 0, 500000000, time.UTC)},
		{`"2024-03-01 10:00:00"`, time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)},
		{`"2024-03-01"`, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)},
		{`1709287200`, time.Unix(1709287200, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var ts timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %v", ts.Time)
		})
	}
}
