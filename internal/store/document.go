package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/vytor/lingoflash/internal/flashcard"
	"github.com/vytor/lingoflash/internal/models"
)

// Version is written into every saved document. Files without a version
// field were written by the original desktop app and use its timestamp
// formats.
const Version = 2

// document is the on-disk layout of state.json.
type document struct {
	Version       int                        `json:"version"`
	Items         []cardRecord               `json:"items"`
	SkippedCards  []cardRecord               `json:"skipped_cards"`
	Settings      json.RawMessage            `json:"settings,omitempty"`
	Stats         *statsRecord               `json:"stats,omitempty"`
	AnalysisCache map[string]models.Analysis `json:"analysis_cache"`
}

type cardRecord struct {
	ID             string    `json:"id"`
	Text           string    `json:"text"`
	AudioPath      string    `json:"audio_path"`
	URL            string    `json:"url"`
	StartTime      float64   `json:"start_time"`
	EndTime        float64   `json:"end_time"`
	Language       string    `json:"language,omitempty"`
	NextReview     timestamp `json:"next_review"`
	Interval       float64   `json:"interval"`
	Ease           float64   `json:"ease"`
	Reviews        int       `json:"reviews"`
	LastReviewDate string    `json:"last_review_date,omitempty"`
}

type statsRecord struct {
	LastReviewDate *timestamp                    `json:"last_review_date"`
	Streak         int                           `json:"streak"`
	TodayReviews   int                           `json:"today_reviews"`
	StudyTime      float64                       `json:"study_time"`
	SessionStart   *timestamp                    `json:"session_start"`
	ReviewHistory  map[string]*models.DayHistory `json:"review_history"`
}

// timestamp reads RFC 3339, naive ISO-8601 (local time, optional
// microseconds) and epoch seconds. It always writes RFC 3339.
type timestamp struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func (t timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] != '"' {
		secs, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("timestamp %s: %w", b, err)
		}
		whole, frac := math.Modf(secs)
		t.Time = time.Unix(int64(whole), int64(frac*1e9))
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp %q: unrecognized format", s)
}

func optionalTime(t *time.Time) *timestamp {
	if t == nil {
		return nil
	}
	return &timestamp{*t}
}

func (t *timestamp) ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

func toRecord(c models.Card) cardRecord {
	return cardRecord{
		ID:             c.ID,
		Text:           c.Text,
		AudioPath:      c.AudioPath,
		URL:            c.URL,
		StartTime:      c.StartTime,
		EndTime:        c.EndTime,
		Language:       c.Language,
		NextReview:     timestamp{c.NextReview},
		Interval:       c.Interval,
		Ease:           c.Ease,
		Reviews:        c.Reviews,
		LastReviewDate: c.LastReviewDate,
	}
}

// card fills in what older files leave out: the learning language at load
// time and the default ease.
func (r cardRecord) card(language string) models.Card {
	c := models.Card{
		ID:             r.ID,
		Text:           r.Text,
		AudioPath:      r.AudioPath,
		URL:            r.URL,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		Language:       r.Language,
		NextReview:     r.NextReview.Time,
		Interval:       r.Interval,
		Ease:           r.Ease,
		Reviews:        r.Reviews,
		LastReviewDate: r.LastReviewDate,
	}
	if c.Language == "" {
		c.Language = language
	}
	if c.Ease == 0 {
		c.Ease = flashcard.DefaultEase
	}
	return c
}

func toRecords(cards []models.Card) []cardRecord {
	out := make([]cardRecord, len(cards))
	for i, c := range cards {
		out[i] = toRecord(c)
	}
	return out
}

func encode(s Snapshot) ([]byte, error) {
	settings, err := json.Marshal(s.Settings)
	if err != nil {
		return nil, err
	}
	cache := s.AnalysisCache
	if cache == nil {
		cache = map[string]models.Analysis{}
	}
	history := s.Stats.ReviewHistory
	if history == nil {
		history = map[string]*models.DayHistory{}
	}

	doc := document{
		Version:      Version,
		Items:        toRecords(s.Items),
		SkippedCards: toRecords(s.Skipped),
		Settings:     settings,
		Stats: &statsRecord{
			LastReviewDate: optionalTime(s.Stats.LastReviewDate),
			Streak:         s.Stats.Streak,
			TodayReviews:   s.Stats.TodayReviews,
			StudyTime:      s.Stats.StudyTime,
			SessionStart:   optionalTime(s.Stats.SessionStart),
			ReviewHistory:  history,
		},
		AnalysisCache: cache,
	}
	return json.MarshalIndent(doc, "", "  ")
}

func decode(b []byte) (Snapshot, error) {
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if doc.Version > Version {
		return Snapshot{}, fmt.Errorf("%w: version %d is newer than %d", ErrCorruptState, doc.Version, Version)
	}

	snap := Empty()
	if len(doc.Settings) > 0 && string(doc.Settings) != "null" {
		// Unmarshalling over the defaults keeps them for absent keys.
		if err := json.Unmarshal(doc.Settings, &snap.Settings); err != nil {
			return Snapshot{}, fmt.Errorf("%w: settings: %v", ErrCorruptState, err)
		}
	}
	for _, r := range doc.Items {
		snap.Items = append(snap.Items, r.card(snap.Settings.LearningLanguage))
	}
	for _, r := range doc.SkippedCards {
		snap.Skipped = append(snap.Skipped, r.card(snap.Settings.LearningLanguage))
	}
	if st := doc.Stats; st != nil {
		snap.Stats = models.Stats{
			LastReviewDate: st.LastReviewDate.ptr(),
			Streak:         st.Streak,
			TodayReviews:   st.TodayReviews,
			StudyTime:      st.StudyTime,
			SessionStart:   st.SessionStart.ptr(),
			ReviewHistory:  st.ReviewHistory,
		}
		if snap.Stats.ReviewHistory == nil {
			snap.Stats.ReviewHistory = map[string]*models.DayHistory{}
		}
	}
	if doc.AnalysisCache != nil {
		snap.AnalysisCache = doc.AnalysisCache
	}
	return snap, nil
}
