package flashcard

import (
	"math"
	"time"

	"github.com/vytor/lingoflash/internal/models"
)

const (
	MinEase     = 1.3
	MaxEase     = 2.5
	DefaultEase = 2.5
)

// Day is the length of one scheduling interval unit.
const Day = 24 * time.Hour

// ApplyReview updates card scheduling for one response and returns the
// updated copy.
//
//	again: interval = 1,                       ease -= 0.2  (floor 1.3)
//	hard:  interval = max(1, interval*ease*0.8), ease -= 0.15 (floor 1.3)
//	good:  interval = max(1, interval*ease),     ease unchanged
//	easy:  interval = max(2, interval*ease*1.3), ease += 0.1  (cap 2.5)
//
// The floors give a brand-new card (interval 0) a one-day first interval on
// good/hard and two days on easy. LastReviewDate is left untouched, so the
// new-card throttle in NewCardsToday only sees dates carried in from loaded
// state files.
func ApplyReview(card models.Card, r Response, now time.Time) (models.Card, error) {
	if !r.IsValid() {
		return card, ErrInvalidResponse
	}

	interval := math.Max(0, card.Interval)
	ease := normalizeEase(card.Ease)

	switch r {
	case Again:
		interval = 1
		ease = math.Max(MinEase, ease-0.2)
	case Hard:
		interval = math.Max(1, interval*ease*0.8)
		ease = math.Max(MinEase, ease-0.15)
	case Good:
		interval = math.Max(1, interval*ease)
	case Easy:
		interval = math.Max(2, interval*ease*1.3)
		ease = math.Min(MaxEase, ease+0.1)
	}

	card.Interval = interval
	card.Ease = ease
	card.NextReview = now.Add(IntervalDuration(interval))
	card.Reviews++
	return card, nil
}

// IntervalDuration converts a fractional day count to a duration.
func IntervalDuration(days float64) time.Duration {
	return time.Duration(days * float64(Day))
}

// normalizeEase treats a missing ease as the default and pulls stray
// values back into bounds.
func normalizeEase(ease float64) float64 {
	if ease == 0 {
		return DefaultEase
	}
	return math.Min(MaxEase, math.Max(MinEase, ease))
}

// NewCard builds a fresh card that is immediately eligible for study.
func NewCard(id, text string, source models.SourceInfo, start, end float64, language string, now time.Time) models.Card {
	return models.Card{
		ID:         id,
		Text:       text,
		AudioPath:  source.AudioPath,
		URL:        source.URL,
		StartTime:  start,
		EndTime:    end,
		Language:   language,
		NextReview: now,
		Interval:   0,
		Ease:       DefaultEase,
		Reviews:    0,
	}
}

// ResetProgress returns the card as if it had never been reviewed.
func ResetProgress(card models.Card, now time.Time) models.Card {
	card.NextReview = now
	card.Interval = 0
	card.Ease = DefaultEase
	card.Reviews = 0
	card.LastReviewDate = ""
	return card
}
