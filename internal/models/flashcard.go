package models

import "time"

// Card is one transcribed audio segment under review.
type Card struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	AudioPath string  `json:"audio_path"`
	URL       string  `json:"url"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Language  string  `json:"language"`

	NextReview time.Time `json:"next_review"`
	Interval   float64   `json:"interval"`
	Ease       float64   `json:"ease"`
	Reviews    int       `json:"reviews"`

	// LastReviewDate is the calendar date (YYYY-MM-DD) of the latest review.
	// The new-card quota counts cards first reviewed today through it.
	LastReviewDate string `json:"last_review_date,omitempty"`
}

// IsNew reports whether the card has never been reviewed.
func (c Card) IsNew() bool {
	return c.Reviews == 0
}

// IsDue reports whether a previously reviewed card is ready at now.
func (c Card) IsDue(now time.Time) bool {
	return c.Reviews > 0 && !c.NextReview.After(now)
}

// Segment is one transcribed span of a media source as produced by the
// media pipeline. Start and End are pointers so a missing bound can be told
// apart from zero.
type Segment struct {
	ID    string   `json:"id"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Text  string   `json:"text"`
}

// SourceInfo describes the media a batch of segments came from.
type SourceInfo struct {
	Title     string `json:"title"`
	AudioPath string `json:"audio_path"`
	URL       string `json:"url,omitempty"`
}

// MediaResult is what the media pipeline returns for one processed source.
type MediaResult struct {
	SourceInfo
	Segments []Segment `json:"segments"`
}

// AddResult reports how a batch of segments was applied to the card store.
type AddResult struct {
	Added     int      `json:"added"`
	Blank     int      `json:"blank"`
	Invalid   int      `json:"invalid"`
	Duplicate int      `json:"duplicate"`
	CardIDs   []string `json:"card_ids"`
}

// SourceSegment is a card viewed as a span of its source.
type SourceSegment struct {
	ID    string  `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
