package models

import "time"

// DateLayout is the calendar-day key used for review history and the
// various "last date" markers.
const DateLayout = "2006-01-02"

// Stats is the study progress owned by the stats tracker.
type Stats struct {
	LastReviewDate *time.Time             `json:"last_review_date"`
	Streak         int                    `json:"streak"`
	TodayReviews   int                    `json:"today_reviews"`
	StudyTime      float64                `json:"study_time"` // seconds
	SessionStart   *time.Time             `json:"session_start"`
	ReviewHistory  map[string]*DayHistory `json:"review_history"`
}

func NewStats() Stats {
	return Stats{ReviewHistory: map[string]*DayHistory{}}
}

// DayHistory is the rating histogram for one calendar day.
type DayHistory struct {
	Total   int          `json:"total"`
	Ratings RatingCounts `json:"ratings"`
}

type RatingCounts struct {
	Again int `json:"again"`
	Hard  int `json:"hard"`
	Good  int `json:"good"`
	Easy  int `json:"easy"`
}

// Sum returns the number of ratings across all kinds.
func (r RatingCounts) Sum() int {
	return r.Again + r.Hard + r.Good + r.Easy
}

// DueSummary is the headline count shown on the study screen.
type DueSummary struct {
	Due   int `json:"due"`
	New   int `json:"new"`
	Total int `json:"total"`
}

type SourceProgress struct {
	Total    int `json:"total"`
	Reviewed int `json:"reviewed"`
}

type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// DetailedStats is the full statistics view.
type DetailedStats struct {
	Streak                int                       `json:"streak"`
	TodayReviews          int                       `json:"today_reviews"`
	StudyHours            float64                   `json:"study_time"`
	RatingsDistribution   RatingCounts              `json:"ratings_distribution"`
	SourcesDistribution   map[string]SourceProgress `json:"sources_distribution"`
	Progress              Progress                  `json:"progress"`
	SuccessRate           float64                   `json:"success_rate"`
	AverageMinutesPerCard float64                   `json:"avg_time"`
}
