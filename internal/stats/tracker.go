// Package stats tracks study streaks, session time and per-day rating
// histograms. Every function takes the current time explicitly and works on
// a Stats value owned by the caller.
package stats

import (
	"math"
	"time"

	"github.com/vytor/lingoflash/internal/flashcard"
	"github.com/vytor/lingoflash/internal/models"
)

// calendarDay truncates t to midnight in its own location.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b, both read in b's location.
func daysBetween(a, b time.Time) int {
	a = a.In(b.Location())
	// Round absorbs DST days that are 23 or 25 hours long.
	return int(math.Round(calendarDay(b).Sub(calendarDay(a)).Hours() / 24))
}

// UpdateStreak extends the streak when the previous review was on the
// previous calendar day and restarts it at 1 after a longer gap or when
// there is no previous review. A second review on the same day leaves the
// streak alone. The last review date becomes now.
func UpdateStreak(s *models.Stats, now time.Time) {
	if s.LastReviewDate == nil {
		s.Streak = 1
	} else {
		switch gap := daysBetween(*s.LastReviewDate, now); {
		case gap == 1:
			s.Streak++
		case gap > 1:
			s.Streak = 1
		}
	}
	last := now
	s.LastReviewDate = &last
}

// RecordResponse counts one review on now's calendar day. today_reviews
// restarts when the previous review happened on another day, so it must be
// called before UpdateStreak moves the last review date.
func RecordResponse(s *models.Stats, now time.Time, r flashcard.Response) {
	if s.LastReviewDate != nil && daysBetween(*s.LastReviewDate, now) != 0 {
		s.TodayReviews = 0
	}
	s.TodayReviews++

	if s.ReviewHistory == nil {
		s.ReviewHistory = map[string]*models.DayHistory{}
	}
	key := now.Format(models.DateLayout)
	day, ok := s.ReviewHistory[key]
	if !ok {
		day = &models.DayHistory{}
		s.ReviewHistory[key] = day
	}
	day.Total++
	switch r {
	case flashcard.Again:
		day.Ratings.Again++
	case flashcard.Hard:
		day.Ratings.Hard++
	case flashcard.Good:
		day.Ratings.Good++
	case flashcard.Easy:
		day.Ratings.Easy++
	}
}

// ReviewsToday is today_reviews as of now: zero when the last review was
// on an earlier day.
func ReviewsToday(s models.Stats, now time.Time) int {
	if s.LastReviewDate == nil || daysBetween(*s.LastReviewDate, now) != 0 {
		return 0
	}
	return s.TodayReviews
}

// StartSession stamps the session start. An open session is overwritten.
func StartSession(s *models.Stats, now time.Time) {
	start := now
	s.SessionStart = &start
}

// EndSession adds the elapsed wall-clock time of the open session to the
// cumulative study time and closes it. It returns the seconds added, zero
// when no session was open.
func EndSession(s *models.Stats, now time.Time) float64 {
	if s.SessionStart == nil {
		return 0
	}
	elapsed := math.Max(0, now.Sub(*s.SessionStart).Seconds())
	s.StudyTime += elapsed
	s.SessionStart = nil
	return elapsed
}

// TodayRatings returns the rating histogram for now's calendar day.
func TodayRatings(s models.Stats, now time.Time) models.RatingCounts {
	if day, ok := s.ReviewHistory[now.Format(models.DateLayout)]; ok && day != nil {
		return day.Ratings
	}
	return models.RatingCounts{}
}

// SuccessRate is the percentage of today's ratings that were good or easy.
func SuccessRate(s models.Stats, now time.Time) float64 {
	r := TodayRatings(s, now)
	total := r.Sum()
	if total == 0 {
		return 0
	}
	return round1(float64(r.Good+r.Easy) / float64(total) * 100)
}

// AverageMinutesPerCard divides cumulative study time by today's reviews.
func AverageMinutesPerCard(s models.Stats) float64 {
	if s.TodayReviews == 0 {
		return 0
	}
	return round1(s.StudyTime / 60 / float64(s.TodayReviews))
}

// StudyHours is the cumulative study time in hours, one decimal.
func StudyHours(s models.Stats) float64 {
	return round1(s.StudyTime / 3600)
}

// SourceDistribution groups active cards by source name.
func SourceDistribution(cards []models.Card) map[string]models.SourceProgress {
	dist := make(map[string]models.SourceProgress)
	for _, c := range cards {
		name := models.SourceName(c.AudioPath)
		p := dist[name]
		p.Total++
		if !c.IsNew() {
			p.Reviewed++
		}
		dist[name] = p
	}
	return dist
}

// Detailed assembles the full statistics view.
func Detailed(s models.Stats, cards []models.Card, settings models.Settings, now time.Time) models.DetailedStats {
	limit := settings.DailyLimit
	if limit <= 0 {
		limit = models.DefaultDailyLimit
	}
	today := ReviewsToday(s, now)
	return models.DetailedStats{
		Streak:                s.Streak,
		TodayReviews:          today,
		StudyHours:            StudyHours(s),
		RatingsDistribution:   TodayRatings(s, now),
		SourcesDistribution:   SourceDistribution(cards),
		Progress:              models.Progress{Done: today, Total: limit},
		SuccessRate:           SuccessRate(s, now),
		AverageMinutesPerCard: AverageMinutesPerCard(s),
	}
}

// Reset returns empty stats.
func Reset() models.Stats {
	return models.NewStats()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
