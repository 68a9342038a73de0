package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/lingoflash/internal/flashcard"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/stats"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 3, day, hour, minute, 0, 0, time.UTC)
}

func TestUpdateStreak_FirstReview(t *testing.T) {
	s := models.NewStats()

	stats.UpdateStreak(&s, at(1, 9, 0))

	assert.Equal(t, 1, s.Streak)
	require.NotNil(t, s.LastReviewDate)
	assert.Equal(t, at(1, 9, 0), *s.LastReviewDate)
}

func TestUpdateStreak_AcrossMidnight(t *testing.T) {
	s := models.NewStats()
	stats.UpdateStreak(&s, at(1, 23, 59))
	stats.UpdateStreak(&s, at(2, 0, 1))

	assert.Equal(t, 2, s.Streak, "two minutes apart on consecutive days extends the streak")
}

func TestUpdateStreak_SameDay(t *testing.T) {
	s := models.NewStats()
	stats.UpdateStreak(&s, at(1, 8, 0))
	stats.UpdateStreak(&s, at(1, 22, 0))

	assert.Equal(t, 1, s.Streak)
}

func TestUpdateStreak_GapResets(t *testing.T) {
	s := models.NewStats()
	stats.UpdateStreak(&s, at(1, 8, 0))
	stats.UpdateStreak(&s, at(2, 8, 0))
	stats.UpdateStreak(&s, at(3, 8, 0))
	require.Equal(t, 3, s.Streak)

	stats.UpdateStreak(&s, at(5, 8, 0))

	assert.Equal(t, 1, s.Streak)
}

func TestUpdateStreak_NearlyTwoDaysIsStillConsecutive(t *testing.T) {
	s := models.NewStats()
	stats.UpdateStreak(&s, at(1, 0, 1))
	stats.UpdateStreak(&s, at(2, 23, 59))

	assert.Equal(t, 2, s.Streak)
}

func TestRecordResponse(t *testing.T) {
	s := models.NewStats()

	for _, r := range []flashcard.Response{flashcard.Again, flashcard.Good, flashcard.Good, flashcard.Easy} {
		stats.RecordResponse(&s, at(1, 10, 0), r)
		stats.UpdateStreak(&s, at(1, 10, 0))
	}

	assert.Equal(t, 4, s.TodayReviews)
	day := s.ReviewHistory["2024-03-01"]
	require.NotNil(t, day)
	assert.Equal(t, 4, day.Total)
	assert.Equal(t, models.RatingCounts{Again: 1, Good: 2, Easy: 1}, day.Ratings)
	assert.Equal(t, 75.0, stats.SuccessRate(s, at(1, 11, 0)))
	assert.Zero(t, stats.SuccessRate(s, at(2, 11, 0)))
}

func TestRecordResponse_NewDayRestartsTodayReviews(t *testing.T) {
	s := models.NewStats()
	stats.RecordResponse(&s, at(1, 10, 0), flashcard.Good)
	stats.UpdateStreak(&s, at(1, 10, 0))
	stats.RecordResponse(&s, at(1, 11, 0), flashcard.Good)
	stats.UpdateStreak(&s, at(1, 11, 0))
	require.Equal(t, 2, s.TodayReviews)

	stats.RecordResponse(&s, at(2, 9, 0), flashcard.Hard)

	assert.Equal(t, 1, s.TodayReviews)
	assert.Equal(t, 2, s.ReviewHistory["2024-03-01"].Total)
	assert.Equal(t, 1, s.ReviewHistory["2024-03-02"].Ratings.Hard)
}

func TestRecordResponse_NilHistory(t *testing.T) {
	var s models.Stats

	stats.RecordResponse(&s, at(1, 10, 0), flashcard.Again)

	assert.Equal(t, 1, s.ReviewHistory["2024-03-01"].Ratings.Again)
}

func TestSessions(t *testing.T) {
	s := models.NewStats()

	assert.Zero(t, stats.EndSession(&s, at(1, 10, 0)), "no open session")

	stats.StartSession(&s, at(1, 10, 0))
	stats.StartSession(&s, at(1, 10, 5))
	added := stats.EndSession(&s, at(1, 10, 35))

	assert.Equal(t, 1800.0, added, "the later start wins")
	assert.Equal(t, 1800.0, s.StudyTime)
	assert.Nil(t, s.SessionStart)
}

func TestDerivedStats(t *testing.T) {
	s := models.NewStats()
	s.StudyTime = 5400
	s.TodayReviews = 30
	s.Streak = 4

	assert.Equal(t, 1.5, stats.StudyHours(s))
	assert.Equal(t, 3.0, stats.AverageMinutesPerCard(s))

	s.TodayReviews = 0
	assert.Zero(t, stats.AverageMinutesPerCard(s))
}

func TestSourceDistribution(t *testing.T) {
	cards := []models.Card{
		{ID: "1", AudioPath: "/downloads/episode one.mp3", Reviews: 2},
		{ID: "2", AudioPath: "/downloads/episode one.mp3"},
		{ID: "3", AudioPath: "/uploads/clip.wav"},
	}

	dist := stats.SourceDistribution(cards)

	assert.Equal(t, map[string]models.SourceProgress{
		"episode one": {Total: 2, Reviewed: 1},
		"clip":        {Total: 1, Reviewed: 0},
	}, dist)
}

func TestDetailed(t *testing.T) {
	s := models.NewStats()
	s.StudyTime = 600
	stats.RecordResponse(&s, at(1, 10, 0), flashcard.Good)
	stats.RecordResponse(&s, at(1, 10, 1), flashcard.Again)
	stats.UpdateStreak(&s, at(1, 10, 1))
	s.Streak = 3

	settings := models.DefaultSettings()
	settings.DailyLimit = 10
	cards := []models.Card{{ID: "1", AudioPath: "/a.mp3", Reviews: 1}}

	d := stats.Detailed(s, cards, settings, at(1, 12, 0))

	assert.Equal(t, 3, d.Streak)
	assert.Equal(t, 2, d.TodayReviews)
	assert.Equal(t, 0.2, d.StudyHours)
	assert.Equal(t, models.RatingCounts{Again: 1, Good: 1}, d.RatingsDistribution)
	assert.Equal(t, models.Progress{Done: 2, Total: 10}, d.Progress)
	assert.Equal(t, 50.0, d.SuccessRate)
	assert.Equal(t, 5.0, d.AverageMinutesPerCard)
	assert.Equal(t, models.SourceProgress{Total: 1, Reviewed: 1}, d.SourcesDistribution["a"])
}

func TestReviewsToday(t *testing.T) {
	s := models.NewStats()
	assert.Zero(t, stats.ReviewsToday(s, at(1, 9, 0)))

	stats.RecordResponse(&s, at(1, 9, 0), flashcard.Good)
	stats.UpdateStreak(&s, at(1, 9, 0))

	assert.Equal(t, 1, stats.ReviewsToday(s, at(1, 22, 0)))
	assert.Zero(t, stats.ReviewsToday(s, at(2, 0, 1)), "stale count from yesterday")
}

func TestReset(t *testing.T) {
	s := stats.Reset()

	assert.Zero(t, s.Streak)
	assert.Nil(t, s.LastReviewDate)
	assert.NotNil(t, s.ReviewHistory)
	assert.Empty(t, s.ReviewHistory)
}
