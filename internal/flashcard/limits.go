package flashcard

import (
	"time"

	"github.com/vytor/lingoflash/internal/models"
)

// RollDailyLimit clears the extra-card counter when the stored study date
// is not now's calendar day. The bool reports whether settings changed and
// need saving.
func RollDailyLimit(settings models.Settings, now time.Time) (models.Settings, bool) {
	today := now.Format(models.DateLayout)
	if settings.LastStudyDate == today {
		return settings, false
	}
	settings.ExtraCardsToday = 0
	settings.LastStudyDate = today
	return settings, true
}

// CheckDailyLimit reports whether today's reviews reached the soft daily
// limit. The limit is advisory; SelectDue does not consult it.
func CheckDailyLimit(settings models.Settings, todayReviews int) models.DailyLimit {
	limit := settings.DailyLimit
	if limit <= 0 {
		limit = models.DefaultDailyLimit
	}
	return models.DailyLimit{
		LimitReached: todayReviews >= limit,
		TotalToday:   todayReviews,
		DailyLimit:   limit,
		ExtraCards:   settings.ExtraCardsToday,
	}
}

// ContinueBeyondLimit records that the learner chose to keep studying past
// the daily limit.
func ContinueBeyondLimit(settings models.Settings, now time.Time) models.Settings {
	settings, _ = RollDailyLimit(settings, now)
	settings.ExtraCardsToday++
	return settings
}
