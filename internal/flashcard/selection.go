package flashcard

import (
	"math/rand/v2"
	"time"

	"github.com/vytor/lingoflash/internal/models"
)

// Partition splits cards into due (seen and ready at now) and new (never
// seen). Seen cards that are not yet due are in neither list.
func Partition(cards []models.Card, now time.Time) (due, fresh []models.Card) {
	for _, c := range cards {
		switch {
		case c.IsNew():
			fresh = append(fresh, c)
		case c.IsDue(now):
			due = append(due, c)
		}
	}
	return due, fresh
}

// NewCardsToday counts cards whose first review happened on now's calendar
// day, judged by LastReviewDate.
func NewCardsToday(cards []models.Card, now time.Time) int {
	today := now.Format(models.DateLayout)
	n := 0
	for _, c := range cards {
		if c.Reviews == 1 && c.LastReviewDate == today {
			n++
		}
	}
	return n
}

// NewQuota is how many new cards may still be introduced today.
func NewQuota(cards []models.Card, settings models.Settings, now time.Time) int {
	return max(0, settings.DailyNewCards-NewCardsToday(cards, now))
}

// SelectDue returns the next batch to study: every due card plus new cards
// up to the remaining daily quota, shuffled, then cut to the batch size.
// limit overrides settings.CardsPerSession when positive.
//
// The new-card quota never removes due cards from the candidate pool; only
// the final batch size bounds them.
func SelectDue(cards []models.Card, settings models.Settings, now time.Time, limit int) []models.Card {
	due, fresh := Partition(cards, now)

	quota := NewQuota(cards, settings, now)
	if quota < len(fresh) {
		fresh = fresh[:quota]
	}

	pool := make([]models.Card, 0, len(due)+len(fresh))
	pool = append(pool, due...)
	pool = append(pool, fresh...)

	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	size := settings.CardsPerSession
	if limit > 0 {
		size = limit
	}
	if size >= 0 && size < len(pool) {
		pool = pool[:size]
	}
	return pool
}

// Summarize counts due cards and the new cards available under today's quota.
func Summarize(cards []models.Card, settings models.Settings, now time.Time) models.DueSummary {
	due, fresh := Partition(cards, now)
	return models.DueSummary{
		Due:   len(due),
		New:   min(len(fresh), NewQuota(cards, settings, now)),
		Total: len(cards),
	}
}

// Focus returns every card belonging to the given sources, regardless of
// schedule, optionally shuffled.
func Focus(cards []models.Card, audioPaths []string, shuffle bool) []models.Card {
	wanted := make(map[string]bool, len(audioPaths))
	for _, p := range audioPaths {
		wanted[p] = true
	}
	var out []models.Card
	for _, c := range cards {
		if wanted[c.AudioPath] {
			out = append(out, c)
		}
	}
	if shuffle {
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out
}
