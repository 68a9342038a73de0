// Package deck is the card store: the active review pool plus the parked
// skipped cards. A Deck is not safe for concurrent use; callers serialize
// access (see internal/workspace).
package deck

import (
	"errors"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vytor/lingoflash/internal/flashcard"
	"github.com/vytor/lingoflash/internal/models"
)

// ErrNoSegments is returned by Add when the caller supplies no segments.
var ErrNoSegments = errors.New("deck: no segments provided")

var validate = validator.New(validator.WithRequiredStructEnabled())

// candidate holds the fields a card must carry to enter the deck.
type candidate struct {
	ID        string   `validate:"required"`
	Text      string   `validate:"required"`
	AudioPath string   `validate:"required"`
	Start     *float64 `validate:"required,gte=0"`
	End       *float64 `validate:"required,gte=0"`
}

func (c candidate) valid() bool {
	if err := validate.Struct(c); err != nil {
		return false
	}
	return *c.End > *c.Start
}

// SkipOutcome says what Skip did.
type SkipOutcome int

const (
	SkipNotFound SkipOutcome = iota
	SkipDone
	SkipAlreadySkipped
)

type Deck struct {
	items   []models.Card
	skipped []models.Card
}

// New builds a deck from loaded cards. The slices are copied.
func New(items, skipped []models.Card) *Deck {
	return &Deck{
		items:   slices.Clone(items),
		skipped: slices.Clone(skipped),
	}
}

// Clone returns an independent copy.
func (d *Deck) Clone() *Deck {
	return New(d.items, d.skipped)
}

// Items returns a copy of the active cards in insertion order.
func (d *Deck) Items() []models.Card {
	return slices.Clone(d.items)
}

// Skipped returns a copy of the parked cards.
func (d *Deck) Skipped() []models.Card {
	return slices.Clone(d.skipped)
}

func (d *Deck) Len() int {
	return len(d.items)
}

func (d *Deck) Empty() bool {
	return len(d.items) == 0
}

// Add appends one new card per usable segment. Blank, invalid and duplicate
// segments are dropped and counted; only an empty batch is an error. Text
// is stored as transcribed; a whitespace-only segment counts as blank.
func (d *Deck) Add(source models.SourceInfo, segments []models.Segment, language string, now time.Time) (models.AddResult, error) {
	var res models.AddResult
	if len(segments) == 0 {
		return res, ErrNoSegments
	}

	seen := make(map[string]bool, len(d.items)+len(d.skipped))
	for _, c := range d.items {
		seen[c.ID] = true
	}
	for _, c := range d.skipped {
		seen[c.ID] = true
	}

	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			res.Blank++
			continue
		}
		cand := candidate{ID: seg.ID, Text: seg.Text, AudioPath: source.AudioPath, Start: seg.Start, End: seg.End}
		if !cand.valid() {
			res.Invalid++
			continue
		}
		if seen[seg.ID] {
			res.Duplicate++
			continue
		}
		seen[seg.ID] = true

		card := flashcard.NewCard(seg.ID, seg.Text, source, *seg.Start, *seg.End, language, now)
		d.items = append(d.items, card)
		res.Added++
		res.CardIDs = append(res.CardIDs, card.ID)
	}
	return res, nil
}

func (d *Deck) indexOf(id string) int {
	return slices.IndexFunc(d.items, func(c models.Card) bool { return c.ID == id })
}

// Find looks up an active card.
func (d *Deck) Find(id string) (models.Card, bool) {
	i := d.indexOf(id)
	if i < 0 {
		return models.Card{}, false
	}
	return d.items[i], true
}

// Replace stores card over the active card with the same id.
func (d *Deck) Replace(card models.Card) bool {
	i := d.indexOf(card.ID)
	if i < 0 {
		return false
	}
	d.items[i] = card
	return true
}

// Delete removes an active card.
func (d *Deck) Delete(id string) bool {
	i := d.indexOf(id)
	if i < 0 {
		return false
	}
	d.items = slices.Delete(d.items, i, i+1)
	return true
}

// EditText replaces an active card's text with the trimmed input.
func (d *Deck) EditText(id, text string) bool {
	i := d.indexOf(id)
	if i < 0 {
		return false
	}
	d.items[i].Text = strings.TrimSpace(text)
	return true
}

// Skip moves an active card to the skipped set. Skipping a card that is
// already parked changes nothing.
func (d *Deck) Skip(id string) SkipOutcome {
	i := d.indexOf(id)
	if i < 0 {
		if slices.ContainsFunc(d.skipped, func(c models.Card) bool { return c.ID == id }) {
			return SkipAlreadySkipped
		}
		return SkipNotFound
	}
	card := d.items[i]
	d.items = slices.Delete(d.items, i, i+1)
	d.skipped = append(d.skipped, card)
	return SkipDone
}

// DeleteSource removes every active and skipped card of a source and
// returns how many were removed.
func (d *Deck) DeleteSource(audioPath string) int {
	fromSource := func(c models.Card) bool { return c.AudioPath == audioPath }
	before := len(d.items) + len(d.skipped)
	d.items = slices.DeleteFunc(d.items, fromSource)
	d.skipped = slices.DeleteFunc(d.skipped, fromSource)
	return before - len(d.items) - len(d.skipped)
}

// HasSource reports whether any active or skipped card uses audioPath.
func (d *Deck) HasSource(audioPath string) bool {
	fromSource := func(c models.Card) bool { return c.AudioPath == audioPath }
	return slices.ContainsFunc(d.items, fromSource) || slices.ContainsFunc(d.skipped, fromSource)
}

// ResetProgress makes every active card new again and drops the skipped set.
func (d *Deck) ResetProgress(now time.Time) {
	for i := range d.items {
		d.items[i] = flashcard.ResetProgress(d.items[i], now)
	}
	d.skipped = nil
}

// Sources lists the sources of the active cards in first-seen order.
func (d *Deck) Sources() []models.Source {
	var out []models.Source
	index := map[string]int{}
	for _, c := range d.items {
		i, ok := index[c.AudioPath]
		if !ok {
			index[c.AudioPath] = len(out)
			out = append(out, models.Source{
				AudioPath: c.AudioPath,
				Title:     models.SourceName(c.AudioPath),
				Type:      SourceType(c.URL),
				URL:       c.URL,
			})
			i = len(out) - 1
		}
		out[i].CardCount++
		if !c.IsNew() {
			out[i].ReviewedCount++
		}
	}
	return out
}

// SourceSegments returns the active cards of one source as segments ordered
// by start time.
func (d *Deck) SourceSegments(audioPath string) []models.SourceSegment {
	var out []models.SourceSegment
	for _, c := range d.items {
		if c.AudioPath != audioPath {
			continue
		}
		out = append(out, models.SourceSegment{ID: c.ID, Start: c.StartTime, End: c.EndTime, Text: c.Text})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// SourceType classifies a source by its origin url.
func SourceType(url string) string {
	switch {
	case strings.Contains(url, "youtube.com"), strings.Contains(url, "youtu.be"):
		return models.SourceTypeYouTube
	case url != "":
		return models.SourceTypePodcast
	default:
		return models.SourceTypeUpload
	}
}
