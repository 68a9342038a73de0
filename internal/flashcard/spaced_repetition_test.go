package flashcard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/lingoflash/internal/flashcard"
	"github.com/vytor/lingoflash/internal/models"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func seenCard(interval, ease float64) models.Card {
	return models.Card{
		ID:         "c1",
		Text:       "こんにちは",
		AudioPath:  "/audio/a.mp3",
		EndTime:    1.5,
		NextReview: now,
		Interval:   interval,
		Ease:       ease,
		Reviews:    3,
	}
}

func TestApplyReview_Again(t *testing.T) {
	for _, interval := range []float64{0, 1, 7.5, 120} {
		updated, err := flashcard.ApplyReview(seenCard(interval, 2.5), flashcard.Again, now)

		require.NoError(t, err)
		assert.Equal(t, 1.0, updated.Interval, "interval should reset to 1 from %v", interval)
		assert.InDelta(t, 2.3, updated.Ease, 1e-9)
		assert.Equal(t, 4, updated.Reviews)
		assert.Equal(t, now.Add(24*time.Hour), updated.NextReview)
	}
}

func TestApplyReview_Hard(t *testing.T) {
	updated, err := flashcard.ApplyReview(seenCard(10, 2.0), flashcard.Hard, now)

	require.NoError(t, err)
	assert.InDelta(t, 16.0, updated.Interval, 1e-9)
	assert.InDelta(t, 1.85, updated.Ease, 1e-9)
}

func TestApplyReview_Good(t *testing.T) {
	updated, err := flashcard.ApplyReview(seenCard(4, 2.5), flashcard.Good, now)

	require.NoError(t, err)
	assert.InDelta(t, 10.0, updated.Interval, 1e-9)
	assert.Equal(t, 2.5, updated.Ease, "good should not change ease")
	assert.Equal(t, now.Add(10*24*time.Hour), updated.NextReview)
}

func TestApplyReview_Easy(t *testing.T) {
	updated, err := flashcard.ApplyReview(seenCard(2, 2.0), flashcard.Easy, now)

	require.NoError(t, err)
	assert.InDelta(t, 5.2, updated.Interval, 1e-9)
	assert.InDelta(t, 2.1, updated.Ease, 1e-9)
}

func TestApplyReview_NewCardFloors(t *testing.T) {
	card := flashcard.NewCard("c1", "hola", models.SourceInfo{AudioPath: "/a.mp3"}, 0, 1, "es", now)

	good, err := flashcard.ApplyReview(card, flashcard.Good, now)
	require.NoError(t, err)
	assert.Equal(t, 1.0, good.Interval, "first good review should give a one-day interval")

	hard, err := flashcard.ApplyReview(card, flashcard.Hard, now)
	require.NoError(t, err)
	assert.Equal(t, 1.0, hard.Interval)

	easy, err := flashcard.ApplyReview(card, flashcard.Easy, now)
	require.NoError(t, err)
	assert.Equal(t, 2.0, easy.Interval)
	assert.Equal(t, 2.5, easy.Ease, "ease is already at the cap")
	assert.Equal(t, 1, easy.Reviews)
	assert.Empty(t, easy.LastReviewDate, "grading never stamps the per-card review date")
}

func TestApplyReview_EaseStaysInBounds(t *testing.T) {
	for _, start := range []float64{0, 0.5, 1.3, 2.0, 2.5, 4.0} {
		card := seenCard(3, start)
		for i := 0; i < 20; i++ {
			var err error
			card, err = flashcard.ApplyReview(card, flashcard.Again, now)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, card.Ease, flashcard.MinEase)
			assert.LessOrEqual(t, card.Ease, flashcard.MaxEase)
		}
		for _, r := range flashcard.Responses {
			for i := 0; i < 10; i++ {
				var err error
				card, err = flashcard.ApplyReview(card, r, now)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, card.Ease, flashcard.MinEase)
				assert.LessOrEqual(t, card.Ease, flashcard.MaxEase)
			}
		}
	}
}

func TestApplyReview_InvalidResponse(t *testing.T) {
	card := seenCard(3, 2.5)

	updated, err := flashcard.ApplyReview(card, flashcard.Response(9), now)

	assert.ErrorIs(t, err, flashcard.ErrInvalidResponse)
	assert.Equal(t, card, updated, "card should be unchanged")
}

func TestApplyReview_DoesNotMutateInput(t *testing.T) {
	card := seenCard(3, 2.5)
	original := card

	_, err := flashcard.ApplyReview(card, flashcard.Easy, now)

	require.NoError(t, err)
	assert.Equal(t, original, card)
}

func TestNewCard(t *testing.T) {
	src := models.SourceInfo{AudioPath: "/a.mp3", URL: "https://example.com/ep1"}
	card := flashcard.NewCard("id", "text", src, 1.0, 2.5, "ja", now)

	assert.True(t, card.IsNew())
	assert.Equal(t, now, card.NextReview)
	assert.Equal(t, flashcard.DefaultEase, card.Ease)
	assert.Equal(t, "/a.mp3", card.AudioPath)
	assert.Equal(t, "https://example.com/ep1", card.URL)
	assert.Equal(t, "ja", card.Language)
}

func TestResetProgress(t *testing.T) {
	card := seenCard(30, 1.4)
	card.LastReviewDate = "2024-02-28"

	reset := flashcard.ResetProgress(card, now)

	assert.True(t, reset.IsNew())
	assert.Zero(t, reset.Interval)
	assert.Equal(t, flashcard.DefaultEase, reset.Ease)
	assert.Empty(t, reset.LastReviewDate)
	assert.Equal(t, now, reset.NextReview)
	assert.Equal(t, card.Text, reset.Text)
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		in      string
		want    flashcard.Response
		wantErr bool
	}{
		{"again", flashcard.Again, false},
		{" Hard ", flashcard.Hard, false},
		{"GOOD", flashcard.Good, false},
		{"easy", flashcard.Easy, false},
		{"perfect", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := flashcard.ParseResponse(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, flashcard.ErrInvalidResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestResponse_TextRoundTrip(t *testing.T) {
	for _, r := range flashcard.Responses {
		b, err := r.MarshalText()
		require.NoError(t, err)

		var back flashcard.Response
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, r, back)
	}

	_, err := flashcard.Response(0).MarshalText()
	assert.ErrorIs(t, err, flashcard.ErrInvalidResponse)
}
