package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/lingoflash/internal/logger"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logger.Level
	}{
		{"debug", logger.DEBUG},
		{"INFO", logger.INFO},
		{"warning", logger.WARN},
		{" error ", logger.ERROR},
		{"verbose", logger.INFO},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.ParseLevel(tt.in))
		})
	}
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.WARN), logger.WithColors(false))

	log.Info("hidden")
	log.Warn("shown %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "shown 1")
}

func TestLogger_FieldsAreSortedAndPrefixed(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithColors(false),
		logger.WithClock(fixedClock),
	).WithPrefix("store").WithFields(map[string]any{"b": 2, "a": 1})

	log.Info("saved")

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "2024-03-01 12:00:00.000 INFO  [store] "))
	assert.True(t, strings.HasSuffix(line, "saved a=1 b=2\n"), line)
}

func TestLogger_DerivedLoggerDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := logger.New(logger.WithOutput(&buf), logger.WithColors(false))
	_ = parent.WithField("card_id", "x")

	parent.Info("plain")
	assert.NotContains(t, buf.String(), "card_id")
}

func TestContextRoundTrip(t *testing.T) {
	log := logger.Discard().WithPrefix("ctx")
	ctx := logger.NewContext(context.Background(), log)

	assert.Same(t, log, logger.FromContext(ctx))
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}
