// Package media turns uploaded files and remote episodes into transcribed
// segments ready for the card store.
package media

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/vytor/lingoflash/internal/models"
)

var (
	// ErrNoSegments is returned when transcription yields nothing usable.
	ErrNoSegments = errors.New("media: transcription produced no segments")
	// ErrUnsupportedSource is returned for inputs this pipeline cannot fetch
	// or decode.
	ErrUnsupportedSource = errors.New("media: unsupported source")
	// ErrNoTranscriber is returned when no transcription service is configured.
	ErrNoTranscriber = errors.New("media: no transcription service configured")
)

// Pipeline fetches media, stores its audio under the download directory and
// transcribes it. The language is the learning language at import time.
type Pipeline interface {
	ProcessUpload(ctx context.Context, path, language string) (models.MediaResult, error)
	ProcessYouTube(ctx context.Context, url, language string) (models.MediaResult, error)
	ProcessPodcastEpisode(ctx context.Context, url, title, language string) (models.MediaResult, error)
}

// Transcriber converts an audio file into ordered segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) ([]models.Segment, error)
}

type disabledTranscriber struct{}

// DisabledTranscriber fails every request with ErrNoTranscriber.
func DisabledTranscriber() Transcriber { return disabledTranscriber{} }

func (disabledTranscriber) Transcribe(context.Context, string, string) ([]models.Segment, error) {
	return nil, ErrNoTranscriber
}

// safeFileName keeps letters, digits, spaces, '-' and '_' from title.
func safeFileName(title string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			return r
		}
		return -1
	}, title)
	name = strings.TrimRight(name, " ")
	if name == "" {
		return "episode"
	}
	return name
}

var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".ogg":  true,
	".flac": true,
}
