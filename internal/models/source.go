package models

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	SourceTypeYouTube = "youtube"
	SourceTypePodcast = "podcast"
	SourceTypeUpload  = "upload"
)

// SourceName is the display name of a source: its file name without
// extension.
func SourceName(audioPath string) string {
	base := filepath.Base(audioPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Source is one imported media item and its card counts.
type Source struct {
	AudioPath     string `json:"audio_path"`
	Title         string `json:"title"`
	Type          string `json:"type"`
	URL           string `json:"url,omitempty"`
	CardCount     int    `json:"card_count"`
	ReviewedCount int    `json:"reviewed_count"`
}

// DeleteSourceResult reports what delete_source removed.
type DeleteSourceResult struct {
	CardsDeleted int  `json:"cards_deleted"`
	FileDeleted  bool `json:"file_deleted"`
	StatsReset   bool `json:"stats_reset"`
}

// ReviewLogEntry is one graded response as stored in the review log.
type ReviewLogEntry struct {
	ID         int64     `json:"id"`
	CardID     string    `json:"card_id"`
	AudioPath  string    `json:"audio_path"`
	Response   string    `json:"response"`
	Interval   float64   `json:"interval"`
	Ease       float64   `json:"ease"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// ReviewLogFilter narrows a review log query. Zero values mean no filter.
type ReviewLogFilter struct {
	CardID    string
	AudioPath string
	Since     *time.Time
	Until     *time.Time
	Limit     int
}

// ResponseCount is a per-response tally from the review log.
type ResponseCount struct {
	Response string `json:"response"`
	Count    int    `json:"count"`
}

const (
	ImportUpload  = "upload"
	ImportYouTube = "youtube"
	ImportPodcast = "podcast"
)

// ImportRequest asks the media pipeline to fetch and transcribe one source
// in the background.
type ImportRequest struct {
	Kind     string `json:"kind" validate:"required,oneof=upload youtube podcast"`
	Path     string `json:"path,omitempty" validate:"required_if=Kind upload"`
	URL      string `json:"url,omitempty" validate:"required_unless=Kind upload"`
	Title    string `json:"title,omitempty" validate:"required_if=Kind podcast"`
	Language string `json:"language,omitempty"`
}
