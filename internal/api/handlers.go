package api

import (
	"database/sql"

	"github.com/vytor/lingoflash/internal/services"
)

// Server exposes the study services over HTTP.
type Server struct {
	Cards    services.CardService
	Reviews  services.ReviewService
	Stats    services.StatsService
	Settings services.SettingsService
	Analysis services.AnalysisService
	Imports  services.ImportService

	// DB is the optional review log database, pinged by the readiness probe.
	DB *sql.DB
}
