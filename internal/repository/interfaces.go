package repository

import (
	"context"

	"github.com/vytor/lingoflash/internal/models"
)

// ReviewLogRepository stores the append-only history of graded responses.
type ReviewLogRepository interface {
	Append(ctx context.Context, entry models.ReviewLogEntry) (int64, error)
	List(ctx context.Context, filter models.ReviewLogFilter) ([]models.ReviewLogEntry, error)
	Count(ctx context.Context, filter models.ReviewLogFilter) (int, error)
	CountByResponse(ctx context.Context, filter models.ReviewLogFilter) ([]models.ResponseCount, error)
	DeleteBySource(ctx context.Context, audioPath string) (int64, error)
	DeleteAll(ctx context.Context) error
}
