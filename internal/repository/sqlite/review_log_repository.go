package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/repository"
)

type reviewLogRepository struct {
	db *sql.DB
}

// NewReviewLogRepository creates a new ReviewLogRepository implementation
func NewReviewLogRepository(db *sql.DB) repository.ReviewLogRepository {
	return &reviewLogRepository{db: db}
}

func (r *reviewLogRepository) Append(ctx context.Context, e models.ReviewLogEntry) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")
	log.Debug("appending review: card_id=%s, response=%s", e.CardID, e.Response)

	query, args, err := sqlBuilder.Insert("review_log").
		Columns("card_id", "audio_path", "response", "interval_days", "ease", "reviewed_at").
		Values(e.CardID, e.AudioPath, e.Response, e.Interval, e.Ease, e.ReviewedAt.UTC()).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to append review: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get review id: %v", err)
		return 0, err
	}
	return id, nil
}

// where applies the filter's optional conditions.
func where(q squirrel.SelectBuilder, f models.ReviewLogFilter) squirrel.SelectBuilder {
	if f.CardID != "" {
		q = q.Where(squirrel.Eq{"card_id": f.CardID})
	}
	if f.AudioPath != "" {
		q = q.Where(squirrel.Eq{"audio_path": f.AudioPath})
	}
	if f.Since != nil {
		q = q.Where(squirrel.GtOrEq{"reviewed_at": f.Since.UTC()})
	}
	if f.Until != nil {
		q = q.Where(squirrel.Lt{"reviewed_at": f.Until.UTC()})
	}
	return q
}

func (r *reviewLogRepository) List(ctx context.Context, filter models.ReviewLogFilter) ([]models.ReviewLogEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")
	log.Debug("listing reviews: card_id=%s, audio_path=%s", filter.CardID, filter.AudioPath)

	q := where(sqlBuilder.Select(
		"id", "card_id", "audio_path", "response", "interval_days", "ease", "reviewed_at",
	).From("review_log"), filter).OrderBy("reviewed_at DESC", "id DESC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	q = q.Limit(uint64(limit))

	query, args, err := q.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list reviews: %v", err)
		return nil, err
	}
	defer rows.Close()

	var entries []models.ReviewLogEntry
	for rows.Next() {
		var e models.ReviewLogEntry
		if err := rows.Scan(&e.ID, &e.CardID, &e.AudioPath, &e.Response, &e.Interval, &e.Ease, &e.ReviewedAt); err != nil {
			log.Error("failed to scan review row: %v", err)
			return nil, err
		}
		entries = append(entries, e)
	}
	log.Debug("found %d reviews", len(entries))
	return entries, rows.Err()
}

func (r *reviewLogRepository) Count(ctx context.Context, filter models.ReviewLogFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")

	query, args, err := where(sqlBuilder.Select("COUNT(*)").From("review_log"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count reviews: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *reviewLogRepository) CountByResponse(ctx context.Context, filter models.ReviewLogFilter) ([]models.ResponseCount, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")

	query, args, err := where(sqlBuilder.Select("response", "COUNT(*)").From("review_log"), filter).
		GroupBy("response").
		OrderBy("response").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to count reviews by response: %v", err)
		return nil, err
	}
	defer rows.Close()

	var counts []models.ResponseCount
	for rows.Next() {
		var c models.ResponseCount
		if err := rows.Scan(&c.Response, &c.Count); err != nil {
			log.Error("failed to scan response count: %v", err)
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *reviewLogRepository) DeleteBySource(ctx context.Context, audioPath string) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")
	log.Debug("deleting reviews for source: %s", audioPath)

	query, args, err := sqlBuilder.Delete("review_log").Where(squirrel.Eq{"audio_path": audioPath}).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to delete reviews: %v", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *reviewLogRepository) DeleteAll(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")
	log.Info("clearing review log")

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM review_log`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'review_log'`)
		return err
	})
}
