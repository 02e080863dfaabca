package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"hydrotrack/internal/model"
	"hydrotrack/pkg/metrics"
)

type EntryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewEntryRepository(db *pgxpool.Pool, logger *zap.Logger) *EntryRepository {
	return &EntryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *EntryRepository) Insert(ctx context.Context, e *model.Entry) (int, error) {
	r.logger.Debug("Inserting entry",
		zap.Int("user_id", e.UserID),
		zap.Int("amount_ml", e.AmountML),
		zap.Time("logged_at", e.LoggedAt),
	)
	start := time.Now()
	defer metrics.ObserveDBQuery("insert", "entries", start)

	query := `
        INSERT INTO entries (user_id, logged_at, amount_ml, is_training_day, container_id, fraction_num, fraction_den)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		e.UserID,
		e.LoggedAt,
		e.AmountML,
		e.IsTrainingDay,
		e.ContainerID,
		e.FractionNum,
		e.FractionDen,
	).Scan(&e.ID, &e.CreatedAt)

	if err != nil {
		r.logger.Error("Failed to insert entry", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Entry inserted successfully",
		zap.Int("id", e.ID),
		zap.Int("user_id", e.UserID),
		zap.Int("amount_ml", e.AmountML),
	)
	return e.ID, nil
}

func (r *EntryRepository) Delete(ctx context.Context, userID, entryID int) (bool, error) {
	r.logger.Debug("Deleting entry",
		zap.Int("user_id", userID),
		zap.Int("entry_id", entryID),
	)
	start := time.Now()
	defer metrics.ObserveDBQuery("delete", "entries", start)

	tag, err := r.db.Exec(ctx,
		`DELETE FROM entries WHERE id = $1 AND user_id = $2`,
		entryID, userID,
	)
	if err != nil {
		r.logger.Error("Failed to delete entry", zap.Error(err))
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// ListByRange returns the user's entries with logged_at in [from, to),
// most recent first.
func (r *EntryRepository) ListByRange(ctx context.Context, userID int, from, to time.Time) ([]model.Entry, error) {
	r.logger.Debug("Listing entries by range",
		zap.Int("user_id", userID),
		zap.Time("from", from),
		zap.Time("to", to),
	)
	start := time.Now()
	defer metrics.ObserveDBQuery("select", "entries", start)

	query := `
        SELECT id, user_id, logged_at, amount_ml, is_training_day, container_id, fraction_num, fraction_den, created_at
        FROM entries
        WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3
        ORDER BY logged_at DESC
    `

	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		r.logger.Error("Failed to list entries", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		var e model.Entry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.LoggedAt,
			&e.AmountML,
			&e.IsTrainingDay,
			&e.ContainerID,
			&e.FractionNum,
			&e.FractionDen,
			&e.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan entry", zap.Error(err))
			return nil, err
		}
		entries = append(entries, e)
	}

	r.logger.Debug("Listed entries",
		zap.Int("user_id", userID),
		zap.Int("count", len(entries)),
	)
	return entries, nil
}
