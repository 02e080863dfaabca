package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"hydrotrack/internal/model"
	"hydrotrack/pkg/metrics"
)

type SettingsRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSettingsRepository(db *pgxpool.Pool, logger *zap.Logger) *SettingsRepository {
	return &SettingsRepository{
		db:     db,
		logger: logger,
	}
}

// Get returns the user's settings, falling back to defaults for users
// that never saved any.
func (r *SettingsRepository) Get(ctx context.Context, userID int) (*model.Settings, error) {
	start := time.Now()
	defer metrics.ObserveDBQuery("select", "settings", start)

	query := `
        SELECT user_id, daily_goal_ml, training_goal_ml, is_training_day,
               reminder_mode, periodic_start_hour, periodic_end_hour, periodic_interval_hours,
               updated_at
        FROM settings
        WHERE user_id = $1
    `
	var s model.Settings
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.UserID,
		&s.DailyGoalML,
		&s.TrainingGoalML,
		&s.IsTrainingDay,
		&s.ReminderMode,
		&s.PeriodicStartHour,
		&s.PeriodicEndHour,
		&s.PeriodicIntervalHours,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DefaultSettings(userID), nil
		}
		r.logger.Error("Failed to get settings", zap.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, s *model.Settings) error {
	r.logger.Debug("Upserting settings",
		zap.Int("user_id", s.UserID),
		zap.String("reminder_mode", string(s.ReminderMode)),
		zap.Int("daily_goal_ml", s.DailyGoalML),
	)
	start := time.Now()
	defer metrics.ObserveDBQuery("upsert", "settings", start)

	query := `
        INSERT INTO settings (user_id, daily_goal_ml, training_goal_ml, is_training_day,
                              reminder_mode, periodic_start_hour, periodic_end_hour, periodic_interval_hours,
                              updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
        ON CONFLICT (user_id) DO UPDATE SET
            daily_goal_ml = EXCLUDED.daily_goal_ml,
            training_goal_ml = EXCLUDED.training_goal_ml,
            is_training_day = EXCLUDED.is_training_day,
            reminder_mode = EXCLUDED.reminder_mode,
            periodic_start_hour = EXCLUDED.periodic_start_hour,
            periodic_end_hour = EXCLUDED.periodic_end_hour,
            periodic_interval_hours = EXCLUDED.periodic_interval_hours,
            updated_at = NOW()
        RETURNING updated_at
    `
	err := r.db.QueryRow(ctx, query,
		s.UserID,
		s.DailyGoalML,
		s.TrainingGoalML,
		s.IsTrainingDay,
		s.ReminderMode,
		s.PeriodicStartHour,
		s.PeriodicEndHour,
		s.PeriodicIntervalHours,
	).Scan(&s.UpdatedAt)

	if err != nil {
		r.logger.Error("Failed to upsert settings", zap.Error(err))
		return err
	}

	r.logger.Info("Settings saved",
		zap.Int("user_id", s.UserID),
		zap.String("reminder_mode", string(s.ReminderMode)),
	)
	return nil
}
