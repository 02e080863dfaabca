package model

import "time"

// ReminderMode selects the notification schedule strategy.
type ReminderMode string

const (
	ReminderOff      ReminderMode = "off"
	ReminderPeriodic ReminderMode = "periodic"
	ReminderSmart    ReminderMode = "smart"
)

// Settings holds per-user goal and reminder configuration.
type Settings struct {
	UserID                int          `json:"user_id"`
	DailyGoalML           int          `json:"daily_goal_ml"`
	TrainingGoalML        int          `json:"training_goal_ml"`
	IsTrainingDay         bool         `json:"is_training_day"`
	ReminderMode          ReminderMode `json:"reminder_mode"`
	PeriodicStartHour     int          `json:"periodic_start_hour"`
	PeriodicEndHour       int          `json:"periodic_end_hour"`
	PeriodicIntervalHours int          `json:"periodic_interval_hours"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

// DefaultSettings are applied to users that never saved settings.
func DefaultSettings(userID int) *Settings {
	return &Settings{
		UserID:                userID,
		DailyGoalML:           2000,
		TrainingGoalML:        3000,
		ReminderMode:          ReminderOff,
		PeriodicStartHour:     9,
		PeriodicEndHour:       21,
		PeriodicIntervalHours: 2,
	}
}
