package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hydrotrack/internal/model"
	"hydrotrack/internal/reminder"
)

type settingsStore interface {
	Get(ctx context.Context, userID int) (*model.Settings, error)
	Upsert(ctx context.Context, s *model.Settings) error
}

type reminderScheduler interface {
	Apply(ctx context.Context, settings *model.Settings, granted bool, now time.Time) (int, error)
	EnterOff(ctx context.Context, userID int) error
}

type SettingsHandler struct {
	repo      settingsStore
	scheduler reminderScheduler
	logger    *zap.Logger
}

func NewSettingsHandler(repo settingsStore, scheduler reminderScheduler, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		repo:      repo,
		scheduler: scheduler,
		logger:    logger,
	}
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID := c.GetInt("user_id")

	settings, err := h.repo.Get(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("GetSettings: failed to fetch settings",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

type updateSettingsRequest struct {
	DailyGoalML           int                `json:"daily_goal_ml" binding:"required"`
	TrainingGoalML        int                `json:"training_goal_ml" binding:"required"`
	IsTrainingDay         bool               `json:"is_training_day"`
	ReminderMode          model.ReminderMode `json:"reminder_mode"`
	PeriodicStartHour     int                `json:"periodic_start_hour"`
	PeriodicEndHour       int                `json:"periodic_end_hour"`
	PeriodicIntervalHours int                `json:"periodic_interval_hours"`

	// NotificationsGranted mirrors the client's notification
	// authorization state; a reminder mode cannot be entered without it.
	NotificationsGranted bool `json:"notifications_granted"`
}

// UpdateSettings saves the user's settings and reapplies the reminder
// schedule. A denied notification permission reverts the mode to off
// and is reported as a warning, not a failure.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.DailyGoalML <= 0 || req.TrainingGoalML <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "goals must be positive"})
		return
	}
	if req.ReminderMode == model.ReminderPeriodic && !validHours(req.PeriodicStartHour, req.PeriodicEndHour) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "periodic hours must be between 0 and 23"})
		return
	}

	settings := &model.Settings{
		UserID:                userID,
		DailyGoalML:           req.DailyGoalML,
		TrainingGoalML:        req.TrainingGoalML,
		IsTrainingDay:         req.IsTrainingDay,
		ReminderMode:          req.ReminderMode,
		PeriodicStartHour:     req.PeriodicStartHour,
		PeriodicEndHour:       req.PeriodicEndHour,
		PeriodicIntervalHours: req.PeriodicIntervalHours,
	}
	if settings.ReminderMode == "" {
		settings.ReminderMode = model.ReminderOff
	}

	warning := ""
	truncated, err := h.scheduler.Apply(c.Request.Context(), settings, req.NotificationsGranted, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, reminder.ErrPermissionDenied):
			// Recoverable: store the settings with reminders off so the
			// client selector reflects reality, and cancel whatever the
			// previous mode left armed in the sink.
			settings.ReminderMode = model.ReminderOff
			if err := h.scheduler.EnterOff(c.Request.Context(), userID); err != nil {
				h.logger.Error("UpdateSettings: failed to cancel triggers after permission denial",
					zap.Int("user_id", userID),
					zap.Error(err),
				)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply reminder schedule"})
				return
			}
			warning = "notification permission denied, reminders disabled"
			h.logger.Warn("UpdateSettings: permission denied, reverting mode to off",
				zap.Int("user_id", userID),
			)
		case errors.Is(err, reminder.ErrInvalidInterval):
			c.JSON(http.StatusBadRequest, gin.H{"error": "periodic interval must be positive"})
			return
		default:
			h.logger.Error("UpdateSettings: failed to apply reminder schedule",
				zap.Int("user_id", userID),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply reminder schedule"})
			return
		}
	}

	if err := h.repo.Upsert(c.Request.Context(), settings); err != nil {
		h.logger.Error("UpdateSettings: failed to save settings",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}

	resp := gin.H{"settings": settings}
	if truncated > 0 {
		resp["truncated_triggers"] = truncated
	}
	if warning != "" {
		resp["warning"] = warning
	}
	c.JSON(http.StatusOK, resp)
}

func validHours(start, end int) bool {
	return start >= 0 && start <= 23 && end >= 0 && end <= 23
}
