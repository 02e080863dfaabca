package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hydrotrack/internal/aggregate"
	"hydrotrack/internal/service/intake"
)

type StatsHandler struct {
	svc    *intake.Service
	logger *zap.Logger
}

func NewStatsHandler(svc *intake.Service, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, logger: logger}
}

// GetProgress returns the day view; ?date=YYYY-MM-DD defaults to today.
func (h *StatsHandler) GetProgress(c *gin.Context) {
	userID := c.GetInt("user_id")

	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	progress, err := h.svc.ProgressForDay(c.Request.Context(), userID, day)
	if err != nil {
		if errors.Is(err, aggregate.ErrZeroGoal) {
			c.JSON(http.StatusConflict, gin.H{"error": "daily goal is not configured"})
			return
		}
		h.logger.Error("GetProgress: failed to compute progress",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute progress"})
		return
	}

	c.JSON(http.StatusOK, progress)
}

func (h *StatsHandler) GetStreak(c *gin.Context) {
	userID := c.GetInt("user_id")

	streak, err := h.svc.CurrentStreak(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("GetStreak: failed to compute streak",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute streak"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"streak": streak})
}

// GetMonthStats returns per-day stats and the monthly average;
// ?month=YYYY-MM defaults to the current month.
func (h *StatsHandler) GetMonthStats(c *gin.Context) {
	userID := c.GetInt("user_id")

	month := time.Now()
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01", raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month, want YYYY-MM"})
			return
		}
		month = parsed
	}

	stats, err := h.svc.StatsForMonth(c.Request.Context(), userID, month)
	if err != nil {
		if errors.Is(err, aggregate.ErrZeroGoal) {
			c.JSON(http.StatusConflict, gin.H{"error": "daily goal is not configured"})
			return
		}
		h.logger.Error("GetMonthStats: failed to compute stats",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
