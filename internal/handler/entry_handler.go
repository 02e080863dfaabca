package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hydrotrack/internal/service/intake"
)

type EntryHandler struct {
	svc    *intake.Service
	logger *zap.Logger
}

func NewEntryHandler(svc *intake.Service, logger *zap.Logger) *EntryHandler {
	return &EntryHandler{svc: svc, logger: logger}
}

type logEntryRequest struct {
	AmountML    int    `json:"amount_ml"`
	ContainerID *int   `json:"container_id"`
	FractionNum *int   `json:"fraction_num"`
	FractionDen *int   `json:"fraction_den"`
	Date        string `json:"date"` // 2006-01-02, omit for today
}

func (h *EntryHandler) LogEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req logEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	svcReq := intake.LogIntakeRequest{
		AmountML:    req.AmountML,
		ContainerID: req.ContainerID,
		FractionNum: req.FractionNum,
		FractionDen: req.FractionDen,
	}
	if req.Date != "" {
		d, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
			return
		}
		svcReq.Date = &d
	}

	entry, err := h.svc.LogIntake(c.Request.Context(), userID, svcReq)
	if err != nil {
		switch {
		case errors.Is(err, intake.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		case errors.Is(err, intake.ErrContainerNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "container not found"})
		default:
			h.logger.Error("LogEntry: failed to log intake",
				zap.Int("user_id", userID),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log intake"})
		}
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	entryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	if err := h.svc.DeleteEntry(c.Request.Context(), userID, entryID); err != nil {
		if errors.Is(err, intake.ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		h.logger.Error("DeleteEntry: failed to delete entry",
			zap.Int("user_id", userID),
			zap.Int("entry_id", entryID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete entry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
