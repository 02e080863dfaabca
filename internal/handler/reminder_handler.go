package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mqcontracts "hydrotrack/contracts/mq"
)

type eventPublisher interface {
	Publish(routingKey string, payload any) error
}

type ReminderHandler struct {
	publisher eventPublisher
	logger    *zap.Logger
}

func NewReminderHandler(publisher eventPublisher, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{
		publisher: publisher,
		logger:    logger,
	}
}

type reminderResponseRequest struct {
	OnPace *bool `json:"on_pace" binding:"required"`
}

// PostResponse accepts the user's answer to a smart check-in and hands
// it to the scheduler via the event bus.
func (h *ReminderHandler) PostResponse(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req reminderResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "on_pace required"})
		return
	}

	payload := mqcontracts.ReminderResponsePayload{
		UserID:     userID,
		OnPace:     *req.OnPace,
		AnsweredAt: time.Now(),
	}
	if err := h.publisher.Publish("reminder.response", payload); err != nil {
		h.logger.Error("PostResponse: failed to publish reminder.response",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record response"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "ok"})
}
