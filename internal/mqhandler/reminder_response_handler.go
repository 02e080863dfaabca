package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	mqcontracts "hydrotrack/contracts/mq"
	"hydrotrack/internal/reminder"
)

type ReminderResponseHandler struct {
	scheduler *reminder.Scheduler
	logger    *zap.Logger
}

func NewReminderResponseHandler(scheduler *reminder.Scheduler, logger *zap.Logger) *ReminderResponseHandler {
	return &ReminderResponseHandler{
		scheduler: scheduler,
		logger:    logger,
	}
}

func (h *ReminderResponseHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.ReminderResponsePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal ReminderResponsePayload", zap.Error(err))
		return err
	}

	h.logger.Info("Handling reminder.response event",
		zap.Int("user_id", p.UserID),
		zap.Bool("on_pace", p.OnPace),
	)

	if p.UserID <= 0 {
		h.logger.Error("Invalid user_id in reminder.response event",
			zap.Int("user_id", p.UserID),
		)
		return fmt.Errorf("invalid user_id: %d", p.UserID)
	}

	answeredAt := p.AnsweredAt
	if answeredAt.IsZero() {
		answeredAt = time.Now()
	}

	if err := h.scheduler.HandleResponse(ctx, p.UserID, p.OnPace, answeredAt); err != nil {
		h.logger.Error("Failed to handle reminder response",
			zap.Int("user_id", p.UserID),
			zap.Error(err),
		)
		return err
	}

	return nil
}
