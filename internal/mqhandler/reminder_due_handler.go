package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "hydrotrack/contracts/mq"
	"hydrotrack/internal/service/notifier"
)

type ReminderDueHandler struct {
	notifier *notifier.Notifier
	logger   *zap.Logger
}

func NewReminderDueHandler(n *notifier.Notifier, logger *zap.Logger) *ReminderDueHandler {
	return &ReminderDueHandler{
		notifier: n,
		logger:   logger,
	}
}

func (h *ReminderDueHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.ReminderDuePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal ReminderDuePayload", zap.Error(err))
		return err
	}

	h.logger.Info("Handling reminder.due event",
		zap.Int("user_id", p.UserID),
		zap.String("trigger_id", p.TriggerID),
	)

	if p.UserID <= 0 {
		h.logger.Error("Invalid user_id in reminder.due event",
			zap.Int("user_id", p.UserID),
		)
		return fmt.Errorf("invalid user_id: %d", p.UserID)
	}

	if err := h.notifier.Deliver(ctx, p.UserID, p.TriggerID, p.Title, p.Body); err != nil {
		return err
	}

	return nil
}
