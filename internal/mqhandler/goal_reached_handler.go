package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "hydrotrack/contracts/mq"
	"hydrotrack/internal/reminder"
)

type GoalReachedHandler struct {
	scheduler *reminder.Scheduler
	logger    *zap.Logger
}

func NewGoalReachedHandler(scheduler *reminder.Scheduler, logger *zap.Logger) *GoalReachedHandler {
	return &GoalReachedHandler{
		scheduler: scheduler,
		logger:    logger,
	}
}

func (h *GoalReachedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.GoalReachedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal GoalReachedPayload", zap.Error(err))
		return err
	}

	h.logger.Info("Handling goal.reached event",
		zap.Int("user_id", p.UserID),
		zap.Int("total_ml", p.TotalML),
		zap.Int("goal_ml", p.GoalML),
	)

	if p.UserID <= 0 {
		h.logger.Error("Invalid user_id in goal.reached event",
			zap.Int("user_id", p.UserID),
		)
		return fmt.Errorf("invalid user_id: %d", p.UserID)
	}

	if err := h.scheduler.GoalReached(ctx, p.UserID); err != nil {
		h.logger.Error("Failed to cancel reminders after goal reached",
			zap.Int("user_id", p.UserID),
			zap.Error(err),
		)
		return err
	}

	return nil
}
