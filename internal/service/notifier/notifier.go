package notifier

import (
	"context"
	"time"

	"go.uber.org/zap"

	"hydrotrack/pkg/metrics"
)

// Notifier delivers reminder notifications to the user's devices.
type Notifier struct {
	logger *zap.Logger
}

func NewNotifier(logger *zap.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Deliver pushes one reminder to the user.
func (n *Notifier) Deliver(ctx context.Context, userID int, triggerID, title, body string) error {
	n.logger.Info("Delivering reminder notification",
		zap.Int("user_id", userID),
		zap.String("trigger_id", triggerID),
		zap.String("title", title),
	)

	if err := n.sendPush(ctx, userID, title, body); err != nil {
		metrics.IncrementReminderDelivered("failed")
		n.logger.Error("Failed to deliver reminder",
			zap.Int("user_id", userID),
			zap.String("trigger_id", triggerID),
			zap.Error(err),
		)
		return err
	}

	metrics.IncrementReminderDelivered("success")
	return nil
}

func (n *Notifier) sendPush(ctx context.Context, userID int, title, body string) error {
	// TODO: wire APNs/FCM device tokens once the mobile client ships
	// registration.
	n.logger.Info("Sending push notification",
		zap.Int("user_id", userID),
		zap.String("title", title),
	)
	time.Sleep(100 * time.Millisecond)
	return nil
}
