// Package dispatch drains due reminder triggers from the sink and
// publishes them as reminder.due events for the delivery consumer.
package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	mqcontracts "hydrotrack/contracts/mq"
	"hydrotrack/internal/sink"
	"hydrotrack/pkg/mq"
)

type Dispatcher struct {
	sink      *sink.RedisSink
	publisher *mq.Publisher
	logger    *zap.Logger
	interval  time.Duration
	batchSize int
}

func NewDispatcher(
	s *sink.RedisSink,
	publisher *mq.Publisher,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		sink:      s,
		publisher: publisher,
		logger:    logger,
		interval:  30 * time.Second,
		batchSize: 100,
	}
}

func (d *Dispatcher) WithInterval(interval time.Duration) *Dispatcher {
	d.interval = interval
	return d
}

func (d *Dispatcher) WithBatchSize(batchSize int) *Dispatcher {
	d.batchSize = batchSize
	return d
}

// Start runs the dispatch loop until ctx is cancelled. Run it in a
// goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("Starting reminder dispatcher",
		zap.Duration("interval", d.interval),
		zap.Int("batch_size", d.batchSize),
	)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Reminder dispatcher stopped")
			return
		case <-ticker.C:
			d.processDueTriggers(ctx)
		}
	}
}

func (d *Dispatcher) processDueTriggers(ctx context.Context) {
	due, err := d.sink.Due(ctx, time.Now(), d.batchSize)
	if err != nil {
		d.logger.Error("Failed to query due triggers", zap.Error(err))
		return
	}

	if len(due) == 0 {
		return
	}

	d.logger.Debug("Dispatching due triggers", zap.Int("count", len(due)))

	for _, t := range due {
		payload := mqcontracts.ReminderDuePayload{
			UserID:    t.UserID,
			TriggerID: t.TriggerID,
			Title:     t.Title,
			Body:      t.Body,
			FiredAt:   time.Now(),
		}
		if err := d.publisher.Publish("reminder.due", payload); err != nil {
			// Leave the trigger armed; it is retried next tick.
			d.logger.Error("Failed to publish reminder.due event",
				zap.Int("user_id", t.UserID),
				zap.String("trigger_id", t.TriggerID),
				zap.Error(err),
			)
			continue
		}

		if err := d.sink.Complete(ctx, t); err != nil {
			d.logger.Error("Failed to complete fired trigger",
				zap.Int("user_id", t.UserID),
				zap.String("trigger_id", t.TriggerID),
				zap.Error(err),
			)
			continue
		}

		d.logger.Info("Published reminder.due event",
			zap.Int("user_id", t.UserID),
			zap.String("trigger_id", t.TriggerID),
		)
	}
}
