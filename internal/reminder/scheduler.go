// Package reminder plans and applies notification schedules. The
// scheduler is a small state machine over three modes: off, periodic
// (fixed-interval triggers inside an active-hours window), and smart
// (an adaptive check-in driven by the user's self-reported pace).
//
// Every transition is cancel-then-regenerate: the previous trigger set
// is fully cancelled before the new one is registered, so old and new
// triggers are never live at the same time. Trigger sets are tiny
// (MaxTriggers caps them at 20) and the sink is the source of truth,
// so incremental diffing would buy nothing.
package reminder

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"hydrotrack/internal/model"
	"hydrotrack/pkg/metrics"
)

// ErrPermissionDenied means notification scheduling is not authorized
// for the user. Recoverable: the caller reverts the visible mode to
// off; the scheduler itself touches nothing.
var ErrPermissionDenied = errors.New("reminder: notification permission denied")

// ErrInvalidInterval rejects periodic plans with a non-positive
// interval. Configuration error, not a runtime fault.
var ErrInvalidInterval = errors.New("reminder: periodic interval must be positive")

// Sink is the boundary to the notification delivery platform. The
// production implementation is Redis-backed (internal/sink); tests use
// an in-memory fake.
type Sink interface {
	CancelAll(ctx context.Context, userID int) error
	Cancel(ctx context.Context, userID int, ids []string) error
	Register(ctx context.Context, userID int, t Trigger) error
	PendingIDs(ctx context.Context, userID int) ([]string, error)
}

// SettingsSource reads the user's saved settings, so response events can
// be checked against the mode the user is actually in.
type SettingsSource interface {
	Get(ctx context.Context, userID int) (*model.Settings, error)
}

type Scheduler struct {
	sink     Sink
	settings SettingsSource
	logger   *zap.Logger
}

func NewScheduler(sink Sink, settings SettingsSource, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		sink:     sink,
		settings: settings,
		logger:   logger,
	}
}

// Apply transitions the user's schedule to match the given settings.
// It returns the number of triggers dropped by the schedule cap, which
// is only ever non-zero for periodic mode.
func (s *Scheduler) Apply(ctx context.Context, settings *model.Settings, granted bool, now time.Time) (int, error) {
	if settings.ReminderMode != model.ReminderOff && !granted {
		s.logger.Warn("Refusing reminder mode without notification permission",
			zap.Int("user_id", settings.UserID),
			zap.String("mode", string(settings.ReminderMode)),
		)
		return 0, ErrPermissionDenied
	}

	switch settings.ReminderMode {
	case model.ReminderPeriodic:
		return s.EnterPeriodic(ctx, settings.UserID,
			settings.PeriodicStartHour, settings.PeriodicEndHour, settings.PeriodicIntervalHours, now)
	case model.ReminderSmart:
		return 0, s.EnterSmart(ctx, settings.UserID, now)
	default:
		return 0, s.EnterOff(ctx, settings.UserID)
	}
}

// EnterOff cancels every pending trigger. Idempotent.
func (s *Scheduler) EnterOff(ctx context.Context, userID int) error {
	s.logger.Info("Entering reminder mode off", zap.Int("user_id", userID))
	return s.sink.CancelAll(ctx, userID)
}

// EnterPeriodic replaces the schedule with the periodic plan. Returns
// the truncation count when the computed plan exceeded the cap.
func (s *Scheduler) EnterPeriodic(ctx context.Context, userID, startHour, endHour, intervalHours int, now time.Time) (int, error) {
	if intervalHours <= 0 {
		return 0, ErrInvalidInterval
	}

	s.logger.Info("Entering periodic reminder mode",
		zap.Int("user_id", userID),
		zap.Int("start_hour", startHour),
		zap.Int("end_hour", endHour),
		zap.Int("interval_hours", intervalHours),
	)

	if err := s.sink.CancelAll(ctx, userID); err != nil {
		return 0, err
	}

	triggers, truncated := PeriodicTriggers(startHour, endHour, intervalHours, now)
	registered := s.registerAll(ctx, userID, triggers)
	metrics.IncrementReminderScheduled("periodic", registered)

	if truncated > 0 {
		metrics.ReminderTruncatedCount.Add(float64(truncated))
		s.logger.Warn("Periodic plan truncated to schedule cap",
			zap.Int("user_id", userID),
			zap.Int("truncated", truncated),
			zap.Int("cap", MaxTriggers),
		)
	}
	return truncated, nil
}

// EnterSmart replaces the schedule with the smart-mode initial plan.
func (s *Scheduler) EnterSmart(ctx context.Context, userID int, now time.Time) error {
	s.logger.Info("Entering smart reminder mode", zap.Int("user_id", userID))

	if err := s.sink.CancelAll(ctx, userID); err != nil {
		return err
	}

	triggers := SmartInitialTriggers(now)
	registered := s.registerAll(ctx, userID, triggers)
	metrics.IncrementReminderScheduled("smart", registered)
	return nil
}

// HandleResponse processes a smart check-in answer: all non-initial
// triggers are cancelled, then the adaptive follow-up pair for the
// response time is registered (possibly empty near the quiet hour).
// Responses for users not in smart mode are ignored; they would
// otherwise tear down a periodic plan.
func (s *Scheduler) HandleResponse(ctx context.Context, userID int, onPace bool, answeredAt time.Time) error {
	s.logger.Info("Handling smart reminder response",
		zap.Int("user_id", userID),
		zap.Bool("on_pace", onPace),
		zap.Time("answered_at", answeredAt),
	)

	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return err
	}
	if settings.ReminderMode != model.ReminderSmart {
		s.logger.Info("Ignoring reminder response outside smart mode",
			zap.Int("user_id", userID),
			zap.String("mode", string(settings.ReminderMode)),
		)
		return nil
	}

	pending, err := s.sink.PendingIDs(ctx, userID)
	if err != nil {
		return err
	}

	var stale []string
	for _, id := range pending {
		if id != "smart-initial" {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := s.sink.Cancel(ctx, userID, stale); err != nil {
			return err
		}
	}

	triggers := SmartFollowUps(onPace, answeredAt)
	if len(triggers) == 0 {
		s.logger.Info("No follow-up scheduled, past quiet hour",
			zap.Int("user_id", userID),
		)
		return nil
	}

	registered := s.registerAll(ctx, userID, triggers)
	metrics.IncrementReminderScheduled("smart", registered)
	return nil
}

// GoalReached cancels all pending triggers for the day, regardless of
// mode. Repeating triggers are re-registered on the next mode apply.
func (s *Scheduler) GoalReached(ctx context.Context, userID int) error {
	s.logger.Info("Goal reached, cancelling pending reminders",
		zap.Int("user_id", userID),
	)
	return s.sink.CancelAll(ctx, userID)
}

// registerAll registers triggers one by one. A failed register is
// logged and that trigger dropped; the rest of the plan proceeds.
func (s *Scheduler) registerAll(ctx context.Context, userID int, triggers []Trigger) int {
	registered := 0
	for _, t := range triggers {
		if err := s.sink.Register(ctx, userID, t); err != nil {
			s.logger.Error("Failed to register trigger, dropping it",
				zap.Int("user_id", userID),
				zap.String("trigger_id", t.ID),
				zap.Error(err),
			)
			continue
		}
		registered++
	}
	return registered
}
