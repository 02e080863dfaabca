package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	mqcontracts "hydrotrack/contracts/mq"
	"hydrotrack/internal/aggregate"
	"hydrotrack/internal/model"
	"hydrotrack/pkg/metrics"
)

var (
	ErrInvalidAmount     = errors.New("intake: amount must be positive")
	ErrContainerNotFound = errors.New("intake: container not found")
	ErrEntryNotFound     = errors.New("intake: entry not found")
)

type entryStore interface {
	Insert(ctx context.Context, e *model.Entry) (int, error)
	Delete(ctx context.Context, userID, entryID int) (bool, error)
	ListByRange(ctx context.Context, userID int, from, to time.Time) ([]model.Entry, error)
}

type containerStore interface {
	GetByID(ctx context.Context, userID, containerID int) (*model.Container, error)
	ListByUser(ctx context.Context, userID int) ([]model.Container, error)
}

type settingsStore interface {
	Get(ctx context.Context, userID int) (*model.Settings, error)
}

type eventPublisher interface {
	Publish(routingKey string, payload any) error
}

type Service struct {
	entries    entryStore
	containers containerStore
	settings   settingsStore
	publisher  eventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(
	entries entryStore,
	containers containerStore,
	settings settingsStore,
	publisher eventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		entries:    entries,
		containers: containers,
		settings:   settings,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the wall clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// LogIntakeRequest describes one intake to record. Either AmountML is
// set directly, or ContainerID (with an optional fraction) resolves the
// amount from the container volume. Date backdates the entry to an
// earlier calendar day.
type LogIntakeRequest struct {
	AmountML    int
	ContainerID *int
	FractionNum *int
	FractionDen *int
	Date        *time.Time
}

// LogIntake validates and records one intake event. Backdated entries
// are stamped 23:59:59 local of the target day so they sort after
// anything logged live on that day. When the entry pushes today's total
// across the goal, a goal.reached event is published so pending
// reminders get cancelled.
func (s *Service) LogIntake(ctx context.Context, userID int, req LogIntakeRequest) (*model.Entry, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	amount := req.AmountML
	source := "custom"
	if req.ContainerID != nil {
		c, err := s.containers.GetByID(ctx, userID, *req.ContainerID)
		if err != nil {
			s.logger.Warn("Intake references unknown container",
				zap.Int("user_id", userID),
				zap.Int("container_id", *req.ContainerID),
			)
			return nil, ErrContainerNotFound
		}
		num, den := 1, 1
		if req.FractionNum != nil && req.FractionDen != nil {
			num, den = *req.FractionNum, *req.FractionDen
		}
		if num <= 0 || den <= 0 {
			return nil, ErrInvalidAmount
		}
		amount = c.VolumeML * num / den
		source = "container"
	}

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	now := s.now()
	loggedAt := now
	backdated := false
	if req.Date != nil && !sameDay(*req.Date, now) {
		// End of the target day, so the backdated entry wins
		// most-recent-first ordering ties within that day.
		d := *req.Date
		loggedAt = time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, now.Location())
		backdated = true
	}

	entry := &model.Entry{
		UserID:        userID,
		LoggedAt:      loggedAt,
		AmountML:      amount,
		IsTrainingDay: settings.IsTrainingDay,
		ContainerID:   req.ContainerID,
		FractionNum:   req.FractionNum,
		FractionDen:   req.FractionDen,
	}

	if _, err := s.entries.Insert(ctx, entry); err != nil {
		return nil, err
	}
	metrics.IncrementIntakeLogged(source)

	s.logger.Info("Intake logged",
		zap.Int("user_id", userID),
		zap.Int("entry_id", entry.ID),
		zap.Int("amount_ml", amount),
		zap.Bool("backdated", backdated),
	)

	if !backdated {
		s.checkGoalReached(ctx, userID, settings, entry, now)
	}

	return entry, nil
}

// checkGoalReached publishes goal.reached when this entry crossed the
// day's goal. A failed publish is logged, not surfaced: the entry is
// already recorded and reminders fail open.
func (s *Service) checkGoalReached(ctx context.Context, userID int, settings *model.Settings, entry *model.Entry, now time.Time) {
	dayEntries, err := s.entries.ListByRange(ctx, userID, startOfDay(now), startOfDay(now).AddDate(0, 0, 1))
	if err != nil {
		s.logger.Error("Failed to load today's entries for goal check", zap.Error(err))
		return
	}

	cfg := goalConfig(settings)
	goal := aggregate.GoalForDay(now, now, dayEntries, cfg)
	if goal <= 0 {
		return
	}

	total := aggregate.TotalForDay(dayEntries, now)
	if total < goal || total-entry.AmountML >= goal {
		return
	}

	payload := mqcontracts.GoalReachedPayload{
		UserID:    userID,
		Day:       now.Format("2006-01-02"),
		TotalML:   total,
		GoalML:    goal,
		ReachedAt: now,
	}
	if err := s.publisher.Publish("goal.reached", payload); err != nil {
		s.logger.Error("Failed to publish goal.reached event",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Published goal.reached event",
		zap.Int("user_id", userID),
		zap.Int("total_ml", total),
		zap.Int("goal_ml", goal),
	)
}

// DeleteEntry removes one entry. Entries are immutable; delete-and-relog
// is the only correction path.
func (s *Service) DeleteEntry(ctx context.Context, userID, entryID int) error {
	deleted, err := s.entries.Delete(ctx, userID, entryID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrEntryNotFound
	}
	s.logger.Info("Entry deleted",
		zap.Int("user_id", userID),
		zap.Int("entry_id", entryID),
	)
	return nil
}

// Progress is the day view the client renders.
type Progress struct {
	Day     string      `json:"day"`
	TotalML int         `json:"total_ml"`
	GoalML  int         `json:"goal_ml"`
	Ratio   float64     `json:"ratio"`
	Percent int         `json:"percent"`
	Entries []EntryView `json:"entries"`
}

// EntryView is an entry plus its display name. Deleted containers fall
// back to "Custom"; a 1/1 fraction displays the same as no fraction.
type EntryView struct {
	model.Entry
	DisplayName string `json:"display_name"`
	Fraction    string `json:"fraction,omitempty"`
}

// ProgressForDay assembles total, goal, ratio and percentage for one
// local calendar day.
func (s *Service) ProgressForDay(ctx context.Context, userID int, day time.Time) (*Progress, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	dayEntries, err := s.entries.ListByRange(ctx, userID, startOfDay(day), startOfDay(day).AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	cfg := goalConfig(settings)
	now := s.now()
	total := aggregate.TotalForDay(dayEntries, day)
	goal := aggregate.GoalForDay(day, now, dayEntries, cfg)

	ratio, err := aggregate.ProgressRatio(total, goal)
	if err != nil {
		return nil, err
	}
	percent, err := aggregate.Percentage(total, goal)
	if err != nil {
		return nil, err
	}

	views, err := s.entryViews(ctx, userID, dayEntries)
	if err != nil {
		return nil, err
	}

	return &Progress{
		Day:     day.Format("2006-01-02"),
		TotalML: total,
		GoalML:  goal,
		Ratio:   ratio,
		Percent: percent,
		Entries: views,
	}, nil
}

// streakWindowDays bounds how far back the streak walk can load.
const streakWindowDays = 366

// CurrentStreak returns the user's streak of consecutive qualifying
// days ending today.
func (s *Service) CurrentStreak(ctx context.Context, userID int) (int, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return 0, err
	}

	now := s.now()
	from := startOfDay(now).AddDate(0, 0, -streakWindowDays)
	entries, err := s.entries.ListByRange(ctx, userID, from, startOfDay(now).AddDate(0, 0, 1))
	if err != nil {
		return 0, err
	}

	return aggregate.CurrentStreak(entries, goalConfig(settings), now), nil
}

// MonthStats is the calendar-history view for one month.
type MonthStats struct {
	Month          string     `json:"month"`
	AveragePercent int        `json:"average_percent"`
	Days           []DayStats `json:"days"`
}

type DayStats struct {
	Day     string `json:"day"`
	TotalML int    `json:"total_ml"`
	GoalML  int    `json:"goal_ml"`
	Percent int    `json:"percent"`
}

// StatsForMonth aggregates per-day totals and the monthly average
// percentage. Days without entries are omitted, matching the average's
// grouping.
func (s *Service) StatsForMonth(ctx context.Context, userID int, month time.Time) (*MonthStats, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	to := from.AddDate(0, 1, 0)
	entries, err := s.entries.ListByRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	cfg := goalConfig(settings)
	now := s.now()

	avg, err := aggregate.MonthlyAveragePercent(entries, cfg, month, now)
	if err != nil {
		return nil, err
	}

	stats := &MonthStats{
		Month:          from.Format("2006-01"),
		AveragePercent: avg,
	}

	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		total := aggregate.TotalForDay(entries, day)
		if total == 0 {
			continue
		}
		goal := aggregate.GoalForDay(day, now, entries, cfg)
		percent, err := aggregate.Percentage(total, goal)
		if err != nil {
			return nil, err
		}
		stats.Days = append(stats.Days, DayStats{
			Day:     day.Format("2006-01-02"),
			TotalML: total,
			GoalML:  goal,
			Percent: percent,
		})
	}

	return stats, nil
}

// entryViews resolves container display names for a batch of entries.
func (s *Service) entryViews(ctx context.Context, userID int, entries []model.Entry) ([]EntryView, error) {
	containers, err := s.containers.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]model.Container, len(containers))
	for _, c := range containers {
		byID[c.ID] = c
	}

	views := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		v := EntryView{Entry: e, DisplayName: "Custom"}
		if e.ContainerID != nil {
			if c, ok := byID[*e.ContainerID]; ok {
				v.DisplayName = c.Name
			}
			if !e.IsFullContainer() {
				v.Fraction = fmt.Sprintf("%d/%d", *e.FractionNum, *e.FractionDen)
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func goalConfig(s *model.Settings) aggregate.GoalConfig {
	return aggregate.GoalConfig{
		DailyGoalML:     s.DailyGoalML,
		TrainingGoalML:  s.TrainingGoalML,
		IsTrainingToday: s.IsTrainingDay,
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
