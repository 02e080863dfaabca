// Package aggregate reduces an entry snapshot into the derived values the
// client renders: daily totals, goal progress, streaks, and monthly
// averages. Every function is pure; callers pass an immutable snapshot
// and the applicable goal configuration.
package aggregate

import (
	"errors"
	"math"
	"time"

	"hydrotrack/internal/model"
)

// ErrZeroGoal is returned when a goal of zero or less reaches a
// computation that divides by it. A zero goal is a configuration error
// surfaced to the user, never a crash.
var ErrZeroGoal = errors.New("aggregate: goal must be positive")

// GoalConfig is the snapshot of goal settings a computation runs against.
type GoalConfig struct {
	DailyGoalML     int
	TrainingGoalML  int
	IsTrainingToday bool
}

// TotalForDay sums amounts for entries logged on the given local
// calendar day. Order-invariant; 0 for an empty snapshot.
func TotalForDay(entries []model.Entry, day time.Time) int {
	total := 0
	for _, e := range entries {
		if sameDay(e.LoggedAt, day) {
			total += e.AmountML
		}
	}
	return total
}

// ProgressRatio returns min(total/goal, 1.0).
func ProgressRatio(totalML, goalML int) (float64, error) {
	if goalML <= 0 {
		return 0, ErrZeroGoal
	}
	ratio := float64(totalML) / float64(goalML)
	if ratio > 1 {
		ratio = 1
	}
	return ratio, nil
}

// Percentage returns round(total/goal*100). Unlike ProgressRatio it is
// not capped, so overshooting the goal reads as >100.
func Percentage(totalML, goalML int) (int, error) {
	if goalML <= 0 {
		return 0, ErrZeroGoal
	}
	return int(math.Round(float64(totalML) / float64(goalML) * 100)), nil
}

// GoalForDay returns the goal that applies on the given day. For today
// the live training flag decides; for past days the day is training if
// any entry logged on it carries the training snapshot.
func GoalForDay(day, today time.Time, entries []model.Entry, cfg GoalConfig) int {
	if sameDay(day, today) {
		if cfg.IsTrainingToday {
			return cfg.TrainingGoalML
		}
		return cfg.DailyGoalML
	}
	for _, e := range entries {
		if sameDay(e.LoggedAt, day) && e.IsTrainingDay {
			return cfg.TrainingGoalML
		}
	}
	return cfg.DailyGoalML
}

// CurrentStreak counts consecutive qualifying days ending today. A day
// qualifies only if it has at least one entry and its total meets or
// exceeds that day's goal; a day with no entries breaks the streak.
// Today failing means a streak of 0.
func CurrentStreak(entries []model.Entry, cfg GoalConfig, today time.Time) int {
	streak := 0
	day := startOfDay(today)
	for {
		total := 0
		hasEntry := false
		for _, e := range entries {
			if sameDay(e.LoggedAt, day) {
				hasEntry = true
				total += e.AmountML
			}
		}
		if !hasEntry {
			return streak
		}
		goal := GoalForDay(day, today, entries, cfg)
		if goal <= 0 || total < goal {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

// MonthlyAveragePercent returns round(mean(daily totals)/mean(daily
// goals)*100) over the days of the given month that have entries. Days
// without entries are excluded rather than counted as 0%, so the month
// a user starts tracking is not dragged down by the days before.
func MonthlyAveragePercent(entries []model.Entry, cfg GoalConfig, month, today time.Time) (int, error) {
	if cfg.DailyGoalML <= 0 || cfg.TrainingGoalML <= 0 {
		return 0, ErrZeroGoal
	}

	totals := make(map[time.Time]int)
	for _, e := range entries {
		if e.LoggedAt.Year() != month.Year() || e.LoggedAt.Month() != month.Month() {
			continue
		}
		totals[startOfDay(e.LoggedAt)] += e.AmountML
	}

	if len(totals) == 0 {
		return 0, nil
	}

	sumTotals := 0
	sumGoals := 0
	for day, total := range totals {
		sumTotals += total
		sumGoals += GoalForDay(day, today, entries, cfg)
	}

	n := float64(len(totals))
	meanTotal := float64(sumTotals) / n
	meanGoal := float64(sumGoals) / n
	return int(math.Round(meanTotal / meanGoal * 100)), nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
