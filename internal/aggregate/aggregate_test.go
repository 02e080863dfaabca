package aggregate_test

import (
	"errors"
	"testing"
	"time"

	"hydrotrack/internal/aggregate"
	"hydrotrack/internal/model"
)

var today = time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

func entry(day time.Time, amountML int, training bool) model.Entry {
	return model.Entry{
		LoggedAt:      day,
		AmountML:      amountML,
		IsTrainingDay: training,
	}
}

func daysAgo(n int) time.Time {
	return today.AddDate(0, 0, -n)
}

func TestTotalForDay(t *testing.T) {
	entries := []model.Entry{
		entry(today, 250, false),
		entry(today.Add(2*time.Hour), 500, false),
		entry(daysAgo(1), 750, false),
	}

	if got := aggregate.TotalForDay(entries, today); got != 750 {
		t.Errorf("TotalForDay(today) = %d, want 750", got)
	}
	if got := aggregate.TotalForDay(entries, daysAgo(1)); got != 750 {
		t.Errorf("TotalForDay(yesterday) = %d, want 750", got)
	}
	if got := aggregate.TotalForDay(entries, daysAgo(2)); got != 0 {
		t.Errorf("TotalForDay(empty day) = %d, want 0", got)
	}
	if got := aggregate.TotalForDay(nil, today); got != 0 {
		t.Errorf("TotalForDay(nil) = %d, want 0", got)
	}
}

func TestTotalForDayOrderInvariant(t *testing.T) {
	a := []model.Entry{
		entry(today, 100, false),
		entry(today, 200, false),
		entry(today, 300, false),
	}
	b := []model.Entry{a[2], a[0], a[1]}

	if aggregate.TotalForDay(a, today) != aggregate.TotalForDay(b, today) {
		t.Error("TotalForDay depends on entry order")
	}
}

func TestProgressRatio(t *testing.T) {
	tests := []struct {
		total, goal int
		want        float64
	}{
		{0, 2000, 0},
		{1000, 2000, 0.5},
		{2000, 2000, 1},
		{3000, 2000, 1}, // capped
	}
	for _, tt := range tests {
		got, err := aggregate.ProgressRatio(tt.total, tt.goal)
		if err != nil {
			t.Fatalf("ProgressRatio(%d, %d) error: %v", tt.total, tt.goal, err)
		}
		if got != tt.want {
			t.Errorf("ProgressRatio(%d, %d) = %v, want %v", tt.total, tt.goal, got, tt.want)
		}
		if got < 0 || got > 1 {
			t.Errorf("ProgressRatio(%d, %d) = %v, outside [0, 1]", tt.total, tt.goal, got)
		}
	}
}

func TestProgressRatioZeroGoal(t *testing.T) {
	for _, goal := range []int{0, -100} {
		if _, err := aggregate.ProgressRatio(1000, goal); !errors.Is(err, aggregate.ErrZeroGoal) {
			t.Errorf("ProgressRatio(1000, %d) error = %v, want ErrZeroGoal", goal, err)
		}
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		total, goal int
		want        int
	}{
		{0, 2000, 0},
		{500, 2000, 25},
		{2000, 2000, 100},
		{2500, 2000, 125}, // not capped
		{1000, 3000, 33},
		{2000, 3000, 67}, // rounds
	}
	for _, tt := range tests {
		got, err := aggregate.Percentage(tt.total, tt.goal)
		if err != nil {
			t.Fatalf("Percentage(%d, %d) error: %v", tt.total, tt.goal, err)
		}
		if got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.total, tt.goal, got, tt.want)
		}
	}

	if _, err := aggregate.Percentage(1000, 0); !errors.Is(err, aggregate.ErrZeroGoal) {
		t.Errorf("Percentage with zero goal error = %v, want ErrZeroGoal", err)
	}
}

func TestGoalForDay(t *testing.T) {
	cfg := aggregate.GoalConfig{
		DailyGoalML:    2000,
		TrainingGoalML: 3000,
	}

	// Today follows the live flag, not entry snapshots.
	if got := aggregate.GoalForDay(today, today, nil, cfg); got != 2000 {
		t.Errorf("GoalForDay(today, not training) = %d, want 2000", got)
	}
	cfgTraining := cfg
	cfgTraining.IsTrainingToday = true
	if got := aggregate.GoalForDay(today, today, nil, cfgTraining); got != 3000 {
		t.Errorf("GoalForDay(today, training) = %d, want 3000", got)
	}

	// Past days are training if any entry that day carries the flag.
	entries := []model.Entry{
		entry(daysAgo(1), 500, false),
		entry(daysAgo(1).Add(time.Hour), 500, true),
		entry(daysAgo(2), 500, false),
	}
	if got := aggregate.GoalForDay(daysAgo(1), today, entries, cfg); got != 3000 {
		t.Errorf("GoalForDay(past training day) = %d, want 3000", got)
	}
	if got := aggregate.GoalForDay(daysAgo(2), today, entries, cfg); got != 2000 {
		t.Errorf("GoalForDay(past regular day) = %d, want 2000", got)
	}
}

func TestCurrentStreak(t *testing.T) {
	cfg := aggregate.GoalConfig{
		DailyGoalML:    2000,
		TrainingGoalML: 3000,
	}

	tests := []struct {
		name    string
		entries []model.Entry
		want    int
	}{
		{
			name:    "empty",
			entries: nil,
			want:    0,
		},
		{
			name: "today below goal",
			entries: []model.Entry{
				entry(today, 1500, false),
			},
			want: 0,
		},
		{
			name: "today only",
			entries: []model.Entry{
				entry(today, 2000, false),
			},
			want: 1,
		},
		{
			name: "mixed goals over two days",
			entries: []model.Entry{
				entry(today, 2000, false),
				entry(daysAgo(1), 3000, true),
			},
			want: 2,
		},
		{
			name: "training day short of training goal",
			entries: []model.Entry{
				entry(today, 2000, false),
				entry(daysAgo(1), 2500, true), // training goal is 3000
			},
			want: 1,
		},
		{
			name: "gap day breaks streak",
			entries: []model.Entry{
				entry(today, 2000, false),
				// nothing on daysAgo(1)
				entry(daysAgo(2), 2000, false),
			},
			want: 1,
		},
		{
			name: "three consecutive days",
			entries: []model.Entry{
				entry(today, 2100, false),
				entry(daysAgo(1), 2000, false),
				entry(daysAgo(2), 2500, false),
				entry(daysAgo(3), 100, false),
			},
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := aggregate.CurrentStreak(tt.entries, cfg, today); got != tt.want {
				t.Errorf("CurrentStreak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMonthlyAveragePercent(t *testing.T) {
	cfg := aggregate.GoalConfig{
		DailyGoalML:    2000,
		TrainingGoalML: 3000,
	}

	// Two tracked days this month: 2000/2000 and 1000/2000. Days with
	// no entries must not drag the mean down.
	entries := []model.Entry{
		entry(daysAgo(1), 2000, false),
		entry(daysAgo(2), 1000, false),
	}

	got, err := aggregate.MonthlyAveragePercent(entries, cfg, today, today)
	if err != nil {
		t.Fatalf("MonthlyAveragePercent error: %v", err)
	}
	if got != 75 {
		t.Errorf("MonthlyAveragePercent = %d, want 75", got)
	}
}

func TestMonthlyAveragePercentTrainingDay(t *testing.T) {
	cfg := aggregate.GoalConfig{
		DailyGoalML:    2000,
		TrainingGoalML: 3000,
	}

	// mean total 2500, mean goal 2500 -> 100.
	entries := []model.Entry{
		entry(daysAgo(1), 3000, true),
		entry(daysAgo(2), 2000, false),
	}

	got, err := aggregate.MonthlyAveragePercent(entries, cfg, today, today)
	if err != nil {
		t.Fatalf("MonthlyAveragePercent error: %v", err)
	}
	if got != 100 {
		t.Errorf("MonthlyAveragePercent = %d, want 100", got)
	}
}

func TestMonthlyAveragePercentEmptyAndZeroGoal(t *testing.T) {
	cfg := aggregate.GoalConfig{DailyGoalML: 2000, TrainingGoalML: 3000}

	got, err := aggregate.MonthlyAveragePercent(nil, cfg, today, today)
	if err != nil {
		t.Fatalf("MonthlyAveragePercent(empty) error: %v", err)
	}
	if got != 0 {
		t.Errorf("MonthlyAveragePercent(empty) = %d, want 0", got)
	}

	bad := aggregate.GoalConfig{DailyGoalML: 0, TrainingGoalML: 3000}
	if _, err := aggregate.MonthlyAveragePercent(nil, bad, today, today); !errors.Is(err, aggregate.ErrZeroGoal) {
		t.Errorf("MonthlyAveragePercent(zero goal) error = %v, want ErrZeroGoal", err)
	}
}

func TestMonthlyAveragePercentIgnoresOtherMonths(t *testing.T) {
	cfg := aggregate.GoalConfig{DailyGoalML: 2000, TrainingGoalML: 3000}

	entries := []model.Entry{
		entry(daysAgo(1), 1000, false),
		entry(today.AddDate(0, -1, 0), 2000, false), // previous month
	}

	got, err := aggregate.MonthlyAveragePercent(entries, cfg, today, today)
	if err != nil {
		t.Fatalf("MonthlyAveragePercent error: %v", err)
	}
	if got != 50 {
		t.Errorf("MonthlyAveragePercent = %d, want 50", got)
	}
}
