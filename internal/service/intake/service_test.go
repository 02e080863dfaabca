package intake_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"hydrotrack/internal/model"
	"hydrotrack/internal/service/intake"
)

type fakeEntryStore struct {
	entries []model.Entry
	nextID  int
}

func (f *fakeEntryStore) Insert(ctx context.Context, e *model.Entry) (int, error) {
	f.nextID++
	e.ID = f.nextID
	f.entries = append(f.entries, *e)
	return e.ID, nil
}

func (f *fakeEntryStore) Delete(ctx context.Context, userID, entryID int) (bool, error) {
	for i, e := range f.entries {
		if e.UserID == userID && e.ID == entryID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEntryStore) ListByRange(ctx context.Context, userID int, from, to time.Time) ([]model.Entry, error) {
	var out []model.Entry
	for _, e := range f.entries {
		if e.UserID == userID && !e.LoggedAt.Before(from) && e.LoggedAt.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeContainerStore struct {
	containers []model.Container
}

func (f *fakeContainerStore) GetByID(ctx context.Context, userID, containerID int) (*model.Container, error) {
	for _, c := range f.containers {
		if c.UserID == userID && c.ID == containerID {
			cc := c
			return &cc, nil
		}
	}
	return nil, errors.New("no rows")
}

func (f *fakeContainerStore) ListByUser(ctx context.Context, userID int) ([]model.Container, error) {
	var out []model.Container
	for _, c := range f.containers {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeSettingsStore struct {
	settings *model.Settings
}

func (f *fakeSettingsStore) Get(ctx context.Context, userID int) (*model.Settings, error) {
	if f.settings != nil {
		return f.settings, nil
	}
	return model.DefaultSettings(userID), nil
}

type fakePublisher struct {
	published []string
}

func (f *fakePublisher) Publish(routingKey string, payload any) error {
	f.published = append(f.published, routingKey)
	return nil
}

var noon = time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc        *intake.Service
	entries    *fakeEntryStore
	containers *fakeContainerStore
	settings   *fakeSettingsStore
	publisher  *fakePublisher
}

func newFixture() *fixture {
	f := &fixture{
		entries:    &fakeEntryStore{},
		containers: &fakeContainerStore{},
		settings:   &fakeSettingsStore{},
		publisher:  &fakePublisher{},
	}
	f.svc = intake.NewService(f.entries, f.containers, f.settings, f.publisher, zap.NewNop()).
		WithClock(func() time.Time { return noon })
	return f
}

func intPtr(v int) *int { return &v }

func TestLogIntakeDirectAmount(t *testing.T) {
	f := newFixture()

	entry, err := f.svc.LogIntake(context.Background(), 1, intake.LogIntakeRequest{AmountML: 250})
	if err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}
	if entry.AmountML != 250 {
		t.Errorf("AmountML = %d, want 250", entry.AmountML)
	}
	if !entry.LoggedAt.Equal(noon) {
		t.Errorf("LoggedAt = %v, want %v", entry.LoggedAt, noon)
	}
	if entry.ID == 0 {
		t.Error("entry was not persisted")
	}
}

func TestLogIntakeRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture()

	for _, amount := range []int{0, -100} {
		if _, err := f.svc.LogIntake(context.Background(), 1, intake.LogIntakeRequest{AmountML: amount}); !errors.Is(err, intake.ErrInvalidAmount) {
			t.Errorf("LogIntake(%d) error = %v, want ErrInvalidAmount", amount, err)
		}
	}
	if len(f.entries.entries) != 0 {
		t.Errorf("rejected intake was persisted")
	}
}

func TestLogIntakeFromContainer(t *testing.T) {
	f := newFixture()
	f.containers.containers = []model.Container{
		{ID: 7, UserID: 1, Name: "Big Bottle", VolumeML: 1000},
	}

	tests := []struct {
		name string
		req  intake.LogIntakeRequest
		want int
	}{
		{
			name: "full container",
			req:  intake.LogIntakeRequest{ContainerID: intPtr(7)},
			want: 1000,
		},
		{
			name: "half container",
			req:  intake.LogIntakeRequest{ContainerID: intPtr(7), FractionNum: intPtr(1), FractionDen: intPtr(2)},
			want: 500,
		},
		{
			name: "three quarters",
			req:  intake.LogIntakeRequest{ContainerID: intPtr(7), FractionNum: intPtr(3), FractionDen: intPtr(4)},
			want: 750,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := f.svc.LogIntake(context.Background(), 1, tt.req)
			if err != nil {
				t.Fatalf("LogIntake error: %v", err)
			}
			if entry.AmountML != tt.want {
				t.Errorf("AmountML = %d, want %d", entry.AmountML, tt.want)
			}
		})
	}
}

func TestLogIntakeUnknownContainer(t *testing.T) {
	f := newFixture()

	_, err := f.svc.LogIntake(context.Background(), 1, intake.LogIntakeRequest{ContainerID: intPtr(99)})
	if !errors.Is(err, intake.ErrContainerNotFound) {
		t.Errorf("LogIntake error = %v, want ErrContainerNotFound", err)
	}
}

func TestLogIntakeBackdated(t *testing.T) {
	f := newFixture()

	target := noon.AddDate(0, 0, -3)
	entry, err := f.svc.LogIntake(context.Background(), 1, intake.LogIntakeRequest{
		AmountML: 500,
		Date:     &target,
	})
	if err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}

	want := time.Date(target.Year(), target.Month(), target.Day(), 23, 59, 59, 0, noon.Location())
	if !entry.LoggedAt.Equal(want) {
		t.Errorf("backdated LoggedAt = %v, want %v", entry.LoggedAt, want)
	}
}

func TestLogIntakeDateTodayIsNotBackdated(t *testing.T) {
	f := newFixture()

	sameDay := noon.Add(-2 * time.Hour)
	entry, err := f.svc.LogIntake(context.Background(), 1, intake.LogIntakeRequest{
		AmountML: 500,
		Date:     &sameDay,
	})
	if err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}
	if !entry.LoggedAt.Equal(noon) {
		t.Errorf("same-day LoggedAt = %v, want %v", entry.LoggedAt, noon)
	}
}

func TestLogIntakeSnapshotsTrainingFlag(t *testing.T) {
	f := newFixture()
	settings := model.DefaultSettings(1)
	settings.IsTrainingDay = true
	f.settings.settings = settings

	entry, err := f.svc.LogIntake(context.Background(), 1, intake.LogIntakeRequest{AmountML: 500})
	if err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}
	if !entry.IsTrainingDay {
		t.Error("entry did not snapshot the training-day flag")
	}
}

func TestLogIntakePublishesGoalReachedOnce(t *testing.T) {
	f := newFixture() // default goal 2000

	ctx := context.Background()
	if _, err := f.svc.LogIntake(ctx, 1, intake.LogIntakeRequest{AmountML: 1500}); err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}
	if len(f.publisher.published) != 0 {
		t.Fatalf("goal event published below goal: %v", f.publisher.published)
	}

	// This one crosses 2000.
	if _, err := f.svc.LogIntake(ctx, 1, intake.LogIntakeRequest{AmountML: 600}); err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0] != "goal.reached" {
		t.Fatalf("published = %v, want [goal.reached]", f.publisher.published)
	}

	// Already past the goal: no second event.
	if _, err := f.svc.LogIntake(ctx, 1, intake.LogIntakeRequest{AmountML: 300}); err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}
	if len(f.publisher.published) != 1 {
		t.Errorf("published = %v, want exactly one goal.reached", f.publisher.published)
	}
}

func TestLogIntakeBackdatedSkipsGoalCheck(t *testing.T) {
	f := newFixture()

	target := noon.AddDate(0, 0, -1)
	if _, err := f.svc.LogIntake(context.Background(), 1, intake.LogIntakeRequest{
		AmountML: 5000,
		Date:     &target,
	}); err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}
	if len(f.publisher.published) != 0 {
		t.Errorf("backdated intake published events: %v", f.publisher.published)
	}
}

func TestDeleteEntry(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	entry, err := f.svc.LogIntake(ctx, 1, intake.LogIntakeRequest{AmountML: 500})
	if err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}

	if err := f.svc.DeleteEntry(ctx, 1, entry.ID); err != nil {
		t.Fatalf("DeleteEntry error: %v", err)
	}
	if err := f.svc.DeleteEntry(ctx, 1, entry.ID); !errors.Is(err, intake.ErrEntryNotFound) {
		t.Errorf("second DeleteEntry error = %v, want ErrEntryNotFound", err)
	}
}

func TestProgressForDay(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.LogIntake(ctx, 1, intake.LogIntakeRequest{AmountML: 500}); err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}
	if _, err := f.svc.LogIntake(ctx, 1, intake.LogIntakeRequest{AmountML: 1000}); err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}

	p, err := f.svc.ProgressForDay(ctx, 1, noon)
	if err != nil {
		t.Fatalf("ProgressForDay error: %v", err)
	}
	if p.TotalML != 1500 {
		t.Errorf("TotalML = %d, want 1500", p.TotalML)
	}
	if p.GoalML != 2000 {
		t.Errorf("GoalML = %d, want 2000", p.GoalML)
	}
	if p.Ratio != 0.75 {
		t.Errorf("Ratio = %v, want 0.75", p.Ratio)
	}
	if p.Percent != 75 {
		t.Errorf("Percent = %d, want 75", p.Percent)
	}
	if len(p.Entries) != 2 {
		t.Errorf("Entries = %d, want 2", len(p.Entries))
	}
}

func TestProgressEntryDisplay(t *testing.T) {
	f := newFixture()
	f.containers.containers = []model.Container{
		{ID: 7, UserID: 1, Name: "Big Bottle", VolumeML: 1000},
	}
	ctx := context.Background()

	// Half a bottle, a whole bottle via explicit 1/1, and a custom pour.
	if _, err := f.svc.LogIntake(ctx, 1, intake.LogIntakeRequest{
		ContainerID: intPtr(7), FractionNum: intPtr(1), FractionDen: intPtr(2),
	}); err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}
	if _, err := f.svc.LogIntake(ctx, 1, intake.LogIntakeRequest{
		ContainerID: intPtr(7), FractionNum: intPtr(1), FractionDen: intPtr(1),
	}); err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}
	if _, err := f.svc.LogIntake(ctx, 1, intake.LogIntakeRequest{AmountML: 300}); err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}

	p, err := f.svc.ProgressForDay(ctx, 1, noon)
	if err != nil {
		t.Fatalf("ProgressForDay error: %v", err)
	}
	if len(p.Entries) != 3 {
		t.Fatalf("Entries = %d, want 3", len(p.Entries))
	}

	byAmount := make(map[int]intake.EntryView)
	for _, v := range p.Entries {
		byAmount[v.AmountML] = v
	}

	if v := byAmount[500]; v.DisplayName != "Big Bottle" || v.Fraction != "1/2" {
		t.Errorf("half bottle view = %q %q, want Big Bottle 1/2", v.DisplayName, v.Fraction)
	}
	// A 1/1 fraction displays the same as no fraction at all.
	if v := byAmount[1000]; v.DisplayName != "Big Bottle" || v.Fraction != "" {
		t.Errorf("full bottle view = %q %q, want Big Bottle with empty fraction", v.DisplayName, v.Fraction)
	}
	if v := byAmount[300]; v.DisplayName != "Custom" || v.Fraction != "" {
		t.Errorf("custom view = %q %q, want Custom with empty fraction", v.DisplayName, v.Fraction)
	}
}

func TestCurrentStreak(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	yesterday := noon.AddDate(0, 0, -1)
	if _, err := f.svc.LogIntake(ctx, 1, intake.LogIntakeRequest{AmountML: 2000, Date: &yesterday}); err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}
	if _, err := f.svc.LogIntake(ctx, 1, intake.LogIntakeRequest{AmountML: 2000}); err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}

	streak, err := f.svc.CurrentStreak(ctx, 1)
	if err != nil {
		t.Fatalf("CurrentStreak error: %v", err)
	}
	if streak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", streak)
	}
}

func TestStatsForMonth(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	twoDaysAgo := noon.AddDate(0, 0, -2)
	if _, err := f.svc.LogIntake(ctx, 1, intake.LogIntakeRequest{AmountML: 1000, Date: &twoDaysAgo}); err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}
	if _, err := f.svc.LogIntake(ctx, 1, intake.LogIntakeRequest{AmountML: 2000}); err != nil {
		t.Fatalf("LogIntake error: %v", err)
	}

	stats, err := f.svc.StatsForMonth(ctx, 1, noon)
	if err != nil {
		t.Fatalf("StatsForMonth error: %v", err)
	}
	if stats.Month != "2026-08" {
		t.Errorf("Month = %q, want 2026-08", stats.Month)
	}
	// 50% and 100% over the two tracked days; empty days excluded.
	if stats.AveragePercent != 75 {
		t.Errorf("AveragePercent = %d, want 75", stats.AveragePercent)
	}
	if len(stats.Days) != 2 {
		t.Fatalf("Days = %d, want 2", len(stats.Days))
	}
	for _, d := range stats.Days {
		if d.TotalML == 0 {
			t.Errorf("day %s has zero total, empty days must be omitted", d.Day)
		}
	}
}
