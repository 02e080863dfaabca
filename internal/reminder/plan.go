package reminder

import (
	"fmt"
	"time"
)

const (
	// MaxTriggers is the ceiling on pending triggers the delivery
	// platform accepts; plans that compute more are truncated.
	MaxTriggers = 20

	// quietHour is the local hour after which no reminder fires.
	quietHour = 21

	// smartInitialHour is the fixed daily check-in for smart mode.
	smartInitialHour = 11

	smartInitialBackupOffset = 3 * time.Hour
)

// Trigger is one scheduled notification. Repeating triggers fire daily
// at the same wall-clock time; one-shots fire once and are discarded.
type Trigger struct {
	ID      string
	FireAt  time.Time
	Repeats bool
	Title   string
	Body    string
}

// PeriodicTriggers builds the daily-repeating plan for periodic mode:
// one trigger per hour h = start, start+interval, ... while h <= end.
// The plan is capped at MaxTriggers; the second return value is how
// many triggers were dropped by the cap.
func PeriodicTriggers(startHour, endHour, intervalHours int, now time.Time) ([]Trigger, int) {
	var triggers []Trigger
	truncated := 0
	for h := startHour; h <= endHour; h += intervalHours {
		if len(triggers) >= MaxTriggers {
			truncated++
			continue
		}
		triggers = append(triggers, Trigger{
			ID:      fmt.Sprintf("periodic-%02d", h),
			FireAt:  nextOccurrence(now, h, 0),
			Repeats: true,
			Title:   "Time to hydrate",
			Body:    "Log a glass of water to stay on track.",
		})
	}
	return triggers, truncated
}

// SmartInitialTriggers builds the smart-mode entry plan: a daily
// check-in at the fixed initial hour, plus a backup three hours later
// unless the backup would land at or past the quiet hour.
func SmartInitialTriggers(now time.Time) []Trigger {
	initial := Trigger{
		ID:      "smart-initial",
		FireAt:  nextOccurrence(now, smartInitialHour, 0),
		Repeats: true,
		Title:   "How is your water intake?",
		Body:    "Tell us if you are on pace for today's goal.",
	}
	triggers := []Trigger{initial}

	backupHour := smartInitialHour + int(smartInitialBackupOffset.Hours())
	if backupHour < quietHour {
		triggers = append(triggers, Trigger{
			ID:      "smart-initial-backup",
			FireAt:  nextOccurrence(now, backupHour, 0),
			Repeats: true,
			Title:   "Hydration check-in",
			Body:    "Still time to catch up on today's goal.",
		})
	}
	return triggers
}

// SmartFollowUps builds the one-shot follow-up plan after the user
// answers a smart check-in. On pace pushes the next nudge out four
// hours, behind pulls it in to two. Nothing is scheduled at or past
// the quiet hour, including the secondary backup.
func SmartFollowUps(onPace bool, now time.Time) []Trigger {
	delay := 2 * time.Hour
	backupDelay := 2 * time.Hour
	if onPace {
		delay = 4 * time.Hour
		backupDelay = 3 * time.Hour
	}

	cutoff := time.Date(now.Year(), now.Month(), now.Day(), quietHour, 0, 0, 0, now.Location())

	followAt := now.Add(delay)
	if !followAt.Before(cutoff) {
		return nil
	}

	triggers := []Trigger{{
		ID:      "smart-followup",
		FireAt:  followAt,
		Repeats: false,
		Title:   "Hydration reminder",
		Body:    "Time for your next glass of water.",
	}}

	backupAt := followAt.Add(backupDelay)
	if backupAt.Before(cutoff) {
		triggers = append(triggers, Trigger{
			ID:      "smart-followup-backup",
			FireAt:  backupAt,
			Repeats: false,
			Title:   "Hydration reminder",
			Body:    "Don't forget to log your water intake.",
		})
	}
	return triggers
}

// nextOccurrence returns the next time the local clock reads hh:mm,
// today if that is still ahead of now, otherwise tomorrow.
func nextOccurrence(now time.Time, hour, minute int) time.Time {
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at
}
