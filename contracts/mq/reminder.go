package mq

import "time"

// ReminderDuePayload is published on "reminder.due" when a scheduled
// trigger's fire time has passed.
type ReminderDuePayload struct {
	UserID    int       `json:"user_id"`
	TriggerID string    `json:"trigger_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	FiredAt   time.Time `json:"fired_at"`
}

// ReminderResponsePayload is published on "reminder.response" when the
// user answers a smart-mode check-in.
type ReminderResponsePayload struct {
	UserID     int       `json:"user_id"`
	OnPace     bool      `json:"on_pace"`
	AnsweredAt time.Time `json:"answered_at"`
}

// GoalReachedPayload is published on "goal.reached" when a logged entry
// pushes the day's total past the applicable goal.
type GoalReachedPayload struct {
	UserID    int       `json:"user_id"`
	Day       string    `json:"day"` // 2006-01-02, local calendar
	TotalML   int       `json:"total_ml"`
	GoalML    int       `json:"goal_ml"`
	ReachedAt time.Time `json:"reached_at"`
}
