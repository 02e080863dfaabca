package model

import "time"

// Entry is one logged intake event. Entries are immutable once created;
// corrections are delete-and-relog.
type Entry struct {
	ID            int       `json:"id"`
	UserID        int       `json:"user_id"`
	LoggedAt      time.Time `json:"logged_at"`
	AmountML      int       `json:"amount_ml"`
	IsTrainingDay bool      `json:"is_training_day"`
	ContainerID   *int      `json:"container_id,omitempty"`
	FractionNum   *int      `json:"fraction_num,omitempty"`
	FractionDen   *int      `json:"fraction_den,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsFullContainer reports whether the entry represents a whole container:
// either no fraction was stored, or the stored fraction is 1/1.
func (e *Entry) IsFullContainer() bool {
	if e.ContainerID == nil {
		return false
	}
	if e.FractionNum == nil || e.FractionDen == nil {
		return true
	}
	return *e.FractionNum == *e.FractionDen
}
