package model

import "time"

// Container is a reusable vessel template with a fixed volume.
type Container struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	VolumeML  int       `json:"volume_ml"`
	Icon      string    `json:"icon"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
