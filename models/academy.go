package models

import "time"

// Academy is a tenant; every player and user belongs to exactly one.
type Academy struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
