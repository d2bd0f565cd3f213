package entity

import (
	"time"
)

// Task belongs to exactly one account. OwnerID is set from the authenticated
// identity at creation and is never updatable.
type Task struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
