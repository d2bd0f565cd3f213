package entity

import (
	"time"
)

// Session is one entry in an account's login registry. The token literal is
// what the auth middleware matches against; an account may hold any number
// of concurrent sessions and duplicates are not collapsed.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}
