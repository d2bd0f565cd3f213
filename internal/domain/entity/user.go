package entity

import (
	"time"
)

// User is the aggregate root for the account domain. Password holds a bcrypt
// hash; the plaintext never reaches storage. Avatar is the transcoded PNG
// stored directly on the account row.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Age       *int      `json:"age,omitempty"`
	Avatar    []byte    `json:"-"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
