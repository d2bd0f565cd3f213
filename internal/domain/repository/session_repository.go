package repository

import (
	"context"
)

// SessionRepository is the per-account token registry. Every operation must
// be a single atomic mutation scoped to the account: two concurrent revokes,
// or a revoke racing an append, must not lose each other's update. A
// read-the-list-then-overwrite implementation is not a valid one.
type SessionRepository interface {
	// Append records a new session. It never deduplicates.
	Append(ctx context.Context, userID, token string) error
	// RevokeOne removes the session holding exactly this token. Removing a
	// token that is not present is not an error.
	RevokeOne(ctx context.Context, userID, token string) error
	// RevokeAll clears the account's registry unconditionally.
	RevokeAll(ctx context.Context, userID string) error
	// Exists reports whether the token literal is currently registered for
	// the account.
	Exists(ctx context.Context, userID, token string) (bool, error)
}
