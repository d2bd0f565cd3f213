package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskvault/taskvault/internal/domain/repository"
)

// SessionRepository keeps the per-account token registry as rows keyed by
// (user_id, token). Each mutation below is a single statement, so concurrent
// appends and revokes on the same account serialize in the database instead
// of racing on a read-modify-write of a list.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Append(ctx context.Context, userID, token string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (user_id, token)
		VALUES ($1, $2)
	`, userID, token)
	return err
}

func (r *SessionRepository) RevokeOne(ctx context.Context, userID, token string) error {
	// Zero rows affected is fine: revoking an absent token has no effect.
	_, err := r.pool.Exec(ctx, `
		DELETE FROM sessions WHERE user_id = $1 AND token = $2
	`, userID, token)
	return err
}

func (r *SessionRepository) RevokeAll(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

func (r *SessionRepository) Exists(ctx context.Context, userID, token string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM sessions WHERE user_id = $1 AND token = $2
		)
	`, userID, token).Scan(&exists)
	return exists, err
}

var _ repository.SessionRepository = (*SessionRepository)(nil)
