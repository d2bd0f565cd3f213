package repository

import (
	"context"

	"github.com/taskvault/taskvault/internal/domain/entity"
	"github.com/taskvault/taskvault/internal/domain/query"
)

// TaskRepository exposes only owner-scoped operations: every method takes
// the acting account's id and binds it into the query, so a task owned by
// someone else behaves exactly like a task that does not exist.
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	GetByID(ctx context.Context, ownerID, id string) (*entity.Task, error)
	ListByOwner(ctx context.Context, ownerID string, opts query.Options) ([]*entity.Task, error)
	Update(ctx context.Context, ownerID string, t *entity.Task) error
	Delete(ctx context.Context, ownerID, id string) (*entity.Task, error)
}
