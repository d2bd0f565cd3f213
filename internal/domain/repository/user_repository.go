package repository

import (
	"context"
	"errors"

	"github.com/taskvault/taskvault/internal/domain/entity"
)

// ErrNotFound is returned by every repository when the requested row does
// not exist, or exists but is owned by a different account. Callers cannot
// tell the two apart.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail reports a create or email change colliding with another
// account's email; the match is case-insensitive.
var ErrDuplicateEmail = errors.New("email already in use")

// UserRepository defines user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
}
