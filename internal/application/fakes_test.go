package application

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskvault/taskvault/internal/domain/entity"
	"github.com/taskvault/taskvault/internal/domain/query"
	"github.com/taskvault/taskvault/internal/domain/repository"
)

// In-memory repository fakes. The session fake honors the registry contract:
// each mutation is atomic under the lock, entries are kept as independent
// rows, and nothing rewrites the whole list.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	return &c
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	if r.emailTaken(u.Email, "") {
		return repository.ErrDuplicateEmail
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = cloneUser(u)
	return nil
}

// emailTaken mirrors the case-insensitive unique index; caller holds the
// lock.
func (r *memUserRepo) emailTaken(email, exceptID string) bool {
	email = strings.ToLower(email)
	for id, u := range r.users {
		if id != exceptID && strings.ToLower(u.Email) == email {
			return true
		}
	}
	return false
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.Email = strings.ToLower(u.Email)
	if r.emailTaken(u.Email, u.ID) {
		return repository.ErrDuplicateEmail
	}
	u.UpdatedAt = time.Now()
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type memSessionRepo struct {
	mu     sync.Mutex
	tokens map[string][]string // userID -> tokens, insertion order
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{tokens: map[string][]string{}}
}

func (r *memSessionRepo) Append(_ context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[userID] = append(r.tokens[userID], token)
	return nil
}

func (r *memSessionRepo) RevokeOne(_ context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.tokens[userID]
	out := list[:0]
	for _, t := range list {
		if t != token {
			out = append(out, t)
		}
	}
	r.tokens[userID] = out
	return nil
}

func (r *memSessionRepo) RevokeAll(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, userID)
	return nil
}

func (r *memSessionRepo) Exists(_ context.Context, userID, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens[userID] {
		if t == token {
			return true, nil
		}
	}
	return false, nil
}

func (r *memSessionRepo) count(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens[userID])
}

type memTaskRepo struct {
	mu    sync.Mutex
	order []string
	tasks map[string]*entity.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: map[string]*entity.Task{}}
}

func cloneTask(t *entity.Task) *entity.Task {
	c := *t
	return &c
}

func (r *memTaskRepo) Create(_ context.Context, t *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.order = append(r.order, t.ID)
	r.tasks[t.ID] = cloneTask(t)
	return nil
}

func (r *memTaskRepo) GetByID(_ context.Context, ownerID, id string) (*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return cloneTask(t), nil
}

func (r *memTaskRepo) ListByOwner(_ context.Context, ownerID string, opts query.Options) ([]*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Task
	for _, id := range r.order {
		t := r.tasks[id]
		if t == nil || t.OwnerID != ownerID {
			continue
		}
		if opts.Completed != nil && t.Completed != *opts.Completed {
			continue
		}
		out = append(out, cloneTask(t))
	}
	if opts.SortField != "" {
		less := taskLess(opts.SortField)
		sort.SliceStable(out, func(i, j int) bool {
			if opts.SortDesc {
				return less(out[j], out[i])
			}
			return less(out[i], out[j])
		})
	}
	if opts.Skip > 0 {
		if opts.Skip >= len(out) {
			return []*entity.Task{}, nil
		}
		out = out[opts.Skip:]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func taskLess(field string) func(a, b *entity.Task) bool {
	switch field {
	case "completed":
		return func(a, b *entity.Task) bool { return !a.Completed && b.Completed }
	case "description":
		return func(a, b *entity.Task) bool { return a.Description < b.Description }
	case "updatedAt":
		return func(a, b *entity.Task) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	default:
		return func(a, b *entity.Task) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

func (r *memTaskRepo) Update(_ context.Context, ownerID string, t *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tasks[t.ID]
	if !ok || existing.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	t.UpdatedAt = time.Now()
	r.tasks[t.ID] = cloneTask(t)
	return nil
}

func (r *memTaskRepo) Delete(_ context.Context, ownerID, id string) (*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	delete(r.tasks, id)
	return cloneTask(t), nil
}

var (
	_ repository.UserRepository    = (*memUserRepo)(nil)
	_ repository.SessionRepository = (*memSessionRepo)(nil)
	_ repository.TaskRepository    = (*memTaskRepo)(nil)
)
