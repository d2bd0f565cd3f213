package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskvault/taskvault/internal/domain/entity"
	"github.com/taskvault/taskvault/internal/domain/query"
	"github.com/taskvault/taskvault/internal/domain/repository"
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = `id, owner_id, description, completed, created_at, updated_at`

func scanTask(row pgx.Row) (*entity.Task, error) {
	t := &entity.Task{}
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Description, &t.Completed,
		&t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (owner_id, description, completed)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, t.OwnerID, t.Description, t.Completed)

	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID binds the owner into the lookup: a task belonging to another
// account scans as no rows and surfaces as ErrNotFound.
func (r *TaskRepository) GetByID(ctx context.Context, ownerID, id string) (*entity.Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_id = $1 AND id = $2
	`, ownerID, id))
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string, opts query.Options) ([]*entity.Task, error) {
	sql, args := buildListQuery(ownerID, opts)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*entity.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, ownerID string, t *entity.Task) error {
	t.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET description = $1, completed = $2, updated_at = $3
		WHERE owner_id = $4 AND id = $5
	`, t.Description, t.Completed, t.UpdatedAt, ownerID, t.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, id string) (*entity.Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `
		DELETE FROM tasks
		WHERE owner_id = $1 AND id = $2
		RETURNING `+taskColumns+`
	`, ownerID, id))
}

// sortColumns maps recognized sort keys onto columns. The query layer passes
// the field through opaquely; anything not listed here falls back to
// created_at rather than reaching the SQL text.
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"completed":   "completed",
	"description": "description",
}

// buildListQuery composes the owner-scoped list statement. The owner
// predicate is unconditional; filter, sort, and pagination are appended from
// the options with positional args only.
func buildListQuery(ownerID string, opts query.Options) (string, []any) {
	var sb strings.Builder
	args := []any{ownerID}

	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1`)

	if opts.Completed != nil {
		args = append(args, *opts.Completed)
		fmt.Fprintf(&sb, " AND completed = $%d", len(args))
	}

	col, ok := sortColumns[opts.SortField]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if opts.SortDesc {
		dir = "DESC"
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s", col, dir)

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if opts.Skip > 0 {
		args = append(args, opts.Skip)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	return sb.String(), args
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
