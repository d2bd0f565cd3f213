package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault/internal/domain/query"
	"github.com/taskvault/taskvault/internal/domain/repository"
	"github.com/taskvault/taskvault/pkg/validation"
)

func newTestTaskService() (*TaskService, *memTaskRepo) {
	repo := newMemTaskRepo()
	return NewTaskService(repo, nil, nil, ""), repo
}

func TestTaskCreate_RequiresDescription(t *testing.T) {
	t.Parallel()
	svc, _ := newTestTaskService()

	_, err := svc.Create(context.Background(), "owner-a", "   ", false)
	require.ErrorIs(t, err, ErrValidation)

	created, err := svc.Create(context.Background(), "owner-a", "buy milk", true)
	require.NoError(t, err)
	require.Equal(t, "owner-a", created.OwnerID)
	require.True(t, created.Completed)
}

func TestForeignTaskLooksAbsent(t *testing.T) {
	t.Parallel()
	svc, _ := newTestTaskService()

	created, err := svc.Create(context.Background(), "owner-a", "secret errand", false)
	require.NoError(t, err)

	// The id exists but belongs to someone else; every operation answers
	// as if it did not exist at all.
	_, err = svc.Get(context.Background(), "owner-b", created.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	p, _ := validation.DecodeUpdate([]byte(`{"completed": true}`))
	_, err = svc.Update(context.Background(), "owner-b", created.ID, p)
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Delete(context.Background(), "owner-b", created.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	// The real owner is unaffected.
	got, err := svc.Get(context.Background(), "owner-a", created.ID)
	require.NoError(t, err)
	require.False(t, got.Completed)
}

func TestTaskUpdate_RejectsUnknownFieldWholesale(t *testing.T) {
	t.Parallel()
	svc, _ := newTestTaskService()

	created, err := svc.Create(context.Background(), "owner-a", "water plants", false)
	require.NoError(t, err)

	p, err := validation.DecodeUpdate([]byte(`{"completed": true, "owner": "owner-b"}`))
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), "owner-a", created.ID, p)
	require.ErrorIs(t, err, validation.ErrInvalidUpdateFields)

	got, err := svc.Get(context.Background(), "owner-a", created.ID)
	require.NoError(t, err)
	require.False(t, got.Completed, "valid half of a rejected payload was applied")
}

func TestTaskUpdate_EmptyDescriptionRejected(t *testing.T) {
	t.Parallel()
	svc, _ := newTestTaskService()

	created, err := svc.Create(context.Background(), "owner-a", "water plants", false)
	require.NoError(t, err)

	p, _ := validation.DecodeUpdate([]byte(`{"description": "  "}`))
	_, err = svc.Update(context.Background(), "owner-a", created.ID, p)
	require.ErrorIs(t, err, ErrValidation)
}

func TestTaskList_FilterAndPagination(t *testing.T) {
	t.Parallel()
	svc, _ := newTestTaskService()

	for i, completed := range []bool{false, true, false, true, true} {
		_, err := svc.Create(context.Background(), "owner-a", "task", completed)
		require.NoError(t, err, "create %d", i)
	}
	_, err := svc.Create(context.Background(), "owner-b", "other owner", true)
	require.NoError(t, err)

	all, err := svc.List(context.Background(), "owner-a", query.Options{})
	require.NoError(t, err)
	require.Len(t, all, 5)

	done := true
	completed, err := svc.List(context.Background(), "owner-a", query.Options{Completed: &done})
	require.NoError(t, err)
	require.Len(t, completed, 3)

	page, err := svc.List(context.Background(), "owner-a", query.Options{Limit: 2, Skip: 4})
	require.NoError(t, err)
	require.Len(t, page, 1)
}

func TestTaskList_SortCompletedDescFirst(t *testing.T) {
	t.Parallel()
	svc, _ := newTestTaskService()

	for _, completed := range []bool{false, true, false, true} {
		_, err := svc.Create(context.Background(), "owner-a", "task", completed)
		require.NoError(t, err)
	}

	tasks, err := svc.List(context.Background(), "owner-a", query.Options{SortField: "completed", SortDesc: true})
	require.NoError(t, err)
	require.Len(t, tasks, 4)
	require.True(t, tasks[0].Completed)
	require.True(t, tasks[1].Completed)
	require.False(t, tasks[2].Completed)
	require.False(t, tasks[3].Completed)

	// Ascending puts incomplete tasks first.
	tasks, err = svc.List(context.Background(), "owner-a", query.Options{SortField: "completed"})
	require.NoError(t, err)
	require.False(t, tasks[0].Completed)
	require.True(t, tasks[3].Completed)
}

func TestTaskList_SortByDescription(t *testing.T) {
	t.Parallel()
	svc, _ := newTestTaskService()

	for _, d := range []string{"charlie", "alpha", "bravo"} {
		_, err := svc.Create(context.Background(), "owner-a", d, false)
		require.NoError(t, err)
	}

	tasks, err := svc.List(context.Background(), "owner-a", query.Options{SortField: "description"})
	require.NoError(t, err)
	require.Equal(t, "alpha", tasks[0].Description)
	require.Equal(t, "bravo", tasks[1].Description)
	require.Equal(t, "charlie", tasks[2].Description)
}

func TestTaskSearch_NilIndexReturnsEmpty(t *testing.T) {
	t.Parallel()
	svc, _ := newTestTaskService()

	hits, err := svc.Search(context.Background(), "owner-a", "milk", 10)
	require.NoError(t, err)
	require.Empty(t, hits)
}
