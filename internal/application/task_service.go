package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/taskvault/taskvault/internal/domain/entity"
	"github.com/taskvault/taskvault/internal/domain/query"
	"github.com/taskvault/taskvault/internal/domain/repository"
	"github.com/taskvault/taskvault/pkg/validation"
)

// taskUpdateFields is the allow-list for partial task updates. The owner is
// deliberately absent: it is set at creation and never again.
var taskUpdateFields = []string{"description", "completed"}

// TaskService owns task CRUD and the search index mirror. Every operation
// takes the acting account's id; there is no path to another tenant's rows.
type TaskService struct {
	Repo    repository.TaskRepository
	Logger  *logrus.Logger
	ES      *elasticsearch.Client
	ESIndex string
}

func NewTaskService(repo repository.TaskRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *TaskService {
	return &TaskService{Repo: repo, Logger: logger, ES: es, ESIndex: esIndex}
}

// Create inserts a task for the acting account. The owner comes from the
// authenticated identity, never from the payload.
func (s *TaskService) Create(ctx context.Context, ownerID, description string, completed bool) (*entity.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	t := &entity.Task{OwnerID: ownerID, Description: description, Completed: completed}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.indexTask(ctx, t)
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*entity.Task, error) {
	return s.Repo.GetByID(ctx, ownerID, id)
}

// List runs the composed collection query for the acting account. The
// options never carry ownership; the repository binds it unconditionally.
func (s *TaskService) List(ctx context.Context, ownerID string, opts query.Options) ([]*entity.Task, error) {
	return s.Repo.ListByOwner(ctx, ownerID, opts)
}

// Update applies a whitelisted partial update to an owned task.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, p validation.UpdatePayload) (*entity.Task, error) {
	if err := p.CheckAllowedFields(taskUpdateFields...); err != nil {
		return nil, err
	}
	t, err := s.Repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if p.Has("description") {
		if err := p.Unmarshal("description", &t.Description); err != nil {
			return nil, fmt.Errorf("%w: description", ErrValidation)
		}
		if strings.TrimSpace(t.Description) == "" {
			return nil, fmt.Errorf("%w: description must not be empty", ErrValidation)
		}
	}
	if p.Has("completed") {
		if err := p.Unmarshal("completed", &t.Completed); err != nil {
			return nil, fmt.Errorf("%w: completed", ErrValidation)
		}
	}
	if err := s.Repo.Update(ctx, ownerID, t); err != nil {
		return nil, err
	}
	s.indexTask(ctx, t)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, id string) (*entity.Task, error) {
	t, err := s.Repo.Delete(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	s.deleteTaskDoc(ctx, id)
	return t, nil
}

// Search multi-matches the description in the task index, always filtered
// by the acting account's id.
func (s *TaskService) Search(ctx context.Context, ownerID, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"match": map[string]any{"description": q},
				},
				"filter": map[string]any{
					"term": map[string]any{"owner_id": ownerID},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(body)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

// PurgeOwner drops every index document for a deleted account. The database
// rows are already gone via cascade; this keeps search from resurrecting
// them.
func (s *TaskService) PurgeOwner(ctx context.Context, ownerID string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	body := map[string]any{
		"query": map[string]any{
			"term": map[string]any{"owner_id": ownerID},
		},
	}
	b, _ := json.Marshal(body)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.DeleteByQuery([]string{s.ESIndex}, strings.NewReader(string(b)), s.ES.DeleteByQuery.WithContext(c))
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("owner_id", ownerID).Warn("es purge failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("owner_id", ownerID).Warn("es purge response error")
	}
}

// indexTask mirrors a task into the search index. Index failures are logged
// and dropped; the triggering mutation already committed.
func (s *TaskService) indexTask(ctx context.Context, t *entity.Task) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          t.ID,
		"owner_id":    t.OwnerID,
		"description": t.Description,
		"completed":   t.Completed,
		"created_at":  t.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  t.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: t.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("task_id", t.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("task_id", t.ID).Warn("es index response error")
	}
}

func (s *TaskService) deleteTaskDoc(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("task_id", id).Warn("es delete failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
}
