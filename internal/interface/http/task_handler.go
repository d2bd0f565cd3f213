package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/taskvault/taskvault/internal/application"
	"github.com/taskvault/taskvault/internal/domain/query"
	"github.com/taskvault/taskvault/internal/interface/middleware"
	"github.com/taskvault/taskvault/pkg/response"
	"github.com/taskvault/taskvault/pkg/validation"
)

type TaskHandler struct {
	Svc    *application.TaskService
	Logger *logrus.Logger
}

func NewTaskHandler(svc *application.TaskService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{Svc: svc, Logger: logger}
}

type createTaskRequest struct {
	Description string `json:"description" binding:"required"`
	Completed   bool   `json:"completed"`
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u := middleware.Account(c)
	t, err := h.Svc.Create(c.Request.Context(), u.ID, req.Description, req.Completed)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, t, "task created")
}

// List runs the composed collection query: ?completed=true|false,
// ?sortBy=field:asc|desc, ?limit, ?skip. Malformed values fall back to
// defaults; ownership is bound inside the repository.
func (h *TaskHandler) List(c *gin.Context) {
	opts := query.Parse(c.Request.URL.Query())
	u := middleware.Account(c)
	tasks, err := h.Svc.List(c.Request.Context(), u.ID, opts)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tasks, "tasks")
}

func (h *TaskHandler) Get(c *gin.Context) {
	u := middleware.Account(c)
	t, err := h.Svc.Get(c.Request.Context(), u.ID, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t, "task")
}

func (h *TaskHandler) Update(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	payload, err := validation.DecodeUpdate(body)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"payload": "invalid json"})
		return
	}
	u := middleware.Account(c)
	t, err := h.Svc.Update(c.Request.Context(), u.ID, c.Param("id"), payload)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t, "task updated")
}

func (h *TaskHandler) Delete(c *gin.Context) {
	u := middleware.Account(c)
	t, err := h.Svc.Delete(c.Request.Context(), u.ID, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t, "task deleted")
}

// Search queries the task index, scoped to the acting account.
func (h *TaskHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.Query("limit"))
	u := middleware.Account(c)
	hits, err := h.Svc.Search(c.Request.Context(), u.ID, q, size)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results")
}
