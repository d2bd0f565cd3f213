package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskvault/taskvault/internal/container"
	"github.com/taskvault/taskvault/internal/domain/repository"
	handlers "github.com/taskvault/taskvault/internal/interface/http"
	"github.com/taskvault/taskvault/internal/interface/middleware"
	"github.com/taskvault/taskvault/pkg/token"
)

// TaskModule wires task routes; everything requires authentication.
type TaskModule struct {
	Handler  *handlers.TaskHandler
	Tokens   *token.Manager
	Users    repository.UserRepository
	Sessions repository.SessionRepository
}

func NewTaskModule(h *handlers.TaskHandler, tokens *token.Manager, users repository.UserRepository, sessions repository.SessionRepository) *TaskModule {
	return &TaskModule{Handler: h, Tokens: tokens, Users: users, Sessions: sessions}
}

func (m *TaskModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens, m.Users, m.Sessions))
	auth.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID(), middleware.AllowPrivateIP()))
	{
		auth.POST("/tasks", m.Handler.Create)
		auth.GET("/tasks", m.Handler.List)
		auth.GET("/tasks/search", m.Handler.Search)
		auth.GET("/tasks/:id", m.Handler.Get)
		auth.PATCH("/tasks/:id", m.Handler.Update)
		auth.DELETE("/tasks/:id", m.Handler.Delete)
	}
}
