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

// UserModule wires account routes.
// Public: POST /api/users, POST /api/users/login, GET /api/users/:id/avatar
// Protected: logout, logoutAll, /users/me CRUD, avatar upload/delete
type UserModule struct {
	Handler  *handlers.UserHandler
	Tokens   *token.Manager
	Users    repository.UserRepository
	Sessions repository.SessionRepository
}

func NewUserModule(h *handlers.UserHandler, tokens *token.Manager, users repository.UserRepository, sessions repository.SessionRepository) *UserModule {
	return &UserModule{Handler: h, Tokens: tokens, Users: users, Sessions: sessions}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/users", registerLimiter, m.Handler.Register)
	rg.POST("/users/login", loginLimiter, m.Handler.Login)
	rg.GET("/users/:id/avatar", m.Handler.GetAvatar)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens, m.Users, m.Sessions))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), middleware.AllowPrivateIP()))
	{
		auth.POST("/users/logout", m.Handler.Logout)
		auth.POST("/users/logoutAll", m.Handler.LogoutAll)
		auth.GET("/users/me", m.Handler.GetMe)
		auth.PATCH("/users/me", m.Handler.UpdateMe)
		auth.DELETE("/users/me", m.Handler.DeleteMe)
		auth.POST("/users/me/avatar", m.Handler.UploadAvatar)
		auth.DELETE("/users/me/avatar", m.Handler.DeleteAvatar)
	}
}
