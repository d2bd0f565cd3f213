package router

import (
	"github.com/taskvault/taskvault/internal/application"
	"github.com/taskvault/taskvault/internal/container"
	pginfra "github.com/taskvault/taskvault/internal/infrastructure/postgres"
	handlers "github.com/taskvault/taskvault/internal/interface/http"
	"github.com/taskvault/taskvault/internal/router/modules"
	"github.com/taskvault/taskvault/pkg/avatar"
)

// InitModules wires repositories, services, and handlers from the container
// singletons and registers every feature module. Called once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	userRepo := pginfra.NewUserRepository(pool)
	sessionRepo := pginfra.NewSessionRepository(pool)
	taskRepo := pginfra.NewTaskRepository(pool)

	taskSvc := application.NewTaskService(
		taskRepo,
		container.GetLogger(),
		container.GetES(),
		cfg.ESTasksIndex,
	)
	userSvc := application.NewUserService(
		userRepo,
		sessionRepo,
		container.GetTokens(),
		container.GetRabbitPub(),
		container.GetLogger(),
		avatar.PNGProcessor{},
		container.GetGCS(),
		cfg.GCSBucket,
	)

	userHandler := handlers.NewUserHandler(userSvc, taskSvc, container.GetLogger(), cfg.AvatarMaxBytes)
	taskHandler := handlers.NewTaskHandler(taskSvc, container.GetLogger())

	r.Add(modules.NewUserModule(userHandler, container.GetTokens(), userRepo, sessionRepo))
	r.Add(modules.NewTaskModule(taskHandler, container.GetTokens(), userRepo, sessionRepo))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
