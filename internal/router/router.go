package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/gamyam/crm-tasks/api/handler"
)

type Handlers struct {
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Task routes. Identity strings arrive in the payloads and are trusted
	// as given; there is no auth layer.
	r.POST("/api/v1/tasks", handlers.Task.CreateTask)
	r.GET("/api/v1/tasks", handlers.Task.GetTasks)
	r.POST("/api/v1/tasks/filter", handlers.Task.FilterTasks)
	r.GET("/api/v1/tasks/{id}", handlers.Task.GetTask)
	r.PUT("/api/v1/tasks/{id}", handlers.Task.UpdateTask)
	r.PATCH("/api/v1/tasks/{id}/status", handlers.Task.UpdateTaskStatus)
	r.DELETE("/api/v1/tasks/{id}", handlers.Task.DeleteTask)

	return r
}
