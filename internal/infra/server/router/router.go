// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/recurrent-ledger/backend/internal/integration/entrypoint/controller"
	"github.com/recurrent-ledger/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine              *gin.Engine
	healthController    *controller.HealthController
	recurringController *controller.RecurringController
	entriesController   *controller.EntriesController
	ownerMiddleware     *middleware.OwnerMiddleware
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	recurringController *controller.RecurringController,
	entriesController *controller.EntriesController,
	ownerMiddleware *middleware.OwnerMiddleware,
) *Router {
	return &Router{
		healthController:    healthController,
		recurringController: recurringController,
		entriesController:   entriesController,
		ownerMiddleware:     ownerMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()

	// Setup routes
	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	// API v1 group
	v1 := r.engine.Group("/api/v1")
	{
		// Recurring series routes (require owner identity)
		if r.recurringController != nil && r.ownerMiddleware != nil {
			recurring := v1.Group("/recurring")
			recurring.Use(r.ownerMiddleware.Identify())
			{
				recurring.GET("", r.recurringController.List)
				recurring.POST("", r.recurringController.Create)
				recurring.PATCH("/:id", r.recurringController.Edit)
				recurring.DELETE("/:id", r.recurringController.Delete)
				recurring.POST("/generate", r.recurringController.Generate)
			}
		}

		// Effective-view routes (require owner identity)
		if r.entriesController != nil && r.ownerMiddleware != nil {
			entries := v1.Group("/entries")
			entries.Use(r.ownerMiddleware.Identify())
			{
				entries.GET("/effective", r.entriesController.GetEffectiveView)
			}
		}
	}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
