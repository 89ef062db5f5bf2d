// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"fitment_chat_backend/platform/config"
	"fitment_chat_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Module is a self-contained bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(r gin.IRouter)
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration.
	Config config.HTTPConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness checks (DB ping). May be nil when the
	// catalog store is not configured.
	Health HealthChecker
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
