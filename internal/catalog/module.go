// Package catalog provides the wheel/vehicle catalog bounded context.
package catalog

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitment_chat_backend/internal/catalog/handler"
	"fitment_chat_backend/internal/catalog/repository"
	"fitment_chat_backend/internal/catalog/service"
	"fitment_chat_backend/platform/config"
	"fitment_chat_backend/platform/logger"
	"fitment_chat_backend/platform/validator"
)

// Module is the catalog bounded context.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the catalog module.
func NewModule(pool *pgxpool.Pool, cfg config.DatabaseConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, repo, cfg, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for use by the chat module.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts catalog and diagnostics routes.
// The diagnostics paths mirror the legacy service and are kept stable for
// the operators that script against them.
func (m *Module) RegisterRoutes(r gin.IRouter) {
	r.POST("/fitment", m.handler.Fitment)
	r.GET("/fitment-debug", m.handler.FitmentDebug)

	r.GET("/health-db", m.handler.HealthDB)
	r.GET("/db-tables", m.handler.DBTables)
	r.GET("/debug-tables", m.handler.DebugTables)
	r.GET("/db-applications-sample", m.handler.DBApplicationsSample)
	r.GET("/tcp-check", m.handler.TCPCheck)
}
