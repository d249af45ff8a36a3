// Package visits provides the scheduled visits domain module.
package visits

import (
	apphttp "sales_visits_backend/internal/http"
	"sales_visits_backend/internal/visits/handler"
	"sales_visits_backend/internal/visits/repository"
	"sales_visits_backend/internal/visits/service"
	"sales_visits_backend/platform/config"
	"sales_visits_backend/platform/logger"
)

// Module represents the scheduled visits domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new scheduled visits module with all dependencies wired
func NewModule(db repository.DB, directory service.IdentityChecker, cfg config.UploadConfig, log *logger.Logger) *Module {
	repo := repository.New(db)
	svc := service.New(repo, directory, log)
	h := handler.New(svc, cfg.GetMaxUploadSize())

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "visits"
}

// RegisterRoutes registers the module's routes under /sellers/:seller_id
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Root)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
