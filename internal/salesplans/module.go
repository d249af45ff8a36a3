// Package salesplans provides the sales plans domain module.
package salesplans

import (
	apphttp "sales_visits_backend/internal/http"
	"sales_visits_backend/internal/identity"
	"sales_visits_backend/internal/salesplans/handler"
	"sales_visits_backend/internal/salesplans/repository"
	"sales_visits_backend/internal/salesplans/service"
	"sales_visits_backend/platform/logger"
	"sales_visits_backend/platform/validator"
)

// Module represents the sales plans domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new sales plans module with all dependencies wired
func NewModule(db repository.DB, directory identity.Directory, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(db)
	svc := service.New(repo, directory, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "salesplans"
}

// RegisterRoutes registers the module's routes under /sales-plan
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	plans := ctx.Root.Group("/sales-plan")
	m.handler.RegisterRoutes(plans)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
