// Package schools provides the partner-school register bounded context module.
package schools

import (
	apphttp "pj_commission_backend/internal/http"
	"pj_commission_backend/internal/schools/handler"
	"pj_commission_backend/internal/schools/repository"
	"pj_commission_backend/internal/schools/service"
	"pj_commission_backend/platform/logger"
	"pj_commission_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the schools bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the schools module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "schools"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts school routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Read-only endpoints for authenticated staff
	ctx.Protected.GET("/schools", m.handler.List)
	ctx.Protected.GET("/schools/:id", m.handler.GetByID)

	// Admin-only mutations
	adminGroup := ctx.Admin.Group("/schools")
	adminGroup.POST("", m.handler.Create)
	adminGroup.PUT("/:id", m.handler.Update)
	adminGroup.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
