// Package students provides the student register bounded context module.
package students

import (
	apphttp "pj_commission_backend/internal/http"
	"pj_commission_backend/internal/students/handler"
	"pj_commission_backend/internal/students/repository"
	"pj_commission_backend/internal/students/service"
	"pj_commission_backend/platform/logger"
	"pj_commission_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the students bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the students module with all its dependencies.
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
	return "students"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the data access layer for cross-module reads.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts student routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/students")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.GetByID)
	group.POST("", m.handler.Create)
	group.PUT("/:id", m.handler.Update)

	// Hard deletion is admin-only
	ctx.Admin.DELETE("/students/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
