// Package profiles provides the staff profile bounded context module.
package profiles

import (
	apphttp "pj_commission_backend/internal/http"
	"pj_commission_backend/internal/profiles/handler"
	"pj_commission_backend/internal/profiles/repository"
	"pj_commission_backend/internal/profiles/service"
	"pj_commission_backend/platform/logger"
	"pj_commission_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the profiles bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the profiles module with all its dependencies.
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
	return "profiles"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts profile routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Authenticated staff can see themselves and list colleagues (owner dropdowns)
	ctx.Protected.GET("/profiles/me", m.handler.Me)
	ctx.Protected.GET("/profiles", m.handler.List)

	// Admin-only user management
	adminGroup := ctx.Admin.Group("/profiles")
	adminGroup.POST("", m.handler.Create)
	adminGroup.GET("/:id", m.handler.GetByID)
	adminGroup.PUT("/:id", m.handler.Update)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
