// Package commissions provides the commission tracking and claiming bounded context.
package commissions

import (
	"pj_commission_backend/internal/activitylog"
	"pj_commission_backend/internal/adapters/storage"
	"pj_commission_backend/internal/commissions/handler"
	"pj_commission_backend/internal/commissions/repository"
	"pj_commission_backend/internal/commissions/service"
	apphttp "pj_commission_backend/internal/http"
	"pj_commission_backend/internal/scheduler"
	"pj_commission_backend/platform/logger"
	"pj_commission_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps carries the cross-module collaborators of the commissions module.
// Store and Notifier may be nil when their backing services are not
// configured; the affected operations degrade gracefully.
type Deps struct {
	Syncer   service.ClaimSyncer
	Agents   service.AgentDirectory
	Recorder activitylog.Recorder
	Notifier scheduler.ClaimNotifier
	Store    storage.StorageService
	Bucket   string
}

// Module is the commissions bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the commissions module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger, deps Deps) *Module {
	repo := repository.New(pool)
	claims := service.NewClaimService(repo, deps.Syncer, deps.Agents, deps.Recorder, deps.Notifier, log)
	files := service.NewAttachmentService(repo, deps.Store, deps.Bucket, log)
	svc := service.New(repo, claims, files, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "commissions"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts commission routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/commissions")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.GetByID)
	group.POST("", m.handler.Create)
	group.PUT("/:id", m.handler.Update)
	group.POST("/:id/claim", m.handler.Claim)

	group.GET("/:id/attachments", m.handler.ListAttachments)
	group.POST("/:id/attachments", m.handler.CreateAttachment)
	group.GET("/:id/attachments/:attachmentId/download", m.handler.DownloadAttachment)
	group.DELETE("/:id/attachments/:attachmentId", m.handler.DeleteAttachment)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
