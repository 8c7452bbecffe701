package activitylog

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "pj_commission_backend/internal/http"
	"pj_commission_backend/platform/httpkit"
	"pj_commission_backend/platform/logger"
)

// Module is the activity log bounded context module implementing http.Module.
type Module struct {
	repo *Repository
	log  *logger.Logger
}

// NewModule creates and initializes the activity log module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	return &Module{
		repo: NewRepository(pool),
		log:  log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "activitylog"
}

// Recorder returns the append-only interface for other modules.
func (m *Module) Recorder() Recorder {
	return m.repo
}

// RegisterRoutes mounts activity log routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/activity", m.list)
}

type listQuery struct {
	EntityType string `form:"entityType"`
	EntityID   string `form:"entityId"`
	ActorID    string `form:"actorId"`
	Page       int    `form:"page"`
	PageSize   int    `form:"pageSize"`
}

type listResponse struct {
	Items    []Entry `json:"items"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
}

// list retrieves audit records with filters.
// GET /api/v1/activity
func (m *Module) list(c *gin.Context) {
	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	page := query.Page
	pageSize := query.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}

	params := ListParams{
		EntityType: query.EntityType,
		Offset:     (page - 1) * pageSize,
		Limit:      pageSize,
	}
	if query.EntityID != "" {
		entityID, err := uuid.Parse(query.EntityID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid entity ID", nil)
			return
		}
		params.EntityID = &entityID
	}
	if query.ActorID != "" {
		actorID, err := uuid.Parse(query.ActorID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid actor ID", nil)
			return
		}
		params.ActorID = &actorID
	}

	entries, total, err := m.repo.List(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, listResponse{
		Items:    entries,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
