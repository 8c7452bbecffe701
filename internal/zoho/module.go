// Package zoho wires the CRM reconciliation core and its admin endpoints.
package zoho

import (
	"net/http"

	apphttp "pj_commission_backend/internal/http"
	"pj_commission_backend/internal/zoho/repository"
	"pj_commission_backend/platform/config"
	"pj_commission_backend/platform/httpkit"
	"pj_commission_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the Zoho bounded context module implementing http.Module.
type Module struct {
	repo   *repository.Repo
	tokens *TokenCache
	sync   *Synchronizer
	log    *logger.Logger
}

// NewModule creates and initializes the Zoho module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.ZohoConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	client := NewClient(cfg.GetZohoAPIBaseURL(), cfg.GetZohoAccountsURL(), cfg.GetZohoClientID(), cfg.GetZohoClientSecret())
	tokens := NewTokenCache(repo, client)
	sync := NewSynchronizer(tokens, NewResolver(client), NewMatcher(client), client, log)

	return &Module{
		repo:   repo,
		tokens: tokens,
		sync:   sync,
		log:    log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "zoho"
}

// Synchronizer returns the claim synchronizer for use by the commissions module.
func (m *Module) Synchronizer() *Synchronizer {
	return m.sync
}

// RegisterRoutes mounts the CRM connection admin endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Admin.Group("/zoho")
	group.GET("/status", m.status)
	group.PUT("/token", m.storeToken)
	group.DELETE("/token", m.disconnect)
}

// status reports whether a CRM connection exists and when the cached access
// token expires. GET /api/v1/admin/zoho/status
func (m *Module) status(c *gin.Context) {
	token, found, err := m.repo.Get(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	if !found || token.RefreshToken == "" {
		httpkit.OK(c, gin.H{"connected": false})
		return
	}

	httpkit.OK(c, gin.H{
		"connected":      true,
		"tokenExpiresAt": token.ExpiresAt,
		"updatedAt":      token.UpdatedAt,
	})
}

type storeTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// storeToken saves a refresh token obtained from a completed
// authorization-code exchange. PUT /api/v1/admin/zoho/token
func (m *Module) storeToken(c *gin.Context) {
	var req storeTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	if err := m.repo.Upsert(c.Request.Context(), req.RefreshToken); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	m.log.Info("zoho refresh token stored")
	httpkit.OK(c, gin.H{"connected": true})
}

// disconnect removes the stored CRM connection. DELETE /api/v1/admin/zoho/token
func (m *Module) disconnect(c *gin.Context) {
	if err := m.repo.Delete(c.Request.Context()); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	m.log.Info("zoho connection removed")
	httpkit.OK(c, gin.H{"connected": false})
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
