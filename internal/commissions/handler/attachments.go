package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pj_commission_backend/internal/commissions/transport"
	"pj_commission_backend/platform/httpkit"
)

const msgInvalidAttachmentID = "invalid attachment ID"

// CreateAttachment registers an attachment and returns a presigned upload URL.
// POST /api/v1/commissions/:id/attachments
func (h *Handler) CreateAttachment(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.CreateAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Files().CreateUploadURL(c.Request.Context(), id, identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// ListAttachments retrieves attachment metadata for a commission.
// GET /api/v1/commissions/:id/attachments
func (h *Handler) ListAttachments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.Files().List(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DownloadAttachment returns a short-lived presigned download URL.
// GET /api/v1/commissions/:id/attachments/:attachmentId/download
func (h *Handler) DownloadAttachment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	attachmentID, err := uuid.Parse(c.Param("attachmentId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidAttachmentID, nil)
		return
	}

	result, err := h.svc.Files().DownloadURL(c.Request.Context(), id, attachmentID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteAttachment removes an attachment.
// DELETE /api/v1/commissions/:id/attachments/:attachmentId
func (h *Handler) DeleteAttachment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	attachmentID, err := uuid.Parse(c.Param("attachmentId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidAttachmentID, nil)
		return
	}

	if err := h.svc.Files().Delete(c.Request.Context(), id, attachmentID); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}
