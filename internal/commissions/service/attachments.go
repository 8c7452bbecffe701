package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pj_commission_backend/internal/adapters/storage"
	"pj_commission_backend/internal/commissions/repository"
	"pj_commission_backend/internal/commissions/transport"
	"pj_commission_backend/platform/apperr"
	"pj_commission_backend/platform/logger"
)

// AttachmentService manages commission paperwork in the blob store. File
// bytes move between the client and the store via presigned URLs; only
// metadata touches the database.
type AttachmentService struct {
	repo   repository.Repository
	store  storage.StorageService
	bucket string
	log    *logger.Logger
}

// NewAttachmentService creates a new attachment service. The store may be
// nil when object storage is not configured.
func NewAttachmentService(repo repository.Repository, store storage.StorageService, bucket string, log *logger.Logger) *AttachmentService {
	return &AttachmentService{
		repo:   repo,
		store:  store,
		bucket: bucket,
		log:    log,
	}
}

// CreateUploadURL registers an attachment and returns a presigned PUT URL
// for the client to upload the file bytes to.
func (s *AttachmentService) CreateUploadURL(ctx context.Context, commissionID uuid.UUID, uploadedBy uuid.UUID, req transport.CreateAttachmentRequest) (transport.AttachmentUploadResponse, error) {
	if s.store == nil {
		return transport.AttachmentUploadResponse{}, apperr.Unavailable("attachment storage is not configured")
	}

	// Commission must exist before we hand out an upload slot.
	if _, err := s.repo.GetByID(ctx, commissionID); err != nil {
		return transport.AttachmentUploadResponse{}, err
	}

	presigned, err := s.store.GenerateUploadURL(ctx, s.bucket, commissionID.String(), req.FileName, req.ContentType, req.SizeBytes)
	if err != nil {
		return transport.AttachmentUploadResponse{}, apperr.Wrap(apperr.KindBadRequest, "could not prepare upload", err)
	}

	attachment, err := s.repo.AddAttachment(ctx, repository.AddAttachmentParams{
		CommissionID: commissionID,
		FileKey:      presigned.FileKey,
		FileName:     req.FileName,
		ContentType:  req.ContentType,
		SizeBytes:    req.SizeBytes,
		UploadedBy:   &uploadedBy,
	})
	if err != nil {
		return transport.AttachmentUploadResponse{}, err
	}

	return transport.AttachmentUploadResponse{
		Attachment: toAttachmentResponse(attachment),
		UploadURL:  presigned.URL,
		ExpiresAt:  presigned.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// List retrieves attachment metadata for a commission.
func (s *AttachmentService) List(ctx context.Context, commissionID uuid.UUID) ([]transport.AttachmentResponse, error) {
	if _, err := s.repo.GetByID(ctx, commissionID); err != nil {
		return nil, err
	}

	attachments, err := s.repo.ListAttachments(ctx, commissionID)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.AttachmentResponse, 0, len(attachments))
	for _, attachment := range attachments {
		responses = append(responses, toAttachmentResponse(attachment))
	}
	return responses, nil
}

// DownloadURL returns a short-lived presigned GET URL for an attachment.
func (s *AttachmentService) DownloadURL(ctx context.Context, commissionID, attachmentID uuid.UUID) (transport.AttachmentDownloadResponse, error) {
	if s.store == nil {
		return transport.AttachmentDownloadResponse{}, apperr.Unavailable("attachment storage is not configured")
	}

	attachment, err := s.repo.GetAttachment(ctx, commissionID, attachmentID)
	if err != nil {
		return transport.AttachmentDownloadResponse{}, err
	}

	presigned, err := s.store.GenerateDownloadURL(ctx, s.bucket, attachment.FileKey)
	if err != nil {
		return transport.AttachmentDownloadResponse{}, apperr.Wrap(apperr.KindInternal, "could not prepare download", err)
	}

	return transport.AttachmentDownloadResponse{
		DownloadURL: presigned.URL,
		ExpiresAt:   presigned.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// Delete removes an attachment from the store and the database.
func (s *AttachmentService) Delete(ctx context.Context, commissionID, attachmentID uuid.UUID) error {
	attachment, err := s.repo.GetAttachment(ctx, commissionID, attachmentID)
	if err != nil {
		return err
	}

	if s.store != nil {
		if err := s.store.DeleteObject(ctx, s.bucket, attachment.FileKey); err != nil {
			// Orphaned objects are preferable to dangling metadata rows.
			s.log.Error("failed to delete attachment object", "file_key", attachment.FileKey, "error", err)
		}
	}

	return s.repo.DeleteAttachment(ctx, commissionID, attachmentID)
}


func toAttachmentResponse(attachment repository.Attachment) transport.AttachmentResponse {
	resp := transport.AttachmentResponse{
		ID:           attachment.ID.String(),
		CommissionID: attachment.CommissionID.String(),
		FileName:     attachment.FileName,
		ContentType:  attachment.ContentType,
		SizeBytes:    attachment.SizeBytes,
		CreatedAt:    attachment.CreatedAt,
	}
	if attachment.UploadedBy != nil {
		resp.UploadedBy = attachment.UploadedBy.String()
	}
	return resp
}
