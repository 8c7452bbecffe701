// Package service provides business logic for commission tracking and claiming.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pj_commission_backend/internal/commissions/repository"
	"pj_commission_backend/internal/commissions/transport"
	"pj_commission_backend/platform/apperr"
	"pj_commission_backend/platform/logger"
)

const dateLayout = "2006-01-02"

// Service provides business logic for commissions.
type Service struct {
	repo repository.Repository
	log  *logger.Logger

	claims *ClaimService
	files  *AttachmentService
}

// New creates a new commissions service.
func New(repo repository.Repository, claims *ClaimService, files *AttachmentService, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		log:    log,
		claims: claims,
		files:  files,
	}
}

// Claims returns the claim synchronization sub-service.
func (s *Service) Claims() *ClaimService {
	return s.claims
}

// Files returns the attachment sub-service.
func (s *Service) Files() *AttachmentService {
	return s.files
}

// GetByID retrieves a commission by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.CommissionResponse, error) {
	commission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CommissionResponse{}, err
	}
	return toResponse(commission), nil
}

// List retrieves commissions with filters and pagination.
func (s *Service) List(ctx context.Context, req transport.ListCommissionsRequest) (transport.CommissionListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	params := repository.ListParams{
		Status: req.Status,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	}
	if req.StudentID != "" {
		studentID, err := uuid.Parse(req.StudentID)
		if err != nil {
			return transport.CommissionListResponse{}, apperr.BadRequest("invalid student ID")
		}
		params.StudentID = &studentID
	}
	if req.SchoolID != "" {
		schoolID, err := uuid.Parse(req.SchoolID)
		if err != nil {
			return transport.CommissionListResponse{}, apperr.BadRequest("invalid school ID")
		}
		params.SchoolID = &schoolID
	}
	if req.SalesProfileID != "" {
		profileID, err := uuid.Parse(req.SalesProfileID)
		if err != nil {
			return transport.CommissionListResponse{}, apperr.BadRequest("invalid sales profile ID")
		}
		params.SalesProfileID = &profileID
	}

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.CommissionListResponse{}, err
	}

	responses := make([]transport.CommissionResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toResponse(item))
	}
	return transport.CommissionListResponse{
		Items:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Create registers a new expected commission in pending status.
func (s *Service) Create(ctx context.Context, req transport.CreateCommissionRequest) (transport.CommissionResponse, error) {
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		return transport.CommissionResponse{}, apperr.BadRequest("invalid student ID")
	}
	schoolID, err := uuid.Parse(req.SchoolID)
	if err != nil {
		return transport.CommissionResponse{}, apperr.BadRequest("invalid school ID")
	}

	currency := req.Currency
	if currency == "" {
		currency = "NZD"
	}

	commission, err := s.repo.Create(ctx, repository.CreateParams{
		StudentID:   studentID,
		SchoolID:    schoolID,
		AmountCents: req.AmountCents,
		Currency:    currency,
	})
	if err != nil {
		return transport.CommissionResponse{}, err
	}

	s.log.Info("commission created", "commission_id", commission.ID, "student_id", studentID, "school_id", schoolID)
	return toResponse(commission), nil
}

// Update applies partial changes to a commission. The claimed status cannot
// be set here; it is owned by the claim endpoint.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateCommissionRequest) (transport.CommissionResponse, error) {
	commission, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:          id,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Status:      req.Status,
	})
	if err != nil {
		return transport.CommissionResponse{}, err
	}
	return toResponse(commission), nil
}

func toResponse(commission repository.Commission) transport.CommissionResponse {
	resp := transport.CommissionResponse{
		ID:                commission.ID.String(),
		StudentID:         commission.StudentID.String(),
		StudentName:       commission.StudentName,
		SalesProfileID:    commission.SalesProfileID.String(),
		SchoolID:          commission.SchoolID.String(),
		SchoolName:        commission.SchoolName,
		AmountCents:       commission.AmountCents,
		Currency:          commission.Currency,
		Status:            commission.Status,
		ZohoDealID:        commission.ZohoDealID,
		ZohoDealName:      commission.ZohoDealName,
		ZohoPreviousStage: commission.ZohoPreviousStage,
		SyncError:         commission.SyncError,
		CreatedAt:         commission.CreatedAt,
		UpdatedAt:         commission.UpdatedAt,
	}
	if commission.EnrollmentDate != nil {
		resp.EnrollmentDate = commission.EnrollmentDate.Format(dateLayout)
	}
	if commission.ClaimedAt != nil {
		resp.ClaimedAt = commission.ClaimedAt.Format(time.RFC3339)
	}
	if commission.ZohoSyncedAt != nil {
		resp.ZohoSyncedAt = commission.ZohoSyncedAt.Format(time.RFC3339)
	}
	return resp
}
