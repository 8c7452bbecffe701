// Package service provides business logic for the partner-school register.
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"pj_commission_backend/internal/schools/repository"
	"pj_commission_backend/internal/schools/transport"
	"pj_commission_backend/platform/logger"
)

// Service provides business logic for schools.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new schools service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetByID retrieves a school by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.SchoolResponse, error) {
	school, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.SchoolResponse{}, err
	}
	return toResponse(school), nil
}

// List retrieves schools with search, filters, and pagination.
func (s *Service) List(ctx context.Context, req transport.ListSchoolsRequest) (transport.SchoolListResponse, error) {
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
		Search:   req.Search,
		IsActive: req.IsActive,
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	}

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.SchoolListResponse{}, err
	}

	return toListResponse(items, total, page, pageSize), nil
}

// Create creates a new school.
func (s *Service) Create(ctx context.Context, req transport.CreateSchoolRequest) (transport.SchoolResponse, error) {
	school, err := s.repo.Create(ctx, repository.CreateParams{
		Name:              strings.TrimSpace(req.Name),
		Country:           strings.TrimSpace(req.Country),
		ContactEmail:      strings.TrimSpace(req.ContactEmail),
		CommissionRateBps: req.CommissionRateBps,
	})
	if err != nil {
		return transport.SchoolResponse{}, err
	}

	s.log.Info("school created", "school_id", school.ID, "name", school.Name)
	return toResponse(school), nil
}

// Update applies partial changes to a school.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateSchoolRequest) (transport.SchoolResponse, error) {
	school, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:                id,
		Name:              req.Name,
		Country:           req.Country,
		ContactEmail:      req.ContactEmail,
		CommissionRateBps: req.CommissionRateBps,
		IsActive:          req.IsActive,
	})
	if err != nil {
		return transport.SchoolResponse{}, err
	}
	return toResponse(school), nil
}

// Delete removes a school.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("school deleted", "school_id", id)
	return nil
}

func toResponse(school repository.School) transport.SchoolResponse {
	return transport.SchoolResponse{
		ID:                school.ID.String(),
		Name:              school.Name,
		Country:           school.Country,
		ContactEmail:      school.ContactEmail,
		CommissionRateBps: school.CommissionRateBps,
		IsActive:          school.IsActive,
		CreatedAt:         school.CreatedAt,
		UpdatedAt:         school.UpdatedAt,
	}
}

func toListResponse(items []repository.School, total, page, pageSize int) transport.SchoolListResponse {
	responses := make([]transport.SchoolResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toResponse(item))
	}
	return transport.SchoolListResponse{
		Items:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}
