// Package service provides business logic for student management.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"pj_commission_backend/internal/students/repository"
	"pj_commission_backend/internal/students/transport"
	"pj_commission_backend/platform/apperr"
	"pj_commission_backend/platform/logger"
	"pj_commission_backend/platform/phone"
)

const enrollmentDateLayout = "2006-01-02"

// Service provides business logic for students.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new students service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetByID retrieves a student by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.StudentResponse, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.StudentResponse{}, err
	}
	return toResponse(student), nil
}

// List retrieves students with search, filters, and pagination.
func (s *Service) List(ctx context.Context, req transport.ListStudentsRequest) (transport.StudentListResponse, error) {
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
		Search: req.Search,
		Status: req.Status,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	}
	if req.SchoolID != "" {
		schoolID, err := uuid.Parse(req.SchoolID)
		if err != nil {
			return transport.StudentListResponse{}, apperr.BadRequest("invalid school ID")
		}
		params.SchoolID = &schoolID
	}
	if req.SalesProfileID != "" {
		profileID, err := uuid.Parse(req.SalesProfileID)
		if err != nil {
			return transport.StudentListResponse{}, apperr.BadRequest("invalid sales profile ID")
		}
		params.SalesProfileID = &profileID
	}

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.StudentListResponse{}, err
	}

	responses := make([]transport.StudentResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toResponse(item))
	}
	return transport.StudentListResponse{
		Items:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Create registers a new student owned by the given sales profile.
func (s *Service) Create(ctx context.Context, salesProfileID uuid.UUID, req transport.CreateStudentRequest) (transport.StudentResponse, error) {
	params := repository.CreateParams{
		FullName:       strings.TrimSpace(req.FullName),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          phone.NormalizeE164(req.Phone),
		SalesProfileID: salesProfileID,
		Status:         req.Status,
		Notes:          req.Notes,
	}
	if params.Status == "" {
		params.Status = "prospect"
	}
	if req.SchoolID != "" {
		schoolID, err := uuid.Parse(req.SchoolID)
		if err != nil {
			return transport.StudentResponse{}, apperr.BadRequest("invalid school ID")
		}
		params.SchoolID = &schoolID
	}
	if req.EnrollmentDate != "" {
		date, err := time.Parse(enrollmentDateLayout, req.EnrollmentDate)
		if err != nil {
			return transport.StudentResponse{}, apperr.BadRequest("invalid enrollment date, expected YYYY-MM-DD")
		}
		params.EnrollmentDate = &date
	}

	student, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.StudentResponse{}, err
	}

	s.log.Info("student created", "student_id", student.ID, "sales_profile_id", salesProfileID)
	return toResponse(student), nil
}

// Update applies partial changes to a student.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateStudentRequest) (transport.StudentResponse, error) {
	params := repository.UpdateParams{
		ID:       id,
		FullName: req.FullName,
		Email:    req.Email,
		Status:   req.Status,
		Notes:    req.Notes,
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		params.Phone = &normalized
	}
	if req.SchoolID != nil {
		schoolID, err := uuid.Parse(*req.SchoolID)
		if err != nil {
			return transport.StudentResponse{}, apperr.BadRequest("invalid school ID")
		}
		params.SchoolID = &schoolID
	}
	if req.EnrollmentDate != nil {
		date, err := time.Parse(enrollmentDateLayout, *req.EnrollmentDate)
		if err != nil {
			return transport.StudentResponse{}, apperr.BadRequest("invalid enrollment date, expected YYYY-MM-DD")
		}
		params.EnrollmentDate = &date
	}

	student, err := s.repo.Update(ctx, params)
	if err != nil {
		return transport.StudentResponse{}, err
	}
	return toResponse(student), nil
}

// Delete removes a student.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func toResponse(student repository.Student) transport.StudentResponse {
	resp := transport.StudentResponse{
		ID:             student.ID.String(),
		FullName:       student.FullName,
		Email:          student.Email,
		Phone:          student.Phone,
		SchoolName:     student.SchoolName,
		SalesProfileID: student.SalesProfileID.String(),
		Status:         student.Status,
		Notes:          student.Notes,
		CreatedAt:      student.CreatedAt,
		UpdatedAt:      student.UpdatedAt,
	}
	if student.SchoolID != nil {
		resp.SchoolID = student.SchoolID.String()
	}
	if student.EnrollmentDate != nil {
		resp.EnrollmentDate = student.EnrollmentDate.Format(enrollmentDateLayout)
	}
	return resp
}
