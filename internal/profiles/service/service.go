// Package service provides business logic for staff profile management.
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pj_commission_backend/internal/profiles/repository"
	"pj_commission_backend/internal/profiles/transport"
	"pj_commission_backend/platform/apperr"
	"pj_commission_backend/platform/logger"
	"pj_commission_backend/platform/phone"
)

// Service provides business logic for profiles.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new profiles service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetByID retrieves a profile by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.ProfileResponse, error) {
	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	return toResponse(profile), nil
}

// List retrieves profiles with search, filters, and pagination.
func (s *Service) List(ctx context.Context, req transport.ListProfilesRequest) (transport.ProfileListResponse, error) {
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

	items, total, err := s.repo.List(ctx, repository.ListParams{
		Search:   req.Search,
		Role:     req.Role,
		IsActive: req.IsActive,
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	})
	if err != nil {
		return transport.ProfileListResponse{}, err
	}

	responses := make([]transport.ProfileResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toResponse(item))
	}
	return transport.ProfileListResponse{
		Items:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Create creates a new staff profile with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, req transport.CreateProfileRequest) (transport.ProfileResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return transport.ProfileResponse{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	profile, err := s.repo.Create(ctx, repository.CreateParams{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        phone.NormalizeE164(req.Phone),
		Role:         req.Role,
		PasswordHash: string(hash),
	})
	if err != nil {
		return transport.ProfileResponse{}, err
	}

	s.log.Info("profile created", "profile_id", profile.ID, "role", profile.Role)
	return toResponse(profile), nil
}

// Update applies partial changes to a profile.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateProfileRequest) (transport.ProfileResponse, error) {
	var normalizedPhone *string
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		normalizedPhone = &normalized
	}

	profile, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:       id,
		FullName: req.FullName,
		Phone:    normalizedPhone,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	return toResponse(profile), nil
}

// EmailForProfile returns the notification address for a profile.
func (s *Service) EmailForProfile(ctx context.Context, id uuid.UUID) (string, string, error) {
	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	return profile.Email, profile.FullName, nil
}

func toResponse(profile repository.Profile) transport.ProfileResponse {
	return transport.ProfileResponse{
		ID:        profile.ID.String(),
		Email:     profile.Email,
		FullName:  profile.FullName,
		Phone:     profile.Phone,
		Role:      profile.Role,
		IsActive:  profile.IsActive,
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}
}
