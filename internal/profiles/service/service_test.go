package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pj_commission_backend/internal/profiles/repository"
	"pj_commission_backend/internal/profiles/transport"
	"pj_commission_backend/platform/logger"
)

type fakeRepo struct {
	repository.Repository

	created *repository.CreateParams
}

func (f *fakeRepo) Create(ctx context.Context, params repository.CreateParams) (repository.Profile, error) {
	f.created = &params
	return repository.Profile{
		ID:           uuid.New(),
		Email:        params.Email,
		FullName:     params.FullName,
		Phone:        params.Phone,
		Role:         params.Role,
		PasswordHash: params.PasswordHash,
		IsActive:     true,
	}, nil
}

func TestCreateHashesPassword(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, logger.New("test"))

	resp, err := svc.Create(context.Background(), transport.CreateProfileRequest{
		Email:    "  Sam.Agent@PJ.Example ",
		FullName: " Sam Agent ",
		Role:     "sales",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if repo.created.PasswordHash == "correct horse battery" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("correct horse battery")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if repo.created.Email != "sam.agent@pj.example" {
		t.Fatalf("email not normalized: %q", repo.created.Email)
	}
	if repo.created.FullName != "Sam Agent" {
		t.Fatalf("name not trimmed: %q", repo.created.FullName)
	}

	if resp.ID == "" || resp.Email != "sam.agent@pj.example" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
