package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"pj_commission_backend/internal/students/repository"
	"pj_commission_backend/internal/students/transport"
	"pj_commission_backend/platform/apperr"
	"pj_commission_backend/platform/logger"
)

type fakeRepo struct {
	repository.Repository

	created *repository.CreateParams
	updated *repository.UpdateParams
	listed  *repository.ListParams
}

func (f *fakeRepo) Create(ctx context.Context, params repository.CreateParams) (repository.Student, error) {
	f.created = &params
	return repository.Student{
		ID:             uuid.New(),
		FullName:       params.FullName,
		Email:          params.Email,
		Phone:          params.Phone,
		SchoolID:       params.SchoolID,
		SalesProfileID: params.SalesProfileID,
		EnrollmentDate: params.EnrollmentDate,
		Status:         params.Status,
		Notes:          params.Notes,
	}, nil
}

func (f *fakeRepo) Update(ctx context.Context, params repository.UpdateParams) (repository.Student, error) {
	f.updated = &params
	return repository.Student{ID: params.ID, SalesProfileID: uuid.New(), Status: "enrolled"}, nil
}

func (f *fakeRepo) List(ctx context.Context, params repository.ListParams) ([]repository.Student, int, error) {
	f.listed = &params
	return nil, 0, nil
}

func TestCreateNormalizesInput(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, logger.New("test"))
	owner := uuid.New()

	resp, err := svc.Create(context.Background(), owner, transport.CreateStudentRequest{
		FullName:       "  Li Wei  ",
		Email:          " Li.Wei@Example.COM ",
		Phone:          "021 234 5678",
		EnrollmentDate: "2024-03-01",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if repo.created.FullName != "Li Wei" {
		t.Fatalf("name not trimmed: %q", repo.created.FullName)
	}
	if repo.created.Email != "li.wei@example.com" {
		t.Fatalf("email not normalized: %q", repo.created.Email)
	}
	if repo.created.Phone != "+64212345678" {
		t.Fatalf("phone not normalized to E.164: %q", repo.created.Phone)
	}
	if repo.created.Status != "prospect" {
		t.Fatalf("expected default prospect status, got %q", repo.created.Status)
	}
	if repo.created.EnrollmentDate == nil || repo.created.EnrollmentDate.Format("2006-01-02") != "2024-03-01" {
		t.Fatalf("enrollment date not parsed: %v", repo.created.EnrollmentDate)
	}
	if repo.created.SalesProfileID != owner {
		t.Fatal("student not assigned to the creating profile")
	}
	if resp.EnrollmentDate != "2024-03-01" {
		t.Fatalf("response enrollment date %q", resp.EnrollmentDate)
	}
}

func TestCreateRejectsBadEnrollmentDate(t *testing.T) {
	svc := New(&fakeRepo{}, logger.New("test"))

	_, err := svc.Create(context.Background(), uuid.New(), transport.CreateStudentRequest{
		FullName:       "Li Wei",
		EnrollmentDate: "01/03/2024",
	})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestCreateRejectsBadSchoolID(t *testing.T) {
	svc := New(&fakeRepo{}, logger.New("test"))

	_, err := svc.Create(context.Background(), uuid.New(), transport.CreateStudentRequest{
		FullName: "Li Wei",
		SchoolID: "not-a-uuid",
	})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestListClampsPagination(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, logger.New("test"))

	resp, err := svc.List(context.Background(), transport.ListStudentsRequest{Page: -3, PageSize: 900})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if resp.Page != 1 || resp.PageSize != 100 {
		t.Fatalf("pagination not clamped: page=%d size=%d", resp.Page, resp.PageSize)
	}
	if repo.listed.Offset != 0 || repo.listed.Limit != 100 {
		t.Fatalf("repo params offset=%d limit=%d", repo.listed.Offset, repo.listed.Limit)
	}
}
