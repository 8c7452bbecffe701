package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"pj_commission_backend/internal/activitylog"
	"pj_commission_backend/internal/commissions/repository"
	"pj_commission_backend/internal/scheduler"
	"pj_commission_backend/internal/zoho"
	"pj_commission_backend/platform/apperr"
	"pj_commission_backend/platform/logger"
)

type fakeRepo struct {
	repository.Repository

	commission repository.Commission
	getErr     error

	recorded *repository.ClaimOutcomeParams
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Commission, error) {
	if f.getErr != nil {
		return repository.Commission{}, f.getErr
	}
	return f.commission, nil
}

func (f *fakeRepo) RecordClaimOutcome(ctx context.Context, params repository.ClaimOutcomeParams) (repository.Commission, error) {
	f.recorded = &params
	updated := f.commission
	if params.Success {
		updated.Status = repository.StatusClaimed
		updated.ZohoDealID = params.DealID
		updated.ZohoDealName = params.DealName
		updated.ZohoPreviousStage = params.PreviousStage
	} else {
		updated.SyncError = params.SyncError
	}
	return updated, nil
}

type fakeSyncer struct {
	result zoho.Result

	calls         int
	gotStudent    string
	gotSchool     string
	gotEnrollment string
}

func (f *fakeSyncer) SyncClaim(ctx context.Context, studentName, schoolName, enrollmentDate string) zoho.Result {
	f.calls++
	f.gotStudent = studentName
	f.gotSchool = schoolName
	f.gotEnrollment = enrollmentDate
	return f.result
}

type fakeRecorder struct {
	entries []activitylog.AppendParams
}

func (f *fakeRecorder) Append(ctx context.Context, params activitylog.AppendParams) error {
	f.entries = append(f.entries, params)
	return nil
}

type fakeNotifier struct {
	payloads []scheduler.ClaimNotificationPayload
}

func (f *fakeNotifier) EnqueueClaimNotification(ctx context.Context, payload scheduler.ClaimNotificationPayload) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

type fakeAgents struct {
	email string
	name  string
}

func (f *fakeAgents) EmailForProfile(ctx context.Context, id uuid.UUID) (string, string, error) {
	return f.email, f.name, nil
}

func pendingCommission() repository.Commission {
	enrollment := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return repository.Commission{
		ID:             uuid.New(),
		StudentID:      uuid.New(),
		StudentName:    "Li Wei",
		EnrollmentDate: &enrollment,
		SalesProfileID: uuid.New(),
		SchoolID:       uuid.New(),
		SchoolName:     "Auckland Institute",
		AmountCents:    150000,
		Currency:       "NZD",
		Status:         repository.StatusPending,
	}
}

func newClaimServiceForTest(repo *fakeRepo, syncer *fakeSyncer, recorder *fakeRecorder, notifier *fakeNotifier) *ClaimService {
	return NewClaimService(repo, syncer, &fakeAgents{email: "agent@pj.example", name: "Sam Agent"}, recorder, notifier, logger.New("test"))
}

func TestClaimSuccess(t *testing.T) {
	repo := &fakeRepo{commission: pendingCommission()}
	syncer := &fakeSyncer{result: zoho.Result{
		Success:       true,
		DealID:        "D1",
		DealName:      "Li Wei - Auckland Institute",
		PreviousStage: "Negotiation",
	}}
	recorder := &fakeRecorder{}
	notifier := &fakeNotifier{}
	svc := newClaimServiceForTest(repo, syncer, recorder, notifier)

	resp, err := svc.Claim(context.Background(), uuid.New(), repo.commission.ID)
	if err != nil {
		t.Fatalf("Claim returned error: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got error %q", resp.Error)
	}
	if resp.DealID != "D1" || resp.PreviousStage != "Negotiation" {
		t.Fatalf("unexpected result: %+v", resp)
	}
	if resp.Commission.Status != repository.StatusClaimed {
		t.Fatalf("expected claimed status, got %q", resp.Commission.Status)
	}

	if syncer.gotStudent != "Li Wei" || syncer.gotSchool != "Auckland Institute" {
		t.Fatalf("syncer got student=%q school=%q", syncer.gotStudent, syncer.gotSchool)
	}
	if syncer.gotEnrollment != "2024-03-01" {
		t.Fatalf("syncer got enrollment %q", syncer.gotEnrollment)
	}

	if repo.recorded == nil || !repo.recorded.Success || repo.recorded.DealID != "D1" {
		t.Fatalf("outcome not persisted: %+v", repo.recorded)
	}
	if len(recorder.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(recorder.entries))
	}
	if recorder.entries[0].Action != "commission.claim" {
		t.Fatalf("unexpected audit action %q", recorder.entries[0].Action)
	}
	if len(notifier.payloads) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.payloads))
	}
	if notifier.payloads[0].AgentEmail != "agent@pj.example" || !notifier.payloads[0].Success {
		t.Fatalf("unexpected notification payload: %+v", notifier.payloads[0])
	}
}

func TestClaimSyncFailureStaysPending(t *testing.T) {
	repo := &fakeRepo{commission: pendingCommission()}
	syncer := &fakeSyncer{result: zoho.Result{
		Success: false,
		Error:   `No contact found for student="Li Wei" (tried variants: Li Wei, Wei Li, LI Wei, WEI Li)`,
	}}
	recorder := &fakeRecorder{}
	notifier := &fakeNotifier{}
	svc := newClaimServiceForTest(repo, syncer, recorder, notifier)

	resp, err := svc.Claim(context.Background(), uuid.New(), repo.commission.ID)
	if err != nil {
		t.Fatalf("sync failure must not surface as error, got %v", err)
	}
	if resp.Success {
		t.Fatal("expected failed result")
	}
	if resp.Commission.Status != repository.StatusPending {
		t.Fatalf("commission must stay pending, got %q", resp.Commission.Status)
	}
	if repo.recorded == nil || repo.recorded.Success || repo.recorded.SyncError == "" {
		t.Fatalf("failure outcome not persisted: %+v", repo.recorded)
	}
	if len(notifier.payloads) != 1 || notifier.payloads[0].Success {
		t.Fatalf("expected failure notification, got %+v", notifier.payloads)
	}
}

func TestClaimNonPendingConflicts(t *testing.T) {
	commission := pendingCommission()
	commission.Status = repository.StatusClaimed

	repo := &fakeRepo{commission: commission}
	syncer := &fakeSyncer{}
	svc := newClaimServiceForTest(repo, syncer, &fakeRecorder{}, &fakeNotifier{})

	_, err := svc.Claim(context.Background(), uuid.New(), commission.ID)
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict kind, got %v", err)
	}
	if syncer.calls != 0 {
		t.Fatalf("syncer must not run for non-pending commission, got %d calls", syncer.calls)
	}
}

func TestClaimWithoutEnrollmentDate(t *testing.T) {
	commission := pendingCommission()
	commission.EnrollmentDate = nil

	repo := &fakeRepo{commission: commission}
	syncer := &fakeSyncer{result: zoho.Result{Success: true, DealID: "D2", DealName: "x", PreviousStage: "New"}}
	svc := newClaimServiceForTest(repo, syncer, &fakeRecorder{}, &fakeNotifier{})

	if _, err := svc.Claim(context.Background(), uuid.New(), commission.ID); err != nil {
		t.Fatalf("Claim returned error: %v", err)
	}
	if syncer.gotEnrollment != "" {
		t.Fatalf("expected empty enrollment date, got %q", syncer.gotEnrollment)
	}
}

func TestClaimNotFound(t *testing.T) {
	repo := &fakeRepo{getErr: apperr.NotFound("commission not found")}
	syncer := &fakeSyncer{}
	svc := newClaimServiceForTest(repo, syncer, &fakeRecorder{}, &fakeNotifier{})

	_, err := svc.Claim(context.Background(), uuid.New(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if syncer.calls != 0 {
		t.Fatal("syncer must not run when commission lookup fails")
	}
}
