package service

import (
	"context"

	"github.com/google/uuid"

	"pj_commission_backend/internal/activitylog"
	"pj_commission_backend/internal/commissions/repository"
	"pj_commission_backend/internal/commissions/transport"
	"pj_commission_backend/internal/scheduler"
	"pj_commission_backend/internal/zoho"
	"pj_commission_backend/platform/apperr"
	"pj_commission_backend/platform/logger"
)

// ClaimSyncer reconciles one commission claim into the CRM.
type ClaimSyncer interface {
	SyncClaim(ctx context.Context, studentName, schoolName, enrollmentDate string) zoho.Result
}

// AgentDirectory resolves the notification address for a sales profile.
type AgentDirectory interface {
	EmailForProfile(ctx context.Context, id uuid.UUID) (email, name string, err error)
}

// ClaimService orchestrates the claim action: guard the status, run the CRM
// synchronization, persist the outcome, audit it, and notify the owning agent.
type ClaimService struct {
	repo     repository.Repository
	syncer   ClaimSyncer
	agents   AgentDirectory
	recorder activitylog.Recorder
	notifier scheduler.ClaimNotifier
	log      *logger.Logger
}

// NewClaimService creates a new claim service. The notifier may be nil when
// the task queue is not configured; notifications are then skipped.
func NewClaimService(
	repo repository.Repository,
	syncer ClaimSyncer,
	agents AgentDirectory,
	recorder activitylog.Recorder,
	notifier scheduler.ClaimNotifier,
	log *logger.Logger,
) *ClaimService {
	return &ClaimService{
		repo:     repo,
		syncer:   syncer,
		agents:   agents,
		recorder: recorder,
		notifier: notifier,
		log:      log,
	}
}

// Claim runs one claim synchronization for a pending commission. A sync
// failure is a normal outcome: it is persisted and returned in the body, and
// the commission stays pending so the claim can be retried.
func (s *ClaimService) Claim(ctx context.Context, actorID, commissionID uuid.UUID) (transport.ClaimResponse, error) {
	if s.syncer == nil {
		return transport.ClaimResponse{}, apperr.Unavailable("CRM integration is not configured")
	}

	commission, err := s.repo.GetByID(ctx, commissionID)
	if err != nil {
		return transport.ClaimResponse{}, err
	}
	if commission.Status != repository.StatusPending {
		return transport.ClaimResponse{}, apperr.Conflict("only pending commissions can be claimed")
	}

	enrollmentDate := ""
	if commission.EnrollmentDate != nil {
		enrollmentDate = commission.EnrollmentDate.Format(dateLayout)
	}

	result := s.syncer.SyncClaim(ctx, commission.StudentName, commission.SchoolName, enrollmentDate)

	updated, err := s.repo.RecordClaimOutcome(ctx, repository.ClaimOutcomeParams{
		ID:            commissionID,
		Success:       result.Success,
		DealID:        result.DealID,
		DealName:      result.DealName,
		PreviousStage: result.PreviousStage,
		SyncError:     result.Error,
	})
	if err != nil {
		return transport.ClaimResponse{}, err
	}

	s.audit(ctx, actorID, updated, result)
	s.notify(ctx, updated, result)

	return transport.ClaimResponse{
		Success:       result.Success,
		DealID:        result.DealID,
		DealName:      result.DealName,
		PreviousStage: result.PreviousStage,
		Error:         result.Error,
		Commission:    toResponse(updated),
	}, nil
}

func (s *ClaimService) audit(ctx context.Context, actorID uuid.UUID, commission repository.Commission, result zoho.Result) {
	if s.recorder == nil {
		return
	}

	detail := map[string]any{
		"success": result.Success,
		"student": commission.StudentName,
		"school":  commission.SchoolName,
	}
	if result.Success {
		detail["dealId"] = result.DealID
		detail["dealName"] = result.DealName
		detail["previousStage"] = result.PreviousStage
	} else {
		detail["error"] = result.Error
	}

	entityID := commission.ID
	if err := s.recorder.Append(ctx, activitylog.AppendParams{
		ActorID:    &actorID,
		Action:     "commission.claim",
		EntityType: "commission",
		EntityID:   &entityID,
		Detail:     detail,
	}); err != nil {
		s.log.Error("failed to record claim audit entry", "commission_id", commission.ID, "error", err)
	}
}

func (s *ClaimService) notify(ctx context.Context, commission repository.Commission, result zoho.Result) {
	if s.notifier == nil || s.agents == nil {
		return
	}

	email, name, err := s.agents.EmailForProfile(ctx, commission.SalesProfileID)
	if err != nil {
		s.log.Error("failed to resolve agent for claim notification", "commission_id", commission.ID, "error", err)
		return
	}

	payload := scheduler.ClaimNotificationPayload{
		CommissionID: commission.ID.String(),
		AgentEmail:   email,
		AgentName:    name,
		StudentName:  commission.StudentName,
		SchoolName:   commission.SchoolName,
		DealName:     result.DealName,
		Success:      result.Success,
		Reason:       result.Error,
	}
	if err := s.notifier.EnqueueClaimNotification(ctx, payload); err != nil {
		s.log.Error("failed to enqueue claim notification", "commission_id", commission.ID, "error", err)
	}
}
