package zoho

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pj_commission_backend/platform/logger"
)

// StageCompletedWithCommission is the single stage value a claim transition
// ever writes. The synchronizer is not a general deal editor.
const StageCompletedWithCommission = "Completed with Commission"

// Result is the structured outcome of one claim synchronization. Failures
// are reported here, never raised to the caller.
type Result struct {
	Success       bool   `json:"success"`
	DealID        string `json:"dealId,omitempty"`
	DealName      string `json:"dealName,omitempty"`
	PreviousStage string `json:"previousStage,omitempty"`
	Error         string `json:"error,omitempty"`
}

// DealUpdater is the slice of the CRM client the synchronizer needs for the
// mutation step.
type DealUpdater interface {
	UpdateDealStage(ctx context.Context, accessToken, dealID, stage string) error
}

// Synchronizer orchestrates one claim action: token cache, contact
// resolution, deal matching, then a single remote stage mutation. Steps 1-3
// are read-only; the stage update is the only mutating call, so repeated
// invocations with the same inputs either converge on the same terminal stage
// or fail cleanly without partial mutation.
type Synchronizer struct {
	tokens   *TokenCache
	resolver *Resolver
	matcher  *Matcher
	updater  DealUpdater
	log      *logger.Logger
}

// NewSynchronizer wires the pipeline from its components.
func NewSynchronizer(tokens *TokenCache, resolver *Resolver, matcher *Matcher, updater DealUpdater, log *logger.Logger) *Synchronizer {
	return &Synchronizer{
		tokens:   tokens,
		resolver: resolver,
		matcher:  matcher,
		updater:  updater,
		log:      log,
	}
}

// SyncClaim reconciles a commission claim into the CRM. enrollmentDate is an
// optional YYYY-MM-DD string; when present it drives nearest-date
// tie-breaking among candidate deals.
func (s *Synchronizer) SyncClaim(ctx context.Context, studentName, schoolName, enrollmentDate string) Result {
	accessToken, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return s.failure(studentName, schoolName, fmt.Sprintf("No access token available: %v", err))
	}

	contacts, tried, err := s.resolver.ResolveContacts(ctx, accessToken, studentName)
	if err != nil {
		return s.failure(studentName, schoolName, fmt.Sprintf("Contact search failed: %v", err))
	}
	if len(contacts) == 0 {
		return s.failure(studentName, schoolName, fmt.Sprintf(
			"No contact found for student=%q (tried variants: %s)",
			studentName, strings.Join(tried, ", "),
		))
	}

	targetDate := parseEnrollmentDate(enrollmentDate)
	deal, err := s.matcher.MatchDeal(ctx, accessToken, contacts, schoolName, targetDate)
	if err != nil {
		return s.failure(studentName, schoolName, fmt.Sprintf("Deal lookup failed: %v", err))
	}
	if deal == nil {
		return s.failure(studentName, schoolName, fmt.Sprintf(
			"No matching deal for student=%q, school=%q, enrollment=%q",
			studentName, schoolName, enrollmentDate,
		))
	}

	// Previous stage is read before mutation for the result.
	previousStage := deal.Stage

	if err := s.updater.UpdateDealStage(ctx, accessToken, deal.ID, StageCompletedWithCommission); err != nil {
		return s.failure(studentName, schoolName, fmt.Sprintf("Update failed: %v", err))
	}

	s.log.ClaimSync(studentName, schoolName, true, fmt.Sprintf("deal %s (%s) moved from %q", deal.ID, deal.Name, previousStage))

	return Result{
		Success:       true,
		DealID:        deal.ID,
		DealName:      deal.Name,
		PreviousStage: previousStage,
	}
}

func (s *Synchronizer) failure(studentName, schoolName, message string) Result {
	s.log.ClaimSync(studentName, schoolName, false, message)
	return Result{Success: false, Error: message}
}

func parseEnrollmentDate(value string) *time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	parsed, ok := parseISODate(trimmed)
	if !ok {
		return nil
	}
	return &parsed
}
