// Package email provides transactional email delivery for commission events.
package email

import "context"

// Sender delivers notification emails to sales staff.
type Sender interface {
	// SendClaimSyncedEmail notifies the owning agent that a commission claim
	// was pushed to the CRM successfully.
	SendClaimSyncedEmail(ctx context.Context, toEmail, agentName, studentName, schoolName, dealName string) error

	// SendClaimFailedEmail notifies the owning agent that a commission claim
	// could not be reconciled with the CRM.
	SendClaimFailedEmail(ctx context.Context, toEmail, agentName, studentName, schoolName, reason string) error
}

// NoopSender discards all emails. Used when email delivery is not configured.
type NoopSender struct{}

func (NoopSender) SendClaimSyncedEmail(ctx context.Context, toEmail, agentName, studentName, schoolName, dealName string) error {
	return nil
}

func (NoopSender) SendClaimFailedEmail(ctx context.Context, toEmail, agentName, studentName, schoolName, reason string) error {
	return nil
}
