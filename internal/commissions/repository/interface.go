// Package repository provides data access for commissions and their attachments.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Commission statuses.
const (
	StatusPending   = "pending"
	StatusClaimed   = "claimed"
	StatusReceived  = "received"
	StatusCancelled = "cancelled"
)

// Commission represents an expected payout from a partner school for one
// student placement. Student and school display fields are joined in.
type Commission struct {
	ID                uuid.UUID  `db:"id"`
	StudentID         uuid.UUID  `db:"student_id"`
	StudentName       string     `db:"student_name"`
	EnrollmentDate    *time.Time `db:"enrollment_date"`
	SalesProfileID    uuid.UUID  `db:"sales_profile_id"`
	SchoolID          uuid.UUID  `db:"school_id"`
	SchoolName        string     `db:"school_name"`
	AmountCents       int64      `db:"amount_cents"`
	Currency          string     `db:"currency"`
	Status            string     `db:"status"`
	ClaimedAt         *time.Time `db:"claimed_at"`
	ZohoDealID        string     `db:"zoho_deal_id"`
	ZohoDealName      string     `db:"zoho_deal_name"`
	ZohoPreviousStage string     `db:"zoho_previous_stage"`
	ZohoSyncedAt      *time.Time `db:"zoho_synced_at"`
	SyncError         string     `db:"sync_error"`
	CreatedAt         string     `db:"created_at"`
	UpdatedAt         string     `db:"updated_at"`
}

// Attachment is a piece of commission paperwork stored in the blob store.
type Attachment struct {
	ID           uuid.UUID  `db:"id"`
	CommissionID uuid.UUID  `db:"commission_id"`
	FileKey      string     `db:"file_key"`
	FileName     string     `db:"file_name"`
	ContentType  string     `db:"content_type"`
	SizeBytes    int64      `db:"size_bytes"`
	UploadedBy   *uuid.UUID `db:"uploaded_by"`
	CreatedAt    string     `db:"created_at"`
}

// CreateParams contains parameters for creating a commission.
type CreateParams struct {
	StudentID   uuid.UUID
	SchoolID    uuid.UUID
	AmountCents int64
	Currency    string
}

// UpdateParams contains parameters for updating a commission.
// Nil fields are left unchanged.
type UpdateParams struct {
	ID          uuid.UUID
	AmountCents *int64
	Currency    *string
	Status      *string
}

// ListParams contains filtering and pagination options.
type ListParams struct {
	StudentID      *uuid.UUID
	SchoolID       *uuid.UUID
	SalesProfileID *uuid.UUID
	Status         string
	Offset         int
	Limit          int
}

// ClaimOutcomeParams records the result of one CRM synchronization attempt.
type ClaimOutcomeParams struct {
	ID            uuid.UUID
	Success       bool
	DealID        string
	DealName      string
	PreviousStage string
	SyncError     string
}

// AddAttachmentParams contains parameters for registering an attachment.
type AddAttachmentParams struct {
	CommissionID uuid.UUID
	FileKey      string
	FileName     string
	ContentType  string
	SizeBytes    int64
	UploadedBy   *uuid.UUID
}

// Repository defines data access for commissions.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Commission, error)
	List(ctx context.Context, params ListParams) ([]Commission, int, error)
	Create(ctx context.Context, params CreateParams) (Commission, error)
	Update(ctx context.Context, params UpdateParams) (Commission, error)
	RecordClaimOutcome(ctx context.Context, params ClaimOutcomeParams) (Commission, error)

	AddAttachment(ctx context.Context, params AddAttachmentParams) (Attachment, error)
	ListAttachments(ctx context.Context, commissionID uuid.UUID) ([]Attachment, error)
	GetAttachment(ctx context.Context, commissionID, attachmentID uuid.UUID) (Attachment, error)
	DeleteAttachment(ctx context.Context, commissionID, attachmentID uuid.UUID) error
}
