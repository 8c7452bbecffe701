// Package transport defines request and response DTOs for the commissions module.
package transport

// CreateCommissionRequest is the payload for registering an expected commission.
type CreateCommissionRequest struct {
	StudentID   string `json:"studentId" validate:"required,uuid"`
	SchoolID    string `json:"schoolId" validate:"required,uuid"`
	AmountCents int64  `json:"amountCents" validate:"gte=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3,uppercase"`
}

// UpdateCommissionRequest is the payload for partially updating a commission.
// Status transitions here cover manual bookkeeping (received, cancelled);
// the claimed transition only happens through the claim endpoint.
type UpdateCommissionRequest struct {
	AmountCents *int64  `json:"amountCents" validate:"omitempty,gte=0"`
	Currency    *string `json:"currency" validate:"omitempty,len=3,uppercase"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending received cancelled"`
}

// ListCommissionsRequest contains the list filter query parameters.
type ListCommissionsRequest struct {
	StudentID      string `form:"studentId"`
	SchoolID       string `form:"schoolId"`
	SalesProfileID string `form:"salesProfileId"`
	Status         string `form:"status"`
	Page           int    `form:"page"`
	PageSize       int    `form:"pageSize"`
}

// CommissionResponse is the API representation of a commission.
type CommissionResponse struct {
	ID                string `json:"id"`
	StudentID         string `json:"studentId"`
	StudentName       string `json:"studentName"`
	EnrollmentDate    string `json:"enrollmentDate,omitempty"`
	SalesProfileID    string `json:"salesProfileId"`
	SchoolID          string `json:"schoolId"`
	SchoolName        string `json:"schoolName"`
	AmountCents       int64  `json:"amountCents"`
	Currency          string `json:"currency"`
	Status            string `json:"status"`
	ClaimedAt         string `json:"claimedAt,omitempty"`
	ZohoDealID        string `json:"zohoDealId,omitempty"`
	ZohoDealName      string `json:"zohoDealName,omitempty"`
	ZohoPreviousStage string `json:"zohoPreviousStage,omitempty"`
	ZohoSyncedAt      string `json:"zohoSyncedAt,omitempty"`
	SyncError         string `json:"syncError,omitempty"`
	CreatedAt         string `json:"createdAt"`
	UpdatedAt         string `json:"updatedAt"`
}

// CommissionListResponse is a paginated list of commissions.
type CommissionListResponse struct {
	Items    []CommissionResponse `json:"items"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"pageSize"`
}

// ClaimResponse is the outcome of a claim synchronization attempt. Sync
// failures are reported in the body with HTTP 200; the commission stays
// pending and can be claimed again.
type ClaimResponse struct {
	Success       bool               `json:"success"`
	DealID        string             `json:"dealId,omitempty"`
	DealName      string             `json:"dealName,omitempty"`
	PreviousStage string             `json:"previousStage,omitempty"`
	Error         string             `json:"error,omitempty"`
	Commission    CommissionResponse `json:"commission"`
}

// CreateAttachmentRequest asks for a presigned upload slot for one file.
type CreateAttachmentRequest struct {
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,max=120"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

// AttachmentResponse is the API representation of an attachment.
type AttachmentResponse struct {
	ID           string `json:"id"`
	CommissionID string `json:"commissionId"`
	FileName     string `json:"fileName"`
	ContentType  string `json:"contentType"`
	SizeBytes    int64  `json:"sizeBytes"`
	UploadedBy   string `json:"uploadedBy,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

// AttachmentUploadResponse pairs the registered attachment with the
// presigned PUT URL the client uploads the bytes to.
type AttachmentUploadResponse struct {
	Attachment AttachmentResponse `json:"attachment"`
	UploadURL  string             `json:"uploadUrl"`
	ExpiresAt  string             `json:"expiresAt"`
}

// AttachmentDownloadResponse carries a short-lived download URL.
type AttachmentDownloadResponse struct {
	DownloadURL string `json:"downloadUrl"`
	ExpiresAt   string `json:"expiresAt"`
}
