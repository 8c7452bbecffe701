// Package transport defines request and response DTOs for the schools module.
package transport

// CreateSchoolRequest is the payload for creating a school.
type CreateSchoolRequest struct {
	Name              string `json:"name" validate:"required,min=2,max=200"`
	Country           string `json:"country" validate:"max=100"`
	ContactEmail      string `json:"contactEmail" validate:"omitempty,email"`
	CommissionRateBps int    `json:"commissionRateBps" validate:"gte=0,lte=10000"`
}

// UpdateSchoolRequest is the payload for partially updating a school.
type UpdateSchoolRequest struct {
	Name              *string `json:"name" validate:"omitempty,min=2,max=200"`
	Country           *string `json:"country" validate:"omitempty,max=100"`
	ContactEmail      *string `json:"contactEmail" validate:"omitempty,email"`
	CommissionRateBps *int    `json:"commissionRateBps" validate:"omitempty,gte=0,lte=10000"`
	IsActive          *bool   `json:"isActive"`
}

// ListSchoolsRequest contains the list filter query parameters.
type ListSchoolsRequest struct {
	Search   string `form:"search"`
	IsActive *bool  `form:"isActive"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// SchoolResponse is the API representation of a school.
type SchoolResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Country           string `json:"country"`
	ContactEmail      string `json:"contactEmail"`
	CommissionRateBps int    `json:"commissionRateBps"`
	IsActive          bool   `json:"isActive"`
	CreatedAt         string `json:"createdAt"`
	UpdatedAt         string `json:"updatedAt"`
}

// SchoolListResponse is a paginated list of schools.
type SchoolListResponse struct {
	Items    []SchoolResponse `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}
