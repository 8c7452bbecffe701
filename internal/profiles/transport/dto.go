// Package transport defines request and response DTOs for the profiles module.
package transport

// CreateProfileRequest is the payload for creating a staff profile.
type CreateProfileRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required,min=2,max=200"`
	Phone    string `json:"phone" validate:"max=32"`
	Role     string `json:"role" validate:"required,oneof=sales admin"`
	Password string `json:"password" validate:"required,min=10,max=128"`
}

// UpdateProfileRequest is the payload for partially updating a profile.
type UpdateProfileRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,min=2,max=200"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Role     *string `json:"role" validate:"omitempty,oneof=sales admin"`
	IsActive *bool   `json:"isActive"`
}

// ListProfilesRequest contains the list filter query parameters.
type ListProfilesRequest struct {
	Search   string `form:"search"`
	Role     string `form:"role"`
	IsActive *bool  `form:"isActive"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// ProfileResponse is the API representation of a profile.
// The password hash is never exposed.
type ProfileResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ProfileListResponse is a paginated list of profiles.
type ProfileListResponse struct {
	Items    []ProfileResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}
