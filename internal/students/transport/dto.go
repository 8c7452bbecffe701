// Package transport defines request and response DTOs for the students module.
package transport

// CreateStudentRequest is the payload for registering a student.
type CreateStudentRequest struct {
	FullName       string `json:"fullName" validate:"required,min=2,max=200"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone" validate:"max=32"`
	SchoolID       string `json:"schoolId" validate:"omitempty,uuid"`
	EnrollmentDate string `json:"enrollmentDate" validate:"omitempty,datetime=2006-01-02"`
	Status         string `json:"status" validate:"omitempty,oneof=prospect enrolled completed withdrawn"`
	Notes          string `json:"notes" validate:"max=4000"`
}

// UpdateStudentRequest is the payload for partially updating a student.
type UpdateStudentRequest struct {
	FullName       *string `json:"fullName" validate:"omitempty,min=2,max=200"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Phone          *string `json:"phone" validate:"omitempty,max=32"`
	SchoolID       *string `json:"schoolId" validate:"omitempty,uuid"`
	EnrollmentDate *string `json:"enrollmentDate" validate:"omitempty,datetime=2006-01-02"`
	Status         *string `json:"status" validate:"omitempty,oneof=prospect enrolled completed withdrawn"`
	Notes          *string `json:"notes" validate:"omitempty,max=4000"`
}

// ListStudentsRequest contains the list filter query parameters.
type ListStudentsRequest struct {
	Search         string `form:"search"`
	SchoolID       string `form:"schoolId"`
	SalesProfileID string `form:"salesProfileId"`
	Status         string `form:"status"`
	Page           int    `form:"page"`
	PageSize       int    `form:"pageSize"`
}

// StudentResponse is the API representation of a student.
type StudentResponse struct {
	ID             string `json:"id"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	SchoolID       string `json:"schoolId,omitempty"`
	SchoolName     string `json:"schoolName,omitempty"`
	SalesProfileID string `json:"salesProfileId"`
	EnrollmentDate string `json:"enrollmentDate,omitempty"`
	Status         string `json:"status"`
	Notes          string `json:"notes"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

// StudentListResponse is a paginated list of students.
type StudentListResponse struct {
	Items    []StudentResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}
