package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// LoginRequest payload. Users and staff both log in with their staff number.
type LoginRequest struct {
	StaffNo  string `json:"staff_no" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginResponse carries the token and whichever account authenticated.
type LoginResponse struct {
	SubjectType domain.SubjectType `json:"subject_type"`
	Auth        AuthResponse       `json:"auth"`
	User        *UserResponse      `json:"user,omitempty"`
	Staff       *StaffResponse     `json:"staff,omitempty"`
}

// UserResponse representation.
type UserResponse struct {
	ID         int64     `json:"id"`
	StaffNo    string    `json:"staff_no"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserSummaryFrom maps a user.
func UserSummaryFrom(u *domain.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{ID: u.ID, StaffNo: u.StaffNo, Name: u.Name, Department: u.Department, CreatedAt: u.CreatedAt}
}
