package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ProfileUpdateRequest payload.
type ProfileUpdateRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Department string `json:"department" validate:"max=255"`
}

// ProfileResponse representation.
type ProfileResponse struct {
	SubjectType domain.SubjectType `json:"subject_type"`
	ID          int64              `json:"id"`
	StaffNo     string             `json:"staff_no"`
	Name        string             `json:"name"`
	Department  string             `json:"department"`
	Role        domain.StaffRole   `json:"role,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}
