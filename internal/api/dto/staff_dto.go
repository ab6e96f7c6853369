package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=128"`
}

// CreateUserRequest payload. An empty password defaults to the staff number.
type CreateUserRequest struct {
	StaffNo    string `json:"staff_no" validate:"required,max=64"`
	Name       string `json:"name" validate:"required,max=255"`
	Department string `json:"department" validate:"max=255"`
	Password   string `json:"password" validate:"omitempty,min=6,max=128"`
}

// CreateStaffRequest payload.
type CreateStaffRequest struct {
	StaffNo    string `json:"staff_no" validate:"required,max=64"`
	Name       string `json:"name" validate:"required,max=255"`
	Department string `json:"department" validate:"max=255"`
	Password   string `json:"password" validate:"required,min=6,max=128"`
	Role       string `json:"role" validate:"required,oneof=SUBADMIN ADMIN"`
}

// PasswordResetRequest sets a staff member's password.
type PasswordResetRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6,max=128"`
}

// StaffResponse representation.
type StaffResponse struct {
	ID         int64            `json:"id"`
	StaffNo    string           `json:"staff_no"`
	Name       string           `json:"name"`
	Department string           `json:"department"`
	Role       domain.StaffRole `json:"role"`
	Active     bool             `json:"active"`
	CreatedAt  time.Time        `json:"created_at"`
}

// StaffSummaryFrom maps a staff member.
func StaffSummaryFrom(s *domain.StaffMember) *StaffResponse {
	if s == nil {
		return nil
	}
	return &StaffResponse{
		ID:         s.ID,
		StaffNo:    s.StaffNo,
		Name:       s.Name,
		Department: s.Department,
		Role:       s.Role,
		Active:     s.Active,
		CreatedAt:  s.CreatedAt,
	}
}

// SubadminDashboardResponse feeds the subadmin dashboard.
type SubadminDashboardResponse struct {
	TotalSolved      int64 `json:"total_solved"`
	Uncategorized    int64 `json:"uncategorized"`
	TotalAssigned    int64 `json:"total_assigned"`
	TotalCategorized int64 `json:"total_categorized"`
}

// CategoryCountResponse is a per-main-issue complaint count.
type CategoryCountResponse struct {
	MainIssueID int64  `json:"main_issue_id"`
	Name        string `json:"name"`
	Count       int64  `json:"count"`
}

// AdminDashboardResponse feeds the admin dashboard.
type AdminDashboardResponse struct {
	TotalComplaints    int64                   `json:"total_complaints"`
	Pending            int64                   `json:"pending"`
	Resolved           int64                   `json:"resolved"`
	AIResolved         int64                   `json:"ai_resolved"`
	ResolvedBySubadmin int64                   `json:"resolved_by_subadmin"`
	HighPriority       int64                   `json:"high_priority"`
	Minor              int64                   `json:"minor"`
	Major              int64                   `json:"major"`
	AvgResolutionHours float64                 `json:"avg_resolution_hours"`
	TotalUsers         int64                   `json:"total_users"`
	TotalSubadmins     int64                   `json:"total_subadmins"`
	Categories         []CategoryCountResponse `json:"categories"`
	FeedbackByLabel    map[string]int64        `json:"feedback_by_label"`
}

// SubadminPerformanceResponse ranks one subadmin.
type SubadminPerformanceResponse struct {
	SubadminID  int64   `json:"subadmin_id"`
	Name        string  `json:"name"`
	StaffNo     string  `json:"staff_no"`
	TotalSolved int64   `json:"total_solved"`
	AvgHours    float64 `json:"avg_hours"`
}
