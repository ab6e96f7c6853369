package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ClassifyRequest payload.
type ClassifyRequest struct {
	Description string `json:"description" validate:"required,max=5000"`
}

// ClassificationResponse is the classifier's suggestion for a description.
type ClassificationResponse struct {
	MainIssue         IssueNodeResponse      `json:"main_issue"`
	RelatedIssue      IssueNodeResponse      `json:"related_issue"`
	SubRelatedIssueID *int64                 `json:"sub_related_issue_id"`
	SubRelatedIssues  []IssueNodeResponse    `json:"sub_related_issues"`
	IssueDescription  *DescriptionResponse   `json:"issue_description"`
	Solutions         []SolutionStepResponse `json:"solutions"`
	Uncategorized     bool                   `json:"uncategorized"`
}

// SubmitComplaintRequest payload. Omitted issue ids default to "Others".
type SubmitComplaintRequest struct {
	Description       string `json:"description" validate:"max=5000"`
	IssueDescription  string `json:"issue_description" validate:"max=5000"`
	MainIssueID       *int64 `json:"main_issue_id" validate:"omitempty,gt=0"`
	RelatedIssueID    *int64 `json:"related_issue_id" validate:"omitempty,gt=0"`
	SubRelatedIssueID *int64 `json:"sub_related_issue_id" validate:"omitempty,gt=0"`
	Priority          string `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	IsResolved        bool   `json:"is_resolved"`
	SessionID         string `json:"session_id" validate:"max=100"`
}

// ResolutionLogRequest records the outcome of AI self-service.
type ResolutionLogRequest struct {
	IsResolved bool   `json:"is_resolved"`
	SessionID  string `json:"session_id" validate:"max=100"`
}

// ResolutionLogResponse echoes the stored log entry.
type ResolutionLogResponse struct {
	ID         int64     `json:"id"`
	IsResolved bool      `json:"is_resolved"`
	SessionID  string    `json:"session_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// FeedbackRequest payload.
type FeedbackRequest struct {
	Label   string `json:"label" validate:"required,oneof=Excellent Good Average Poor 'Very Poor'"`
	Comment string `json:"comment" validate:"max=1000"`
}

// FeedbackResponse representation.
type FeedbackResponse struct {
	ID          int64                `json:"id"`
	ComplaintID int64                `json:"complaint_id"`
	SubadminID  int64                `json:"subadmin_id"`
	Label       domain.FeedbackLabel `json:"label"`
	Comment     string               `json:"comment"`
	CreatedAt   time.Time            `json:"created_at"`
}

// ComplaintResponse is a complaint with its category and staff names resolved.
type ComplaintResponse struct {
	ID                     int64                    `json:"id"`
	Description            string                   `json:"description"`
	Status                 domain.ComplaintStatus   `json:"status"`
	Priority               domain.ComplaintPriority `json:"priority"`
	Severity               *domain.Severity         `json:"severity,omitempty"`
	MainIssueID            *int64                   `json:"main_issue_id"`
	MainIssue              string                   `json:"main_issue"`
	RelatedIssueID         *int64                   `json:"related_issue_id"`
	RelatedIssue           string                   `json:"related_issue"`
	SubRelatedIssueID      *int64                   `json:"sub_related_issue_id"`
	FinalSubRelatedIssueID *int64                   `json:"final_sub_related_issue_id,omitempty"`
	SubRelatedIssue        string                   `json:"sub_related_issue,omitempty"`
	AssignedToID           *int64                   `json:"assigned_to_id"`
	AssignedTo             string                   `json:"assigned_to,omitempty"`
	DoneByID               *int64                   `json:"done_by_id"`
	DoneBy                 string                   `json:"done_by,omitempty"`
	IsAIResolved           bool                     `json:"is_ai_resolved"`
	CreatedAt              time.Time                `json:"created_at"`
	UpdatedAt              time.Time                `json:"updated_at"`

	IssueDescription string            `json:"issue_description,omitempty"`
	SolutionSteps    []string          `json:"solution_steps,omitempty"`
	DirectSolution   string            `json:"direct_solution,omitempty"`
	Feedback         *FeedbackResponse `json:"feedback,omitempty"`
}

// UserSummaryResponse counts a user's complaints.
type UserSummaryResponse struct {
	Total      int64 `json:"total"`
	Resolved   int64 `json:"resolved"`
	Unresolved int64 `json:"unresolved"`
	ThisMonth  int64 `json:"this_month"`
}
