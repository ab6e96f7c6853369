package dto

import "github.com/spec-kit/complaint-service/internal/domain"

// IssueRefRequest points at a taxonomy node by id, or names one to get-or-create.
type IssueRefRequest struct {
	ID   *int64 `json:"id" validate:"omitempty,gt=0"`
	Name string `json:"name" validate:"max=255"`
}

// SubRelatedIssueRequest selects or names the sub-related issue of a resolution.
type SubRelatedIssueRequest struct {
	ID             *int64 `json:"id" validate:"omitempty,gt=0"`
	Name           string `json:"name" validate:"max=255"`
	RelatedIssueID *int64 `json:"related_issue_id" validate:"omitempty,gt=0"`
}

// ResolveRequest closes an open complaint. A sub-related issue selects the structured
// path; otherwise direct_solution is required.
type ResolveRequest struct {
	SubRelatedIssue  *SubRelatedIssueRequest `json:"sub_related_issue"`
	IssueDescription string                  `json:"issue_description" validate:"max=5000"`
	SolutionSteps    []string                `json:"solution_steps" validate:"max=50,dive,max=1000"`
	DirectSolution   string                  `json:"direct_solution" validate:"max=5000"`
	Severity         string                  `json:"severity" validate:"omitempty,oneof=Minor Major"`
	DoneByID         *int64                  `json:"done_by_id" validate:"omitempty,gt=0"`
}

// ResolveUncategorizedRequest categorizes and closes a complaint filed under "Others".
type ResolveUncategorizedRequest struct {
	MainIssue        *IssueRefRequest `json:"main_issue" validate:"required"`
	RelatedIssue     *IssueRefRequest `json:"related_issue"`
	SubRelatedIssue  *IssueRefRequest `json:"sub_related_issue"`
	IssueDescription string           `json:"issue_description" validate:"max=5000"`
	SolutionSteps    []string         `json:"solution_steps" validate:"max=50,dive,max=1000"`
	Severity         string           `json:"severity" validate:"omitempty,oneof=Minor Major"`
	DoneByID         *int64           `json:"done_by_id" validate:"omitempty,gt=0"`
}

// AssignRequest routes a complaint to a subadmin by display name.
type AssignRequest struct {
	SubadminName string `json:"subadmin_name" validate:"required,max=255"`
}

// TakeResponse reports the complaint after a take.
type TakeResponse struct {
	ComplaintID  int64                  `json:"complaint_id"`
	Status       domain.ComplaintStatus `json:"status"`
	AssignedToID int64                  `json:"assigned_to_id"`
	AssignedTo   string                 `json:"assigned_to"`
}

// StatusResponse reports the status a complaint moved to.
type StatusResponse struct {
	ComplaintID int64                  `json:"complaint_id"`
	Status      domain.ComplaintStatus `json:"status"`
	Message     string                 `json:"message,omitempty"`
}
