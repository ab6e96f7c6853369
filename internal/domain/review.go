package domain

import "time"

// ReviewStatus tracks the triage decision for a Pending complaint.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "Pending"
	ReviewStatusApproved ReviewStatus = "Approved"
	ReviewStatusRejected ReviewStatus = "Rejected"
)

// PendingReview is the triage-queue record created alongside every Pending complaint.
type PendingReview struct {
	ID           int64
	ComplaintID  int64
	Status       ReviewStatus
	ReviewedByID *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UncategorizedResolution snapshots the taxonomy a subadmin chose for a formerly "Others" complaint.
type UncategorizedResolution struct {
	ID                 int64
	ComplaintID        int64
	MainIssueID        int64
	RelatedIssueID     *int64
	SubRelatedIssueID  *int64
	IssueDescriptionID *int64
	ResolvedByID       int64
	CreatedAt          time.Time
}

// DirectSolution records a free-text resolution that bypasses the taxonomy.
type DirectSolution struct {
	ID           int64
	ComplaintID  int64
	SubadminID   int64
	SolutionText string
	CreatedAt    time.Time
}
