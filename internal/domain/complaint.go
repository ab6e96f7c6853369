package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusPending  ComplaintStatus = "Pending"
	ComplaintStatusOpen     ComplaintStatus = "Open"
	ComplaintStatusAssigned ComplaintStatus = "Assigned"
	ComplaintStatusClosed   ComplaintStatus = "Closed"
	ComplaintStatusRejected ComplaintStatus = "Rejected"
)

// ComplaintPriority enumerates urgency.
type ComplaintPriority string

const (
	ComplaintPriorityLow    ComplaintPriority = "Low"
	ComplaintPriorityMedium ComplaintPriority = "Medium"
	ComplaintPriorityHigh   ComplaintPriority = "High"
)

// Valid reports whether the priority is known.
func (p ComplaintPriority) Valid() bool {
	return p == ComplaintPriorityLow || p == ComplaintPriorityMedium || p == ComplaintPriorityHigh
}

// Severity is assigned by staff when closing a complaint.
type Severity string

const (
	SeverityMinor Severity = "Minor"
	SeverityMajor Severity = "Major"
)

// Valid reports whether the severity is known.
func (s Severity) Valid() bool {
	return s == SeverityMinor || s == SeverityMajor
}

// Complaint is the aggregate for a user-raised issue.
type Complaint struct {
	ID                     int64
	UserID                 int64
	Description            string
	MainIssueID            *int64
	RelatedIssueID         *int64
	SubRelatedIssueID      *int64
	OriginalMainIssueID    *int64
	IssueDescriptionID     *int64
	FinalSubRelatedIssueID *int64
	Priority               ComplaintPriority
	Severity               *Severity
	Status                 ComplaintStatus
	AssignedToID           *int64
	DoneByID               *int64
	IsAIResolved           bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
	DeletedAt              *time.Time
}

// IsUncategorizedPair reports whether a main/related pair is the "Others" sentinel pair.
func IsUncategorizedPair(mainIssueID, relatedIssueID int64) bool {
	return mainIssueID == OthersIssueID && relatedIssueID == OthersIssueID
}

// InitialStatus returns the status a complaint starts in for the given categorization.
func InitialStatus(mainIssueID, relatedIssueID int64) ComplaintStatus {
	if IsUncategorizedPair(mainIssueID, relatedIssueID) {
		return ComplaintStatusPending
	}
	return ComplaintStatusOpen
}

// IsSentinelCategorized reports whether the complaint's main issue is still unset or "Others".
func (c *Complaint) IsSentinelCategorized() bool {
	return c.MainIssueID == nil || *c.MainIssueID == OthersIssueID
}

// IsTerminal reports whether the complaint reached Closed or Rejected.
func (c *Complaint) IsTerminal() bool {
	return c.Status == ComplaintStatusClosed || c.Status == ComplaintStatusRejected
}

// IsActive reports whether staff may resolve the complaint.
func (c *Complaint) IsActive() bool {
	return c.Status == ComplaintStatusOpen || c.Status == ComplaintStatusAssigned
}
