package events

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated  EventType = "complaint_created"
	EventComplaintTaken    EventType = "complaint_taken"
	EventComplaintRejected EventType = "complaint_rejected"
	EventComplaintAssigned EventType = "complaint_assigned"
	EventComplaintResolved EventType = "complaint_resolved"
	EventComplaintDeleted  EventType = "complaint_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	UserID  *int64             `json:"user_id,omitempty"`
	StaffID *int64             `json:"staff_id,omitempty"`
}

// Event represents a domain event emitted by services after their transaction commits.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	ComplaintID int64     `json:"complaint_id"`
	Actor       Actor     `json:"actor"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	Status         domain.ComplaintStatus   `json:"status"`
	Priority       domain.ComplaintPriority `json:"priority"`
	MainIssueID    int64                    `json:"main_issue_id"`
	RelatedIssueID int64                    `json:"related_issue_id"`
}

// StatusChangedPayload is attached to take, reject, resolve and delete events.
type StatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
	Comment   string                 `json:"comment,omitempty"`
}

// ComplaintAssignedPayload payload.
type ComplaintAssignedPayload struct {
	AssignedToID int64                  `json:"assigned_to_id"`
	OldStatus    domain.ComplaintStatus `json:"old_status"`
}
