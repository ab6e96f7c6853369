package domain

import "time"

// ResolutionAction names the event recorded in a resolution log entry.
type ResolutionAction string

const (
	ActionSubmitComplaint ResolutionAction = "submit_complaint"
	ActionSelfService     ResolutionAction = "self_service"
	ActionTakeComplaint   ResolutionAction = "take_complaint"
	ActionRejectComplaint ResolutionAction = "reject_complaint"
)

// ResolutionLog is an immutable audit entry for self-service outcomes and triage actions.
type ResolutionLog struct {
	ID          int64
	UserID      *int64
	StaffID     *int64
	ComplaintID *int64
	IsResolved  bool
	SessionID   string
	Action      ResolutionAction
	CreatedAt   time.Time
}
