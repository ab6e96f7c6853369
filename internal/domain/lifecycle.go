package domain

// allowedTransitions lists legal status moves. Admin assignment overrides any prior state.
var allowedTransitions = map[ComplaintStatus][]ComplaintStatus{
	ComplaintStatusPending:  {ComplaintStatusOpen, ComplaintStatusRejected, ComplaintStatusAssigned},
	ComplaintStatusOpen:     {ComplaintStatusOpen, ComplaintStatusClosed, ComplaintStatusAssigned},
	ComplaintStatusAssigned: {ComplaintStatusClosed, ComplaintStatusAssigned},
	ComplaintStatusClosed:   {ComplaintStatusAssigned},
	ComplaintStatusRejected: {ComplaintStatusAssigned},
}

// CanTransition reports whether a complaint may move from one status to another.
func CanTransition(from, to ComplaintStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
