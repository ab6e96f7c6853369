package domain

import "time"

// FeedbackLabel is a user's satisfaction rating.
type FeedbackLabel string

const (
	FeedbackExcellent FeedbackLabel = "Excellent"
	FeedbackGood      FeedbackLabel = "Good"
	FeedbackAverage   FeedbackLabel = "Average"
	FeedbackPoor      FeedbackLabel = "Poor"
	FeedbackVeryPoor  FeedbackLabel = "Very Poor"
)

// FeedbackLabels lists labels from best to worst.
var FeedbackLabels = []FeedbackLabel{FeedbackExcellent, FeedbackGood, FeedbackAverage, FeedbackPoor, FeedbackVeryPoor}

// Valid reports whether the label is one of the five satisfaction levels.
func (l FeedbackLabel) Valid() bool {
	for _, label := range FeedbackLabels {
		if l == label {
			return true
		}
	}
	return false
}

// Feedback is unique per (complaint, user).
type Feedback struct {
	ID          int64
	ComplaintID int64
	UserID      int64
	SubadminID  int64
	Label       FeedbackLabel
	Comment     string
	CreatedAt   time.Time
}
