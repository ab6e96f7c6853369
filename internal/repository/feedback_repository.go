package repository

import (
	"context"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// FeedbackRepository stores user satisfaction ratings.
type FeedbackRepository interface {
	// Create returns ErrDuplicate when the user already rated the complaint.
	Create(ctx context.Context, feedback *domain.Feedback) error
	GetByComplaint(ctx context.Context, complaintID, userID int64) (*domain.Feedback, error)
}

type feedbackRepository struct {
	db DBTX
}

// NewFeedbackRepository builds repository.
func NewFeedbackRepository(db DBTX) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        INSERT INTO complaint_feedback (complaint_id, user_id, subadmin_id, label, comment)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		feedback.ComplaintID,
		feedback.UserID,
		feedback.SubadminID,
		feedback.Label,
		feedback.Comment,
	).Scan(&feedback.ID, &feedback.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *feedbackRepository) GetByComplaint(ctx context.Context, complaintID, userID int64) (*domain.Feedback, error) {
	const query = `
        SELECT id, complaint_id, user_id, subadmin_id, label, comment, created_at
        FROM complaint_feedback WHERE complaint_id=$1 AND user_id=$2`
	var fb domain.Feedback
	if err := r.db.QueryRow(ctx, query, complaintID, userID).Scan(
		&fb.ID,
		&fb.ComplaintID,
		&fb.UserID,
		&fb.SubadminID,
		&fb.Label,
		&fb.Comment,
		&fb.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &fb, nil
}
