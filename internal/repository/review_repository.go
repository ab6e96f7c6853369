package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ReviewRepository stores the triage queue and resolution audit rows.
type ReviewRepository interface {
	CreatePendingReview(ctx context.Context, review *domain.PendingReview) error
	GetPendingReview(ctx context.Context, complaintID int64) (*domain.PendingReview, error)
	UpdatePendingReviewStatus(ctx context.Context, complaintID int64, status domain.ReviewStatus, reviewerID int64) error
	CreateUncategorizedResolution(ctx context.Context, resolution *domain.UncategorizedResolution) error
	GetUncategorizedResolution(ctx context.Context, complaintID int64) (*domain.UncategorizedResolution, error)
	CreateDirectSolution(ctx context.Context, solution *domain.DirectSolution) error
	GetDirectSolution(ctx context.Context, complaintID int64) (*domain.DirectSolution, error)
}

type reviewRepository struct {
	db DBTX
}

// NewReviewRepository builds repository.
func NewReviewRepository(db DBTX) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) CreatePendingReview(ctx context.Context, review *domain.PendingReview) error {
	const query = `
        INSERT INTO pending_complaint_reviews (complaint_id, status)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, review.ComplaintID, review.Status).
		Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *reviewRepository) GetPendingReview(ctx context.Context, complaintID int64) (*domain.PendingReview, error) {
	const query = `
        SELECT id, complaint_id, status, reviewed_by_id, created_at, updated_at
        FROM pending_complaint_reviews WHERE complaint_id=$1`
	var review domain.PendingReview
	if err := r.db.QueryRow(ctx, query, complaintID).Scan(
		&review.ID,
		&review.ComplaintID,
		&review.Status,
		&review.ReviewedByID,
		&review.CreatedAt,
		&review.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) UpdatePendingReviewStatus(ctx context.Context, complaintID int64, status domain.ReviewStatus, reviewerID int64) error {
	const query = `
        UPDATE pending_complaint_reviews SET status=$1, reviewed_by_id=$2, updated_at=NOW()
        WHERE complaint_id=$3`
	cmd, err := r.db.Exec(ctx, query, status, reviewerID, complaintID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reviewRepository) CreateUncategorizedResolution(ctx context.Context, resolution *domain.UncategorizedResolution) error {
	const query = `
        INSERT INTO uncategorized_resolutions (complaint_id, main_issue_id, related_issue_id, sub_related_issue_id,
            issue_description_id, resolved_by_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		resolution.ComplaintID,
		resolution.MainIssueID,
		resolution.RelatedIssueID,
		resolution.SubRelatedIssueID,
		resolution.IssueDescriptionID,
		resolution.ResolvedByID,
	).Scan(&resolution.ID, &resolution.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *reviewRepository) GetUncategorizedResolution(ctx context.Context, complaintID int64) (*domain.UncategorizedResolution, error) {
	const query = `
        SELECT id, complaint_id, main_issue_id, related_issue_id, sub_related_issue_id, issue_description_id,
               resolved_by_id, created_at
        FROM uncategorized_resolutions WHERE complaint_id=$1`
	var res domain.UncategorizedResolution
	if err := r.db.QueryRow(ctx, query, complaintID).Scan(
		&res.ID,
		&res.ComplaintID,
		&res.MainIssueID,
		&res.RelatedIssueID,
		&res.SubRelatedIssueID,
		&res.IssueDescriptionID,
		&res.ResolvedByID,
		&res.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reviewRepository) CreateDirectSolution(ctx context.Context, solution *domain.DirectSolution) error {
	const query = `
        INSERT INTO direct_solutions (complaint_id, subadmin_id, solution_text)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query, solution.ComplaintID, solution.SubadminID, solution.SolutionText).
		Scan(&solution.ID, &solution.CreatedAt)
}

func (r *reviewRepository) GetDirectSolution(ctx context.Context, complaintID int64) (*domain.DirectSolution, error) {
	const query = `
        SELECT id, complaint_id, subadmin_id, solution_text, created_at
        FROM direct_solutions WHERE complaint_id=$1
        ORDER BY id DESC LIMIT 1`
	var sol domain.DirectSolution
	if err := r.db.QueryRow(ctx, query, complaintID).Scan(
		&sol.ID,
		&sol.ComplaintID,
		&sol.SubadminID,
		&sol.SolutionText,
		&sol.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &sol, nil
}
