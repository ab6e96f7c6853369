package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ComplaintFilter captures listing parameters. Soft-deleted complaints are always excluded.
type ComplaintFilter struct {
	UserID       *int64
	AssignedToID *int64
	DoneByID     *int64
	Statuses     []domain.ComplaintStatus
	// SentinelOnly keeps complaints whose main issue is unset or "Others".
	SentinelOnly bool
	// CategorizedOnly keeps complaints with a real main issue or a triage resolution.
	CategorizedOnly bool
	Escalation      *Escalation
	Limit           int
	Offset          int
}

// Escalation keeps High priority complaints and complaints raised by users whose
// department is one of Departments. Department names compare case-insensitively.
type Escalation struct {
	Departments []string
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	Update(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id int64) (*domain.Complaint, error)
	// GetForUpdate loads the complaint and locks its row until the transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*domain.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	SoftDelete(ctx context.Context, id int64) error
}

const complaintColumns = `id, user_id, description, main_issue_id, related_issue_id, sub_related_issue_id,
               original_main_issue_id, issue_description_id, final_sub_related_issue_id, priority, severity,
               status, assigned_to_id, done_by_id, is_ai_resolved, created_at, updated_at, deleted_at`

type complaintRepository struct {
	db DBTX
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(db DBTX) ComplaintRepository {
	return &complaintRepository{db: db}
}

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (user_id, description, main_issue_id, related_issue_id, sub_related_issue_id,
            original_main_issue_id, issue_description_id, priority, status, is_ai_resolved)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		complaint.UserID,
		complaint.Description,
		complaint.MainIssueID,
		complaint.RelatedIssueID,
		complaint.SubRelatedIssueID,
		complaint.OriginalMainIssueID,
		complaint.IssueDescriptionID,
		complaint.Priority,
		complaint.Status,
		complaint.IsAIResolved,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt)
}

func (r *complaintRepository) Update(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        UPDATE complaints SET main_issue_id=$1, related_issue_id=$2, sub_related_issue_id=$3,
            issue_description_id=$4, final_sub_related_issue_id=$5, severity=$6, status=$7,
            assigned_to_id=$8, done_by_id=$9, updated_at=NOW()
        WHERE id=$10 AND deleted_at IS NULL`
	cmd, err := r.db.Exec(ctx, query,
		complaint.MainIssueID,
		complaint.RelatedIssueID,
		complaint.SubRelatedIssueID,
		complaint.IssueDescriptionID,
		complaint.FinalSubRelatedIssueID,
		complaint.Severity,
		complaint.Status,
		complaint.AssignedToID,
		complaint.DoneByID,
		complaint.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id int64) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1 AND deleted_at IS NULL`
	return scanComplaint(r.db.QueryRow(ctx, query, id))
}

func (r *complaintRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1 AND deleted_at IS NULL FOR UPDATE`
	return scanComplaint(r.db.QueryRow(ctx, query, id))
}

func (r *complaintRepository) SoftDelete(ctx context.Context, id int64) error {
	const query = `UPDATE complaints SET deleted_at=NOW(), updated_at=NOW() WHERE id=$1 AND deleted_at IS NULL`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	clauses := []string{"deleted_at IS NULL"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("assigned_to_id=$%d", len(args)))
	}
	if filter.DoneByID != nil {
		args = append(args, *filter.DoneByID)
		clauses = append(clauses, fmt.Sprintf("done_by_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SentinelOnly {
		clauses = append(clauses, "(main_issue_id IS NULL OR main_issue_id = 1)")
	}
	if filter.CategorizedOnly {
		clauses = append(clauses, `(main_issue_id <> 1 OR EXISTS (
            SELECT 1 FROM uncategorized_resolutions ur WHERE ur.complaint_id = complaints.id))`)
	}
	if filter.Escalation != nil {
		departments := make([]string, 0, len(filter.Escalation.Departments))
		for _, d := range filter.Escalation.Departments {
			departments = append(departments, strings.ToUpper(strings.TrimSpace(d)))
		}
		args = append(args, domain.ComplaintPriorityHigh, departments)
		clauses = append(clauses, fmt.Sprintf(`(priority=$%d OR EXISTS (
            SELECT 1 FROM users u WHERE u.id = complaints.user_id AND upper(btrim(u.department)) = ANY($%d)))`, len(args)-1, len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		complaintColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Complaint
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *complaint)
	}
	return result, rows.Err()
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Description,
		&c.MainIssueID,
		&c.RelatedIssueID,
		&c.SubRelatedIssueID,
		&c.OriginalMainIssueID,
		&c.IssueDescriptionID,
		&c.FinalSubRelatedIssueID,
		&c.Priority,
		&c.Severity,
		&c.Status,
		&c.AssignedToID,
		&c.DoneByID,
		&c.IsAIResolved,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
