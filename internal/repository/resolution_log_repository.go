package repository

import (
	"context"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ResolutionLogRepository stores audit entries.
type ResolutionLogRepository interface {
	Create(ctx context.Context, entry *domain.ResolutionLog) error
	ListByComplaint(ctx context.Context, complaintID int64) ([]domain.ResolutionLog, error)
}

type resolutionLogRepository struct {
	db DBTX
}

// NewResolutionLogRepository builds repository.
func NewResolutionLogRepository(db DBTX) ResolutionLogRepository {
	return &resolutionLogRepository{db: db}
}

func (r *resolutionLogRepository) Create(ctx context.Context, entry *domain.ResolutionLog) error {
	const query = `
        INSERT INTO ai_resolution_logs (user_id, staff_id, complaint_id, is_resolved, session_id, action)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.UserID,
		entry.StaffID,
		entry.ComplaintID,
		entry.IsResolved,
		entry.SessionID,
		entry.Action,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *resolutionLogRepository) ListByComplaint(ctx context.Context, complaintID int64) ([]domain.ResolutionLog, error) {
	const query = `
        SELECT id, user_id, staff_id, complaint_id, is_resolved, session_id, action, created_at
        FROM ai_resolution_logs WHERE complaint_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ResolutionLog
	for rows.Next() {
		var entry domain.ResolutionLog
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.StaffID,
			&entry.ComplaintID,
			&entry.IsResolved,
			&entry.SessionID,
			&entry.Action,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
