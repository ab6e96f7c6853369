package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ReportRepository computes dashboard aggregates. Soft-deleted complaints never count.
type ReportRepository interface {
	UserSummary(ctx context.Context, userID int64, now time.Time) (*domain.UserSummary, error)
	SubadminSummary(ctx context.Context, subadminID int64) (*domain.SubadminSummary, error)
	AdminSummary(ctx context.Context) (*domain.AdminSummary, error)
	SubadminPerformance(ctx context.Context) ([]domain.SubadminPerformance, error)
	// RepeatedComplaints groups complaints by user and category, keeping groups of at least minCount.
	RepeatedComplaints(ctx context.Context, minCount int) ([]domain.RepeatedComplaint, error)
	// TopComplainers ranks users with at least minComplaints by complaints per active day.
	TopComplainers(ctx context.Context, minComplaints, limit int) ([]domain.Complainer, error)
	UserTimeline(ctx context.Context, userID int64) ([]domain.TimelineDay, error)
	UsersWithSummary(ctx context.Context, limit, offset int) ([]domain.UserComplaintSummary, error)
}

type reportRepository struct {
	db DBTX
}

// NewReportRepository builds repository.
func NewReportRepository(db DBTX) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) UserSummary(ctx context.Context, userID int64, now time.Time) (*domain.UserSummary, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status = 'Closed'),
               COUNT(*) FILTER (WHERE status <> 'Closed'),
               COUNT(*) FILTER (WHERE date_trunc('month', created_at) = date_trunc('month', $2::timestamptz))
        FROM complaints WHERE user_id=$1 AND deleted_at IS NULL`
	var s domain.UserSummary
	if err := r.db.QueryRow(ctx, query, userID, now).Scan(&s.Total, &s.Resolved, &s.Unresolved, &s.ThisMonth); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *reportRepository) SubadminSummary(ctx context.Context, subadminID int64) (*domain.SubadminSummary, error) {
	const query = `
        SELECT
            COUNT(*) FILTER (WHERE status = 'Closed' AND done_by_id = $1),
            COUNT(*) FILTER (WHERE (main_issue_id IS NULL OR main_issue_id = 1) AND status NOT IN ('Closed', 'Rejected')),
            COUNT(*) FILTER (WHERE assigned_to_id = $1),
            COUNT(*) FILTER (WHERE main_issue_id <> 1 OR EXISTS (
                SELECT 1 FROM uncategorized_resolutions ur WHERE ur.complaint_id = c.id))
        FROM complaints c WHERE c.deleted_at IS NULL`
	var s domain.SubadminSummary
	if err := r.db.QueryRow(ctx, query, subadminID).Scan(
		&s.TotalSolved,
		&s.Uncategorized,
		&s.TotalAssigned,
		&s.TotalCategorized,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *reportRepository) AdminSummary(ctx context.Context) (*domain.AdminSummary, error) {
	const totalsQuery = `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE status IN ('Pending', 'Open', 'Assigned')),
            COUNT(*) FILTER (WHERE status = 'Closed'),
            COUNT(*) FILTER (WHERE status = 'Closed' AND EXISTS (
                SELECT 1 FROM staff_members s WHERE s.id = c.done_by_id AND s.role = 'SUBADMIN')),
            COUNT(*) FILTER (WHERE priority = 'High'),
            COUNT(*) FILTER (WHERE severity = 'Minor'),
            COUNT(*) FILTER (WHERE severity = 'Major'),
            COALESCE(AVG(EXTRACT(EPOCH FROM (updated_at - created_at)) / 3600) FILTER (WHERE status = 'Closed'), 0)::float8
        FROM complaints c WHERE c.deleted_at IS NULL`
	s := domain.AdminSummary{FeedbackByLabel: map[domain.FeedbackLabel]int64{}}
	if err := r.db.QueryRow(ctx, totalsQuery).Scan(
		&s.TotalComplaints,
		&s.Pending,
		&s.Resolved,
		&s.ResolvedBySubadmin,
		&s.HighPriority,
		&s.Minor,
		&s.Major,
		&s.AvgResolutionHours,
	); err != nil {
		return nil, err
	}

	const peopleQuery = `
        SELECT
            (SELECT COUNT(*) FROM ai_resolution_logs WHERE is_resolved),
            (SELECT COUNT(*) FROM users),
            (SELECT COUNT(*) FROM staff_members WHERE role = 'SUBADMIN')`
	if err := r.db.QueryRow(ctx, peopleQuery).Scan(&s.AIResolved, &s.TotalUsers, &s.TotalSubadmins); err != nil {
		return nil, err
	}

	const categoriesQuery = `
        SELECT mi.id, mi.name, COUNT(c.id)
        FROM main_issues mi
        LEFT JOIN complaints c ON c.main_issue_id = mi.id AND c.deleted_at IS NULL
        GROUP BY mi.id, mi.name
        ORDER BY mi.id`
	rows, err := r.db.Query(ctx, categoriesQuery)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var cat domain.CategoryCount
		if err := rows.Scan(&cat.MainIssueID, &cat.Name, &cat.Count); err != nil {
			rows.Close()
			return nil, err
		}
		s.Categories = append(s.Categories, cat)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const feedbackQuery = `SELECT label, COUNT(*) FROM complaint_feedback GROUP BY label`
	rows, err = r.db.Query(ctx, feedbackQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var label domain.FeedbackLabel
		var count int64
		if err := rows.Scan(&label, &count); err != nil {
			return nil, err
		}
		s.FeedbackByLabel[label] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *reportRepository) SubadminPerformance(ctx context.Context) ([]domain.SubadminPerformance, error) {
	const query = `
        SELECT s.id, s.name, s.staff_no,
               COUNT(c.id),
               COALESCE(AVG(EXTRACT(EPOCH FROM (c.updated_at - c.created_at)) / 3600), 0)::float8
        FROM staff_members s
        LEFT JOIN complaints c ON c.done_by_id = s.id AND c.status = 'Closed' AND c.deleted_at IS NULL
        WHERE s.role = 'SUBADMIN'
        GROUP BY s.id, s.name, s.staff_no
        ORDER BY COUNT(c.id) DESC, s.name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SubadminPerformance
	for rows.Next() {
		var p domain.SubadminPerformance
		if err := rows.Scan(&p.SubadminID, &p.Name, &p.StaffNo, &p.TotalSolved, &p.AvgHours); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *reportRepository) RepeatedComplaints(ctx context.Context, minCount int) ([]domain.RepeatedComplaint, error) {
	const query = `
        SELECT u.id, u.staff_no, u.name,
               COALESCE(mi.name, ''), COALESCE(ri.name, ''), COALESCE(sri.name, ''),
               COUNT(*)
        FROM complaints c
        JOIN users u ON u.id = c.user_id
        LEFT JOIN main_issues mi ON mi.id = c.main_issue_id
        LEFT JOIN related_issues ri ON ri.id = c.related_issue_id
        LEFT JOIN sub_related_issues sri ON sri.id = c.sub_related_issue_id
        WHERE c.deleted_at IS NULL
        GROUP BY u.id, u.staff_no, u.name,
                 c.main_issue_id, mi.name, c.related_issue_id, ri.name, c.sub_related_issue_id, sri.name
        HAVING COUNT(*) >= $1
        ORDER BY COUNT(*) DESC, u.staff_no ASC`
	rows, err := r.db.Query(ctx, query, minCount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RepeatedComplaint
	for rows.Next() {
		var rc domain.RepeatedComplaint
		if err := rows.Scan(&rc.UserID, &rc.StaffNo, &rc.UserName,
			&rc.MainIssue, &rc.RelatedIssue, &rc.SubRelatedIssue, &rc.Count); err != nil {
			return nil, err
		}
		result = append(result, rc)
	}
	return result, rows.Err()
}

func (r *reportRepository) TopComplainers(ctx context.Context, minComplaints, limit int) ([]domain.Complainer, error) {
	const query = `
        WITH per_user AS (
            SELECT c.user_id,
                   COUNT(*) AS total,
                   COUNT(DISTINCT (c.created_at AT TIME ZONE 'UTC')::date) AS active_days,
                   MIN(c.created_at) AS first_at,
                   MAX(c.created_at) AS last_at
            FROM complaints c
            WHERE c.deleted_at IS NULL
            GROUP BY c.user_id
            HAVING COUNT(*) >= $1
        )
        SELECT u.id, u.staff_no, u.name, p.total, p.active_days,
               ROUND(p.total::numeric / p.active_days, 2)::float8 AS avg_per_day,
               p.first_at, p.last_at
        FROM per_user p
        JOIN users u ON u.id = p.user_id
        ORDER BY avg_per_day DESC, p.total DESC, u.id ASC
        LIMIT $2`
	rows, err := r.db.Query(ctx, query, minComplaints, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Complainer
	for rows.Next() {
		var c domain.Complainer
		if err := rows.Scan(&c.UserID, &c.StaffNo, &c.Name, &c.TotalComplaints, &c.ActiveDays,
			&c.AvgPerDay, &c.FirstComplaint, &c.LastComplaint); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *reportRepository) UserTimeline(ctx context.Context, userID int64) ([]domain.TimelineDay, error) {
	const query = `
        SELECT (created_at AT TIME ZONE 'UTC')::date AS day, COUNT(*)
        FROM complaints
        WHERE user_id=$1 AND deleted_at IS NULL
        GROUP BY day
        ORDER BY day DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TimelineDay
	for rows.Next() {
		var day domain.TimelineDay
		if err := rows.Scan(&day.Day, &day.Count); err != nil {
			return nil, err
		}
		result = append(result, day)
	}
	return result, rows.Err()
}

func (r *reportRepository) UsersWithSummary(ctx context.Context, limit, offset int) ([]domain.UserComplaintSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`
        SELECT u.id, u.staff_no, u.name, u.department,
               COUNT(c.id),
               COUNT(c.id) FILTER (WHERE c.status = 'Closed'),
               COUNT(c.id) FILTER (WHERE c.status <> 'Closed'),
               MAX(c.created_at)
        FROM users u
        LEFT JOIN complaints c ON c.user_id = u.id AND c.deleted_at IS NULL
        GROUP BY u.id, u.staff_no, u.name, u.department
        ORDER BY u.staff_no ASC
        LIMIT %d OFFSET %d`, limit, offset)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.UserComplaintSummary
	for rows.Next() {
		var s domain.UserComplaintSummary
		if err := rows.Scan(&s.UserID, &s.StaffNo, &s.Name, &s.Department,
			&s.Total, &s.Resolved, &s.Pending, &s.LastComplaintAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
