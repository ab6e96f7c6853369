package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

type reviewRepo struct {
	*view
}

func (r *reviewRepo) CreatePendingReview(ctx context.Context, review *domain.PendingReview) error {
	return r.do(ctx, func(d *dataset) error {
		if _, exists := d.reviews[review.ComplaintID]; exists {
			return repository.ErrDuplicate
		}
		now := r.now()
		review.ID = d.nextID("pending_complaint_reviews")
		review.CreatedAt = now
		review.UpdatedAt = now
		stored := *review
		stored.ReviewedByID = clonePtr(review.ReviewedByID)
		d.reviews[review.ComplaintID] = stored
		return nil
	})
}

func (r *reviewRepo) GetPendingReview(ctx context.Context, complaintID int64) (*domain.PendingReview, error) {
	var out *domain.PendingReview
	err := r.do(ctx, func(d *dataset) error {
		review, ok := d.reviews[complaintID]
		if !ok {
			return pgx.ErrNoRows
		}
		review.ReviewedByID = clonePtr(review.ReviewedByID)
		out = &review
		return nil
	})
	return out, err
}

func (r *reviewRepo) UpdatePendingReviewStatus(ctx context.Context, complaintID int64, status domain.ReviewStatus, reviewerID int64) error {
	return r.do(ctx, func(d *dataset) error {
		review, ok := d.reviews[complaintID]
		if !ok {
			return pgx.ErrNoRows
		}
		review.Status = status
		review.ReviewedByID = &reviewerID
		review.UpdatedAt = r.now()
		d.reviews[complaintID] = review
		return nil
	})
}

func (r *reviewRepo) CreateUncategorizedResolution(ctx context.Context, resolution *domain.UncategorizedResolution) error {
	return r.do(ctx, func(d *dataset) error {
		if _, exists := d.resolutions[resolution.ComplaintID]; exists {
			return repository.ErrDuplicate
		}
		resolution.ID = d.nextID("uncategorized_resolutions")
		resolution.CreatedAt = r.now()
		stored := *resolution
		stored.RelatedIssueID = clonePtr(resolution.RelatedIssueID)
		stored.SubRelatedIssueID = clonePtr(resolution.SubRelatedIssueID)
		stored.IssueDescriptionID = clonePtr(resolution.IssueDescriptionID)
		d.resolutions[resolution.ComplaintID] = stored
		return nil
	})
}

func (r *reviewRepo) GetUncategorizedResolution(ctx context.Context, complaintID int64) (*domain.UncategorizedResolution, error) {
	var out *domain.UncategorizedResolution
	err := r.do(ctx, func(d *dataset) error {
		res, ok := d.resolutions[complaintID]
		if !ok {
			return pgx.ErrNoRows
		}
		res.RelatedIssueID = clonePtr(res.RelatedIssueID)
		res.SubRelatedIssueID = clonePtr(res.SubRelatedIssueID)
		res.IssueDescriptionID = clonePtr(res.IssueDescriptionID)
		out = &res
		return nil
	})
	return out, err
}

func (r *reviewRepo) CreateDirectSolution(ctx context.Context, solution *domain.DirectSolution) error {
	return r.do(ctx, func(d *dataset) error {
		solution.ID = d.nextID("direct_solutions")
		solution.CreatedAt = r.now()
		d.directs[solution.ComplaintID] = *solution
		return nil
	})
}

func (r *reviewRepo) GetDirectSolution(ctx context.Context, complaintID int64) (*domain.DirectSolution, error) {
	var out *domain.DirectSolution
	err := r.do(ctx, func(d *dataset) error {
		sol, ok := d.directs[complaintID]
		if !ok {
			return pgx.ErrNoRows
		}
		out = &sol
		return nil
	})
	return out, err
}

type feedbackRepo struct {
	*view
}

func (r *feedbackRepo) Create(ctx context.Context, feedback *domain.Feedback) error {
	return r.do(ctx, func(d *dataset) error {
		for _, existing := range d.feedback {
			if existing.ComplaintID == feedback.ComplaintID && existing.UserID == feedback.UserID {
				return repository.ErrDuplicate
			}
		}
		feedback.ID = d.nextID("complaint_feedback")
		feedback.CreatedAt = r.now()
		d.feedback[feedback.ID] = *feedback
		return nil
	})
}

func (r *feedbackRepo) GetByComplaint(ctx context.Context, complaintID, userID int64) (*domain.Feedback, error) {
	var out *domain.Feedback
	err := r.do(ctx, func(d *dataset) error {
		for _, fb := range d.feedback {
			if fb.ComplaintID == complaintID && fb.UserID == userID {
				out = &fb
				return nil
			}
		}
		return pgx.ErrNoRows
	})
	return out, err
}

type resolutionLogRepo struct {
	*view
}

func (r *resolutionLogRepo) Create(ctx context.Context, entry *domain.ResolutionLog) error {
	return r.do(ctx, func(d *dataset) error {
		entry.ID = d.nextID("ai_resolution_logs")
		entry.CreatedAt = r.now()
		stored := *entry
		stored.UserID = clonePtr(entry.UserID)
		stored.StaffID = clonePtr(entry.StaffID)
		stored.ComplaintID = clonePtr(entry.ComplaintID)
		d.logs = append(d.logs, stored)
		return nil
	})
}

func (r *resolutionLogRepo) ListByComplaint(ctx context.Context, complaintID int64) ([]domain.ResolutionLog, error) {
	var result []domain.ResolutionLog
	err := r.do(ctx, func(d *dataset) error {
		for _, entry := range d.logs {
			if entry.ComplaintID != nil && *entry.ComplaintID == complaintID {
				result = append(result, entry)
			}
		}
		return nil
	})
	return result, err
}

type userRepo struct {
	*view
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	return r.do(ctx, func(d *dataset) error {
		for _, existing := range d.users {
			if existing.StaffNo == user.StaffNo {
				return repository.ErrDuplicate
			}
		}
		now := r.now()
		user.ID = d.nextID("users")
		user.CreatedAt = now
		user.UpdatedAt = now
		d.users[user.ID] = *user
		return nil
	})
}

func (r *userRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.do(ctx, func(d *dataset) error {
		user, ok := d.users[id]
		if !ok {
			return pgx.ErrNoRows
		}
		user.PasswordHash = passwordHash
		user.UpdatedAt = r.now()
		d.users[id] = user
		return nil
	})
}

func (r *userRepo) UpdateProfile(ctx context.Context, id int64, name, department string) error {
	return r.do(ctx, func(d *dataset) error {
		user, ok := d.users[id]
		if !ok {
			return pgx.ErrNoRows
		}
		user.Name = name
		user.Department = department
		user.UpdatedAt = r.now()
		d.users[id] = user
		return nil
	})
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var out *domain.User
	err := r.do(ctx, func(d *dataset) error {
		user, ok := d.users[id]
		if !ok {
			return pgx.ErrNoRows
		}
		out = &user
		return nil
	})
	return out, err
}

func (r *userRepo) GetByStaffNo(ctx context.Context, staffNo string) (*domain.User, error) {
	var out *domain.User
	err := r.do(ctx, func(d *dataset) error {
		for _, user := range d.users {
			if user.StaffNo == staffNo {
				out = &user
				return nil
			}
		}
		return pgx.ErrNoRows
	})
	return out, err
}

type staffRepo struct {
	*view
}

func (r *staffRepo) Create(ctx context.Context, staff *domain.StaffMember) error {
	return r.do(ctx, func(d *dataset) error {
		for _, existing := range d.staff {
			if existing.StaffNo == staff.StaffNo {
				return repository.ErrDuplicate
			}
		}
		now := r.now()
		staff.ID = d.nextID("staff_members")
		staff.CreatedAt = now
		staff.UpdatedAt = now
		d.staff[staff.ID] = *staff
		return nil
	})
}

func (r *staffRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.do(ctx, func(d *dataset) error {
		staff, ok := d.staff[id]
		if !ok {
			return pgx.ErrNoRows
		}
		staff.PasswordHash = passwordHash
		staff.UpdatedAt = r.now()
		d.staff[id] = staff
		return nil
	})
}

func (r *staffRepo) UpdateProfile(ctx context.Context, id int64, name, department string) error {
	return r.do(ctx, func(d *dataset) error {
		staff, ok := d.staff[id]
		if !ok {
			return pgx.ErrNoRows
		}
		staff.Name = name
		staff.Department = department
		staff.UpdatedAt = r.now()
		d.staff[id] = staff
		return nil
	})
}

func (r *staffRepo) GetByID(ctx context.Context, id int64) (*domain.StaffMember, error) {
	var out *domain.StaffMember
	err := r.do(ctx, func(d *dataset) error {
		staff, ok := d.staff[id]
		if !ok {
			return pgx.ErrNoRows
		}
		out = &staff
		return nil
	})
	return out, err
}

func (r *staffRepo) GetByStaffNo(ctx context.Context, staffNo string) (*domain.StaffMember, error) {
	var out *domain.StaffMember
	err := r.do(ctx, func(d *dataset) error {
		for _, staff := range d.staff {
			if staff.StaffNo == staffNo {
				out = &staff
				return nil
			}
		}
		return pgx.ErrNoRows
	})
	return out, err
}

func (r *staffRepo) GetByName(ctx context.Context, role domain.StaffRole, name string) (*domain.StaffMember, error) {
	var out *domain.StaffMember
	err := r.do(ctx, func(d *dataset) error {
		name = strings.TrimSpace(name)
		for _, staff := range d.staff {
			if staff.Role != role || !strings.EqualFold(staff.Name, name) {
				continue
			}
			if out == nil || staff.ID < out.ID {
				s := staff
				out = &s
			}
		}
		if out == nil {
			return pgx.ErrNoRows
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *staffRepo) List(ctx context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	var result []domain.StaffMember
	err := r.do(ctx, func(d *dataset) error {
		for _, staff := range d.staff {
			if filter.Role != nil && staff.Role != *filter.Role {
				continue
			}
			if filter.Active != nil && staff.Active != *filter.Active {
				continue
			}
			result = append(result, staff)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := max(filter.Offset, 0)
	if offset >= len(result) {
		return nil, nil
	}
	return result[offset:min(offset+limit, len(result))], nil
}
