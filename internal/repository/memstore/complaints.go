package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

type complaintRepo struct {
	*view
}

func (r *complaintRepo) Create(ctx context.Context, complaint *domain.Complaint) error {
	return r.do(ctx, func(d *dataset) error {
		now := r.now()
		complaint.ID = d.nextID("complaints")
		complaint.CreatedAt = now
		complaint.UpdatedAt = now
		d.complaints[complaint.ID] = copyComplaint(*complaint)
		return nil
	})
}

func (r *complaintRepo) Update(ctx context.Context, complaint *domain.Complaint) error {
	return r.do(ctx, func(d *dataset) error {
		stored, ok := d.complaints[complaint.ID]
		if !ok || stored.DeletedAt != nil {
			return pgx.ErrNoRows
		}
		stored.MainIssueID = clonePtr(complaint.MainIssueID)
		stored.RelatedIssueID = clonePtr(complaint.RelatedIssueID)
		stored.SubRelatedIssueID = clonePtr(complaint.SubRelatedIssueID)
		stored.IssueDescriptionID = clonePtr(complaint.IssueDescriptionID)
		stored.FinalSubRelatedIssueID = clonePtr(complaint.FinalSubRelatedIssueID)
		stored.Severity = clonePtr(complaint.Severity)
		stored.Status = complaint.Status
		stored.AssignedToID = clonePtr(complaint.AssignedToID)
		stored.DoneByID = clonePtr(complaint.DoneByID)
		stored.UpdatedAt = r.now()
		d.complaints[complaint.ID] = stored
		complaint.UpdatedAt = stored.UpdatedAt
		return nil
	})
}

func (r *complaintRepo) GetByID(ctx context.Context, id int64) (*domain.Complaint, error) {
	var out *domain.Complaint
	err := r.do(ctx, func(d *dataset) error {
		stored, ok := d.complaints[id]
		if !ok || stored.DeletedAt != nil {
			return pgx.ErrNoRows
		}
		c := copyComplaint(stored)
		out = &c
		return nil
	})
	return out, err
}

// GetForUpdate needs no row lock here: transactions are already serialized.
func (r *complaintRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Complaint, error) {
	return r.GetByID(ctx, id)
}

func (r *complaintRepo) SoftDelete(ctx context.Context, id int64) error {
	return r.do(ctx, func(d *dataset) error {
		stored, ok := d.complaints[id]
		if !ok || stored.DeletedAt != nil {
			return pgx.ErrNoRows
		}
		now := r.now()
		stored.DeletedAt = &now
		stored.UpdatedAt = now
		d.complaints[id] = stored
		return nil
	})
}

func (r *complaintRepo) List(ctx context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	var result []domain.Complaint
	err := r.do(ctx, func(d *dataset) error {
		for _, c := range d.complaints {
			if d.matches(c, filter) {
				result = append(result, copyComplaint(c))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(filter.Offset, 0)
	if offset >= len(result) {
		return nil, nil
	}
	end := min(offset+limit, len(result))
	return result[offset:end], nil
}

func (d *dataset) matches(c domain.Complaint, filter repository.ComplaintFilter) bool {
	if c.DeletedAt != nil {
		return false
	}
	if filter.UserID != nil && c.UserID != *filter.UserID {
		return false
	}
	if filter.AssignedToID != nil && !equalPtr(c.AssignedToID, *filter.AssignedToID) {
		return false
	}
	if filter.DoneByID != nil && !equalPtr(c.DoneByID, *filter.DoneByID) {
		return false
	}
	if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, c.Status) {
		return false
	}
	if filter.SentinelOnly && !c.IsSentinelCategorized() {
		return false
	}
	if filter.CategorizedOnly && !d.isCategorized(c) {
		return false
	}
	if filter.Escalation != nil && !d.isEscalated(c, filter.Escalation.Departments) {
		return false
	}
	return true
}

func (d *dataset) isEscalated(c domain.Complaint, departments []string) bool {
	if c.Priority == domain.ComplaintPriorityHigh {
		return true
	}
	department := strings.TrimSpace(d.users[c.UserID].Department)
	for _, candidate := range departments {
		if department != "" && strings.EqualFold(department, strings.TrimSpace(candidate)) {
			return true
		}
	}
	return false
}

func (d *dataset) isCategorized(c domain.Complaint) bool {
	if c.MainIssueID != nil && *c.MainIssueID != domain.OthersIssueID {
		return true
	}
	_, triaged := d.resolutions[c.ID]
	return triaged
}

func equalPtr(p *int64, v int64) bool {
	return p != nil && *p == v
}

func copyComplaint(c domain.Complaint) domain.Complaint {
	c.MainIssueID = clonePtr(c.MainIssueID)
	c.RelatedIssueID = clonePtr(c.RelatedIssueID)
	c.SubRelatedIssueID = clonePtr(c.SubRelatedIssueID)
	c.OriginalMainIssueID = clonePtr(c.OriginalMainIssueID)
	c.IssueDescriptionID = clonePtr(c.IssueDescriptionID)
	c.FinalSubRelatedIssueID = clonePtr(c.FinalSubRelatedIssueID)
	c.Severity = clonePtr(c.Severity)
	c.AssignedToID = clonePtr(c.AssignedToID)
	c.DoneByID = clonePtr(c.DoneByID)
	c.DeletedAt = clonePtr(c.DeletedAt)
	return c
}
