package memstore

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

type reportRepo struct {
	*view
}

func (r *reportRepo) UserSummary(ctx context.Context, userID int64, now time.Time) (*domain.UserSummary, error) {
	var s domain.UserSummary
	err := r.do(ctx, func(d *dataset) error {
		year, month, _ := now.Date()
		for _, c := range d.complaints {
			if c.DeletedAt != nil || c.UserID != userID {
				continue
			}
			s.Total++
			if c.Status == domain.ComplaintStatusClosed {
				s.Resolved++
			} else {
				s.Unresolved++
			}
			if y, m, _ := c.CreatedAt.In(now.Location()).Date(); y == year && m == month {
				s.ThisMonth++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *reportRepo) SubadminSummary(ctx context.Context, subadminID int64) (*domain.SubadminSummary, error) {
	var s domain.SubadminSummary
	err := r.do(ctx, func(d *dataset) error {
		for _, c := range d.complaints {
			if c.DeletedAt != nil {
				continue
			}
			if c.Status == domain.ComplaintStatusClosed && equalPtr(c.DoneByID, subadminID) {
				s.TotalSolved++
			}
			if c.IsSentinelCategorized() && !c.IsTerminal() {
				s.Uncategorized++
			}
			if equalPtr(c.AssignedToID, subadminID) {
				s.TotalAssigned++
			}
			if d.isCategorized(c) {
				s.TotalCategorized++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *reportRepo) AdminSummary(ctx context.Context) (*domain.AdminSummary, error) {
	s := domain.AdminSummary{FeedbackByLabel: map[domain.FeedbackLabel]int64{}}
	err := r.do(ctx, func(d *dataset) error {
		perMain := map[int64]int64{}
		var closedHours float64
		for _, c := range d.complaints {
			if c.DeletedAt != nil {
				continue
			}
			s.TotalComplaints++
			switch c.Status {
			case domain.ComplaintStatusPending, domain.ComplaintStatusOpen, domain.ComplaintStatusAssigned:
				s.Pending++
			case domain.ComplaintStatusClosed:
				s.Resolved++
				closedHours += c.UpdatedAt.Sub(c.CreatedAt).Hours()
				if c.DoneByID != nil && d.staff[*c.DoneByID].Role == domain.StaffRoleSubadmin {
					s.ResolvedBySubadmin++
				}
			}
			if c.Priority == domain.ComplaintPriorityHigh {
				s.HighPriority++
			}
			if c.Severity != nil {
				switch *c.Severity {
				case domain.SeverityMinor:
					s.Minor++
				case domain.SeverityMajor:
					s.Major++
				}
			}
			if c.MainIssueID != nil {
				perMain[*c.MainIssueID]++
			}
		}
		if s.Resolved > 0 {
			s.AvgResolutionHours = closedHours / float64(s.Resolved)
		}
		for _, entry := range d.logs {
			if entry.IsResolved {
				s.AIResolved++
			}
		}
		s.TotalUsers = int64(len(d.users))
		for _, staff := range d.staff {
			if staff.Role == domain.StaffRoleSubadmin {
				s.TotalSubadmins++
			}
		}
		for _, node := range d.nodes[domain.IssueLevelMain] {
			s.Categories = append(s.Categories, domain.CategoryCount{
				MainIssueID: node.ID,
				Name:        node.Name,
				Count:       perMain[node.ID],
			})
		}
		for _, fb := range d.feedback {
			s.FeedbackByLabel[fb.Label]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(s.Categories, func(i, j int) bool { return s.Categories[i].MainIssueID < s.Categories[j].MainIssueID })
	return &s, nil
}

func (r *reportRepo) SubadminPerformance(ctx context.Context) ([]domain.SubadminPerformance, error) {
	var result []domain.SubadminPerformance
	err := r.do(ctx, func(d *dataset) error {
		for _, staff := range d.staff {
			if staff.Role != domain.StaffRoleSubadmin {
				continue
			}
			perf := domain.SubadminPerformance{SubadminID: staff.ID, Name: staff.Name, StaffNo: staff.StaffNo}
			var hours float64
			for _, c := range d.complaints {
				if c.DeletedAt != nil || c.Status != domain.ComplaintStatusClosed || !equalPtr(c.DoneByID, staff.ID) {
					continue
				}
				perf.TotalSolved++
				hours += c.UpdatedAt.Sub(c.CreatedAt).Hours()
			}
			if perf.TotalSolved > 0 {
				perf.AvgHours = hours / float64(perf.TotalSolved)
			}
			result = append(result, perf)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalSolved != result[j].TotalSolved {
			return result[i].TotalSolved > result[j].TotalSolved
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

type repeatKey struct {
	userID                int64
	main, related, subRel int64
}

func (r *reportRepo) RepeatedComplaints(ctx context.Context, minCount int) ([]domain.RepeatedComplaint, error) {
	var result []domain.RepeatedComplaint
	err := r.do(ctx, func(d *dataset) error {
		counts := map[repeatKey]int64{}
		for _, c := range d.complaints {
			if c.DeletedAt != nil {
				continue
			}
			counts[repeatKey{c.UserID, derefID(c.MainIssueID), derefID(c.RelatedIssueID), derefID(c.SubRelatedIssueID)}]++
		}
		for key, count := range counts {
			if count < int64(minCount) {
				continue
			}
			user := d.users[key.userID]
			result = append(result, domain.RepeatedComplaint{
				UserID:          key.userID,
				StaffNo:         user.StaffNo,
				UserName:        user.Name,
				MainIssue:       d.nodeName(domain.IssueLevelMain, key.main),
				RelatedIssue:    d.nodeName(domain.IssueLevelRelated, key.related),
				SubRelatedIssue: d.nodeName(domain.IssueLevelSubRelated, key.subRel),
				Count:           count,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].StaffNo < result[j].StaffNo
	})
	return result, nil
}

func (r *reportRepo) TopComplainers(ctx context.Context, minComplaints, limit int) ([]domain.Complainer, error) {
	var result []domain.Complainer
	err := r.do(ctx, func(d *dataset) error {
		perUser := map[int64]*domain.Complainer{}
		days := map[int64]map[time.Time]struct{}{}
		for _, c := range d.complaints {
			if c.DeletedAt != nil {
				continue
			}
			entry, ok := perUser[c.UserID]
			if !ok {
				user := d.users[c.UserID]
				entry = &domain.Complainer{UserID: c.UserID, StaffNo: user.StaffNo, Name: user.Name,
					FirstComplaint: c.CreatedAt, LastComplaint: c.CreatedAt}
				perUser[c.UserID] = entry
				days[c.UserID] = map[time.Time]struct{}{}
			}
			entry.TotalComplaints++
			if c.CreatedAt.Before(entry.FirstComplaint) {
				entry.FirstComplaint = c.CreatedAt
			}
			if c.CreatedAt.After(entry.LastComplaint) {
				entry.LastComplaint = c.CreatedAt
			}
			days[c.UserID][utcDay(c.CreatedAt)] = struct{}{}
		}
		for userID, entry := range perUser {
			if entry.TotalComplaints < int64(minComplaints) {
				continue
			}
			entry.ActiveDays = int64(len(days[userID]))
			entry.AvgPerDay = math.Round(float64(entry.TotalComplaints)/float64(entry.ActiveDays)*100) / 100
			result = append(result, *entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].AvgPerDay != result[j].AvgPerDay {
			return result[i].AvgPerDay > result[j].AvgPerDay
		}
		if result[i].TotalComplaints != result[j].TotalComplaints {
			return result[i].TotalComplaints > result[j].TotalComplaints
		}
		return result[i].UserID < result[j].UserID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *reportRepo) UserTimeline(ctx context.Context, userID int64) ([]domain.TimelineDay, error) {
	var result []domain.TimelineDay
	err := r.do(ctx, func(d *dataset) error {
		counts := map[time.Time]int64{}
		for _, c := range d.complaints {
			if c.DeletedAt != nil || c.UserID != userID {
				continue
			}
			counts[utcDay(c.CreatedAt)]++
		}
		for day, count := range counts {
			result = append(result, domain.TimelineDay{Day: day, Count: count})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Day.After(result[j].Day) })
	return result, nil
}

func (r *reportRepo) UsersWithSummary(ctx context.Context, limit, offset int) ([]domain.UserComplaintSummary, error) {
	var result []domain.UserComplaintSummary
	err := r.do(ctx, func(d *dataset) error {
		perUser := make(map[int64]*domain.UserComplaintSummary, len(d.users))
		for id, user := range d.users {
			perUser[id] = &domain.UserComplaintSummary{
				UserID:     id,
				StaffNo:    user.StaffNo,
				Name:       user.Name,
				Department: user.Department,
			}
		}
		for _, c := range d.complaints {
			entry, ok := perUser[c.UserID]
			if c.DeletedAt != nil || !ok {
				continue
			}
			entry.Total++
			if c.Status == domain.ComplaintStatusClosed {
				entry.Resolved++
			} else {
				entry.Pending++
			}
			if entry.LastComplaintAt == nil || c.CreatedAt.After(*entry.LastComplaintAt) {
				created := c.CreatedAt
				entry.LastComplaintAt = &created
			}
		}
		for _, entry := range perUser {
			result = append(result, *entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StaffNo < result[j].StaffNo })

	if limit <= 0 {
		limit = 50
	}
	offset = max(offset, 0)
	if offset >= len(result) {
		return nil, nil
	}
	return result[offset:min(offset+limit, len(result))], nil
}

func (d *dataset) nodeName(level domain.IssueLevel, id int64) string {
	if id == 0 {
		return ""
	}
	return d.nodes[level][id].Name
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
