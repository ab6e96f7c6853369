package service

import (
	"context"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const (
	repeatThreshold    = 2
	topComplainerMin   = 5
	topComplainerLimit = 10
)

// seniorDepartments are escalated regardless of the priority the user picked.
var seniorDepartments = []string{
	"SENIOR DEPUTY GENERAL MANAGER",
	"ADDITIONAL GENERAL MANAGER",
	"GENERAL MANAGER",
}

// ReportService serves the staff work queues and dashboards. Soft-deleted complaints never appear.
type ReportService struct {
	store repository.Store
}

// NewReportService creates the service.
func NewReportService(store repository.Store) *ReportService {
	return &ReportService{store: store}
}

// PendingQueue lists complaints still filed under "Others" that await triage or resolution.
func (s *ReportService) PendingQueue(ctx context.Context, page Page) ([]ComplaintView, error) {
	return s.list(ctx, repository.ComplaintFilter{
		Statuses:     []domain.ComplaintStatus{domain.ComplaintStatusPending, domain.ComplaintStatusOpen},
		SentinelOnly: true,
	}, page)
}

// GeneralQueue lists complaints with a real category, including triaged ones.
func (s *ReportService) GeneralQueue(ctx context.Context, page Page) ([]ComplaintView, error) {
	return s.list(ctx, repository.ComplaintFilter{CategorizedOnly: true}, page)
}

// AssignedTo lists complaints assigned to a subadmin.
func (s *ReportService) AssignedTo(ctx context.Context, subadminID int64, page Page) ([]ComplaintView, error) {
	return s.list(ctx, repository.ComplaintFilter{AssignedToID: &subadminID}, page)
}

// SolvedBy lists complaints a subadmin closed.
func (s *ReportService) SolvedBy(ctx context.Context, subadminID int64, page Page) ([]ComplaintView, error) {
	return s.list(ctx, repository.ComplaintFilter{
		DoneByID: &subadminID,
		Statuses: []domain.ComplaintStatus{domain.ComplaintStatusClosed},
	}, page)
}

// AllComplaints lists every complaint for administrators.
func (s *ReportService) AllComplaints(ctx context.Context, page Page) ([]ComplaintView, error) {
	return s.list(ctx, repository.ComplaintFilter{}, page)
}

// SubadminDashboard summarizes a subadmin's workload.
func (s *ReportService) SubadminDashboard(ctx context.Context, subadminID int64) (*domain.SubadminSummary, error) {
	summary, err := s.store.Repos().Reports.SubadminSummary(ctx, subadminID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return summary, nil
}

// AdminDashboard summarizes every complaint.
func (s *ReportService) AdminDashboard(ctx context.Context) (*domain.AdminSummary, error) {
	summary, err := s.store.Repos().Reports.AdminSummary(ctx)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return summary, nil
}

// SubadminPerformance ranks subadmins by closed complaints.
func (s *ReportService) SubadminPerformance(ctx context.Context) ([]domain.SubadminPerformance, error) {
	perf, err := s.store.Repos().Reports.SubadminPerformance(ctx)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return perf, nil
}

// RepeatedComplaints lists users who filed the same category more than once.
func (s *ReportService) RepeatedComplaints(ctx context.Context) ([]domain.RepeatedComplaint, error) {
	rows, err := s.store.Repos().Reports.RepeatedComplaints(ctx, repeatThreshold)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return rows, nil
}

// TopComplainers returns the ten most frequent complainers among users with at least five complaints.
func (s *ReportService) TopComplainers(ctx context.Context) ([]domain.Complainer, error) {
	rows, err := s.store.Repos().Reports.TopComplainers(ctx, topComplainerMin, topComplainerLimit)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return rows, nil
}

// UserTimeline counts a user's complaints per day, newest day first.
func (s *ReportService) UserTimeline(ctx context.Context, userID int64) ([]domain.TimelineDay, error) {
	repos := s.store.Repos()
	if _, err := repos.Users.GetByID(ctx, userID); err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	days, err := repos.Reports.UserTimeline(ctx, userID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return days, nil
}

// UsersSummary lists every user with their complaint counts.
func (s *ReportService) UsersSummary(ctx context.Context, page Page) ([]domain.UserComplaintSummary, error) {
	rows, err := s.store.Repos().Reports.UsersWithSummary(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return rows, nil
}

// HighPriorityComplaints lists High priority complaints and those raised by senior management.
func (s *ReportService) HighPriorityComplaints(ctx context.Context, page Page) ([]ComplaintView, error) {
	return s.list(ctx, repository.ComplaintFilter{
		Escalation: &repository.Escalation{Departments: seniorDepartments},
	}, page)
}

func (s *ReportService) list(ctx context.Context, filter repository.ComplaintFilter, page Page) ([]ComplaintView, error) {
	filter.Limit = page.Limit
	filter.Offset = page.Offset
	repos := s.store.Repos()
	complaints, err := repos.Complaints.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return newViewBuilder(repos).summaries(ctx, complaints)
}
