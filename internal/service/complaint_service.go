package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/classifier"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const defaultComplaintDescription = "No description provided"

// ComplaintService coordinates the user side of complaints.
type ComplaintService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	sanitizer  *classifier.Sanitizer
	logger     *zap.Logger
	now        func() time.Time
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Sanitizer  *classifier.Sanitizer
	Logger     *zap.Logger
	Clock      func() time.Time
}

// ComplaintInput describes a complaint submission. Missing main and related issues
// default to "Others".
type ComplaintInput struct {
	Description       string
	IssueDescription  string
	MainIssueID       *int64
	RelatedIssueID    *int64
	SubRelatedIssueID *int64
	Priority          domain.ComplaintPriority
	IsResolved        bool
	SessionID         string
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sanitizer := deps.Sanitizer
	if sanitizer == nil {
		sanitizer = classifier.NewSanitizer()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &ComplaintService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		sanitizer:  sanitizer,
		logger:     logger,
		now:        now,
	}
}

// Submit files a complaint. Complaints filed under "Others"/"Others" start Pending and
// enter the triage queue; everything else starts Open.
func (s *ComplaintService) Submit(ctx context.Context, userID int64, input ComplaintInput) (*domain.Complaint, error) {
	mainID := domain.OthersIssueID
	if input.MainIssueID != nil {
		mainID = *input.MainIssueID
	}
	relatedID := domain.OthersIssueID
	switch {
	case input.RelatedIssueID != nil:
		relatedID = *input.RelatedIssueID
	case mainID != domain.OthersIssueID:
		return nil, apperrors.NewValidationError("related issue is required", map[string]any{"main_issue_id": mainID})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.ComplaintPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	description := s.sanitizer.Clean(input.Description)
	if description == "" {
		description = s.sanitizer.Clean(input.IssueDescription)
	}
	if description == "" {
		description = defaultComplaintDescription
	}
	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	complaint := &domain.Complaint{
		UserID:         userID,
		Description:    description,
		MainIssueID:    int64Ptr(mainID),
		RelatedIssueID: int64Ptr(relatedID),
		Priority:       priority,
		Status:         domain.InitialStatus(mainID, relatedID),
		IsAIResolved:   input.IsResolved,
	}
	if mainID == domain.OthersIssueID {
		complaint.OriginalMainIssueID = int64Ptr(domain.OthersIssueID)
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := validateChain(ctx, repos.Taxonomy, mainID, relatedID, input.SubRelatedIssueID); err != nil {
			return err
		}
		if complaint.Status != domain.ComplaintStatusPending && input.SubRelatedIssueID != nil {
			complaint.SubRelatedIssueID = int64Ptr(*input.SubRelatedIssueID)
			desc, err := repos.Taxonomy.FirstDescription(ctx, *input.SubRelatedIssueID)
			switch {
			case err == nil:
				complaint.IssueDescriptionID = int64Ptr(desc.ID)
			case !errors.Is(err, pgx.ErrNoRows):
				return apperrors.Storage(err)
			}
		}
		if err := repos.Complaints.Create(ctx, complaint); err != nil {
			return apperrors.Storage(err)
		}
		if complaint.Status == domain.ComplaintStatusPending {
			if err := repos.Reviews.CreatePendingReview(ctx, &domain.PendingReview{
				ComplaintID: complaint.ID,
				Status:      domain.ReviewStatusPending,
			}); err != nil {
				return apperrors.Storage(err)
			}
		}
		return repos.ResolutionLogs.Create(ctx, &domain.ResolutionLog{
			UserID:      int64Ptr(userID),
			ComplaintID: int64Ptr(complaint.ID),
			IsResolved:  input.IsResolved,
			SessionID:   sessionID,
			Action:      domain.ActionSubmitComplaint,
		})
	})
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	s.logger.Info("complaint submitted",
		zap.Int64("complaint_id", complaint.ID),
		zap.Int64("user_id", userID),
		zap.String("status", string(complaint.Status)),
	)
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		Actor:       userActor(userID),
		Payload: events.ComplaintCreatedPayload{
			Status:         complaint.Status,
			Priority:       complaint.Priority,
			MainIssueID:    mainID,
			RelatedIssueID: relatedID,
		},
	})
	return complaint, nil
}

// validateChain checks that every given node exists under its parent.
func validateChain(ctx context.Context, repo repository.TaxonomyRepository, mainID, relatedID int64, subID *int64) error {
	if _, err := repo.GetNode(ctx, domain.IssueLevelMain, mainID); err != nil {
		return invalidNode(err, "invalid main issue", mainID)
	}
	related, err := repo.GetNode(ctx, domain.IssueLevelRelated, relatedID)
	if err != nil {
		return invalidNode(err, "invalid related issue", relatedID)
	}
	if related.ParentID == nil || *related.ParentID != mainID {
		return apperrors.NewValidationError("invalid related issue", map[string]any{"id": relatedID, "main_issue_id": mainID})
	}
	if subID == nil {
		return nil
	}
	sub, err := repo.GetNode(ctx, domain.IssueLevelSubRelated, *subID)
	if err != nil {
		return invalidNode(err, "invalid sub-related issue", *subID)
	}
	if sub.ParentID == nil || *sub.ParentID != relatedID {
		return apperrors.NewValidationError("invalid sub-related issue", map[string]any{"id": *subID, "related_issue_id": relatedID})
	}
	return nil
}

func invalidNode(err error, message string, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewValidationError(message, map[string]any{"id": id})
	}
	return apperrors.Storage(err)
}

// LogResolution records whether AI self-service solved the user's problem.
func (s *ComplaintService) LogResolution(ctx context.Context, userID int64, isResolved bool, sessionID string) (*domain.ResolutionLog, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	entry := &domain.ResolutionLog{
		UserID:     int64Ptr(userID),
		IsResolved: isResolved,
		SessionID:  sessionID,
		Action:     domain.ActionSelfService,
	}
	if err := s.store.Repos().ResolutionLogs.Create(ctx, entry); err != nil {
		return nil, apperrors.Storage(err)
	}
	s.logger.Info("resolution logged", zap.Int64("user_id", userID), zap.Bool("is_resolved", isResolved), zap.String("session_id", sessionID))
	return entry, nil
}

// ListForUser returns the user's complaints, newest first. Complaints submitted under
// "Others" keep showing "Others" even after triage.
func (s *ComplaintService) ListForUser(ctx context.Context, userID int64, page Page) ([]ComplaintView, error) {
	repos := s.store.Repos()
	complaints, err := repos.Complaints.List(ctx, repository.ComplaintFilter{
		UserID: &userID,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	builder := newViewBuilder(repos)
	builder.maskOriginal = true
	return builder.summaries(ctx, complaints)
}

// Track returns the user's complaints with solution content and feedback.
func (s *ComplaintService) Track(ctx context.Context, userID int64, page Page) ([]ComplaintView, error) {
	repos := s.store.Repos()
	complaints, err := repos.Complaints.List(ctx, repository.ComplaintFilter{
		UserID: &userID,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	builder := newViewBuilder(repos)
	views := make([]ComplaintView, 0, len(complaints))
	for _, c := range complaints {
		view, err := builder.detailed(ctx, c, &userID)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Summary counts the user's complaints.
func (s *ComplaintService) Summary(ctx context.Context, userID int64) (*domain.UserSummary, error) {
	summary, err := s.store.Repos().Reports.UserSummary(ctx, userID, s.now())
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return summary, nil
}

// SubmitFeedback rates the subadmin who handled a closed complaint. One rating per complaint and user.
func (s *ComplaintService) SubmitFeedback(ctx context.Context, userID, complaintID int64, label domain.FeedbackLabel, comment string) (*domain.Feedback, error) {
	if !label.Valid() {
		return nil, apperrors.NewValidationError("invalid feedback label", map[string]any{"label": label})
	}
	repos := s.store.Repos()
	complaint, err := repos.Complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, notFoundOr(err, "complaint", map[string]any{"complaint_id": complaintID})
	}
	if complaint.UserID != userID {
		return nil, apperrors.NewForbidden("complaint belongs to another user")
	}
	if complaint.Status != domain.ComplaintStatusClosed {
		return nil, apperrors.NewInvalidState("complaint is not resolved", map[string]any{"complaint_id": complaintID, "status": complaint.Status})
	}
	subadminID := complaint.AssignedToID
	if subadminID == nil {
		subadminID = complaint.DoneByID
	}
	if subadminID == nil {
		return nil, apperrors.NewInvalidState("complaint not assigned yet", map[string]any{"complaint_id": complaintID})
	}
	feedback := &domain.Feedback{
		ComplaintID: complaintID,
		UserID:      userID,
		SubadminID:  *subadminID,
		Label:       label,
		Comment:     s.sanitizer.Clean(comment),
	}
	if err := repos.Feedback.Create(ctx, feedback); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("feedback already submitted for this complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.Storage(err)
	}
	return feedback, nil
}
