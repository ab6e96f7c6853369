package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/classifier"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// LifecycleService moves complaints through their status machine.
type LifecycleService struct {
	store      repository.Store
	triage     *TriageService
	dispatcher events.Dispatcher
	sanitizer  *classifier.Sanitizer
	logger     *zap.Logger
	metrics    TransitionRecorder
}

// LifecycleDependencies bundles collaborators.
type LifecycleDependencies struct {
	Store      repository.Store
	Triage     *TriageService
	Dispatcher events.Dispatcher
	Sanitizer  *classifier.Sanitizer
	Logger     *zap.Logger
	Metrics    TransitionRecorder
}

// SubRelatedIssueInput names the sub-related issue a complaint is resolved under.
// RelatedIssueID defaults to the complaint's own related issue.
type SubRelatedIssueInput struct {
	ID             *int64
	Name           string
	RelatedIssueID *int64
}

// ResolutionInput is the payload of a general resolve. Any of SubRelatedIssue,
// IssueDescription or SolutionSteps selects the structured path, otherwise
// DirectSolution is recorded as free text.
type ResolutionInput struct {
	SubRelatedIssue  *SubRelatedIssueInput
	IssueDescription string
	SolutionSteps    []string
	DirectSolution   string
	Severity         *domain.Severity
	DoneByID         *int64
}

func (in ResolutionInput) structured() bool {
	return in.SubRelatedIssue != nil || hasSolutionContent(in.IssueDescription, in.SolutionSteps)
}

func (in ResolutionInput) validate() error {
	if in.structured() {
		if in.SubRelatedIssue == nil || (in.SubRelatedIssue.ID == nil && strings.TrimSpace(in.SubRelatedIssue.Name) == "") {
			return apperrors.NewValidationError("issue description and solution steps require a sub-related issue", nil)
		}
	} else if strings.TrimSpace(in.DirectSolution) == "" {
		return apperrors.NewValidationError("a direct solution or a sub-related issue is required", nil)
	}
	return validateCommon(in.SolutionSteps, in.Severity)
}

// TakeResult reports the complaint state after a take.
type TakeResult struct {
	ComplaintID  int64
	Status       domain.ComplaintStatus
	AssignedToID int64
	AssignedTo   string
}

// RejectResult reports the complaint state after a reject.
type RejectResult struct {
	ComplaintID int64
	Status      domain.ComplaintStatus
}

// NewLifecycleService creates the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sanitizer := deps.Sanitizer
	if sanitizer == nil {
		sanitizer = classifier.NewSanitizer()
	}
	triage := deps.Triage
	if triage == nil {
		triage = NewTriageService(TriageDependencies{
			Store:      deps.Store,
			Dispatcher: deps.Dispatcher,
			Sanitizer:  sanitizer,
			Logger:     logger,
			Metrics:    deps.Metrics,
		})
	}
	return &LifecycleService{
		store:      deps.Store,
		triage:     triage,
		dispatcher: deps.Dispatcher,
		sanitizer:  sanitizer,
		logger:     logger,
		metrics:    deps.Metrics,
	}
}

// Take lets a subadmin claim an unassigned complaint. A Pending complaint is approved and opened.
func (s *LifecycleService) Take(ctx context.Context, subadminID, complaintID int64) (*TakeResult, error) {
	var (
		from   domain.ComplaintStatus
		result TakeResult
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		complaint, err := loadComplaintForUpdate(ctx, repos, complaintID)
		if err != nil {
			return err
		}
		if complaint.IsTerminal() {
			return apperrors.NewInvalidState("complaint is already closed", map[string]any{"complaint_id": complaintID, "status": complaint.Status})
		}
		if complaint.AssignedToID != nil {
			return apperrors.NewConflict("complaint is already assigned", map[string]any{"complaint_id": complaintID})
		}
		if !domain.CanTransition(complaint.Status, domain.ComplaintStatusOpen) {
			return apperrors.NewInvalidState("complaint cannot be taken", map[string]any{"complaint_id": complaintID, "status": complaint.Status})
		}
		from = complaint.Status
		if complaint.Status == domain.ComplaintStatusPending {
			err := repos.Reviews.UpdatePendingReviewStatus(ctx, complaintID, domain.ReviewStatusApproved, subadminID)
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return apperrors.Storage(err)
			}
		}
		complaint.Status = domain.ComplaintStatusOpen
		complaint.AssignedToID = int64Ptr(subadminID)
		if err := repos.Complaints.Update(ctx, complaint); err != nil {
			return notFoundOr(err, "complaint", map[string]any{"complaint_id": complaintID})
		}
		if err := repos.ResolutionLogs.Create(ctx, &domain.ResolutionLog{
			StaffID:     int64Ptr(subadminID),
			ComplaintID: int64Ptr(complaintID),
			Action:      domain.ActionTakeComplaint,
		}); err != nil {
			return apperrors.Storage(err)
		}
		result = TakeResult{
			ComplaintID:  complaintID,
			Status:       complaint.Status,
			AssignedToID: subadminID,
			AssignedTo:   staffName(ctx, repos.Staff, subadminID),
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	s.recordTransition(subadminID, complaintID, from, result.Status)
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:        events.EventComplaintTaken,
		ComplaintID: complaintID,
		Actor:       staffActor(subadminID),
		Payload: events.StatusChangedPayload{
			OldStatus: from,
			NewStatus: result.Status,
		},
	})
	return &result, nil
}

// Reject declines a Pending complaint that is still filed under "Others".
func (s *LifecycleService) Reject(ctx context.Context, subadminID, complaintID int64) (*RejectResult, error) {
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		complaint, err := loadComplaintForUpdate(ctx, repos, complaintID)
		if err != nil {
			return err
		}
		if complaint.Status != domain.ComplaintStatusPending {
			return apperrors.NewInvalidState("complaint is not pending", map[string]any{"complaint_id": complaintID, "status": complaint.Status})
		}
		if !complaint.IsSentinelCategorized() {
			return apperrors.NewInvalidState("categorized complaints cannot be rejected", map[string]any{"complaint_id": complaintID})
		}
		err = repos.Reviews.UpdatePendingReviewStatus(ctx, complaintID, domain.ReviewStatusRejected, subadminID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return apperrors.Storage(err)
		}
		complaint.Status = domain.ComplaintStatusRejected
		if err := repos.Complaints.Update(ctx, complaint); err != nil {
			return notFoundOr(err, "complaint", map[string]any{"complaint_id": complaintID})
		}
		if err := repos.ResolutionLogs.Create(ctx, &domain.ResolutionLog{
			StaffID:     int64Ptr(subadminID),
			ComplaintID: int64Ptr(complaintID),
			Action:      domain.ActionRejectComplaint,
		}); err != nil {
			return apperrors.Storage(err)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	s.recordTransition(subadminID, complaintID, domain.ComplaintStatusPending, domain.ComplaintStatusRejected)
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:        events.EventComplaintRejected,
		ComplaintID: complaintID,
		Actor:       staffActor(subadminID),
		Payload: events.StatusChangedPayload{
			OldStatus: domain.ComplaintStatusPending,
			NewStatus: domain.ComplaintStatusRejected,
		},
	})
	return &RejectResult{ComplaintID: complaintID, Status: domain.ComplaintStatusRejected}, nil
}

// Assign routes a complaint to the subadmin with the given display name, whatever its state.
func (s *LifecycleService) Assign(ctx context.Context, adminID, complaintID int64, subadminName string) (*domain.Complaint, error) {
	name := strings.TrimSpace(subadminName)
	if name == "" {
		return nil, apperrors.NewValidationError("subadmin name is required", nil)
	}
	var (
		from     domain.ComplaintStatus
		assigned *domain.Complaint
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		subadmin, err := repos.Staff.GetByName(ctx, domain.StaffRoleSubadmin, name)
		if err != nil {
			return notFoundOr(err, "subadmin", map[string]any{"name": name})
		}
		if !subadmin.Active {
			return apperrors.NewConflict("subadmin inactive", map[string]any{"staff_id": subadmin.ID})
		}
		complaint, err := loadComplaintForUpdate(ctx, repos, complaintID)
		if err != nil {
			return err
		}
		from = complaint.Status
		complaint.AssignedToID = int64Ptr(subadmin.ID)
		complaint.Status = domain.ComplaintStatusAssigned
		if err := repos.Complaints.Update(ctx, complaint); err != nil {
			return notFoundOr(err, "complaint", map[string]any{"complaint_id": complaintID})
		}
		assigned = complaint
		return nil
	})
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	s.recordTransition(adminID, complaintID, from, domain.ComplaintStatusAssigned)
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:        events.EventComplaintAssigned,
		ComplaintID: complaintID,
		Actor:       staffActor(adminID),
		Payload: events.ComplaintAssignedPayload{
			AssignedToID: *assigned.AssignedToID,
			OldStatus:    from,
		},
	})
	return assigned, nil
}

// ResolveGeneral closes an active complaint. Structured resolutions on complaints still
// filed under "Others" are handed to the triage resolver.
func (s *LifecycleService) ResolveGeneral(ctx context.Context, subadminID, complaintID int64, input ResolutionInput) (*ResolutionResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	var (
		from    domain.ComplaintStatus
		triaged bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		complaint, err := loadComplaintForUpdate(ctx, repos, complaintID)
		if err != nil {
			return err
		}
		if !complaint.IsActive() {
			return apperrors.NewInvalidState("complaint is not open", map[string]any{"complaint_id": complaintID, "status": complaint.Status})
		}
		if err := checkDoneBy(ctx, repos, input.DoneByID); err != nil {
			return err
		}
		from = complaint.Status
		if !input.structured() {
			return s.resolveDirect(ctx, repos, complaint, subadminID, input)
		}
		if complaint.IsSentinelCategorized() {
			triageInput, err := s.triageInputFor(ctx, repos, complaint, input)
			if err != nil {
				return err
			}
			triaged = true
			return s.triage.apply(ctx, repos, complaint, subadminID, triageInput)
		}
		return s.resolveStructured(ctx, repos, complaint, subadminID, input)
	})
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	comment := "direct"
	switch {
	case triaged:
		comment = "uncategorized"
	case input.structured():
		comment = "structured"
	}
	s.recordTransition(subadminID, complaintID, from, domain.ComplaintStatusClosed)
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:        events.EventComplaintResolved,
		ComplaintID: complaintID,
		Actor:       staffActor(subadminID),
		Payload: events.StatusChangedPayload{
			OldStatus: from,
			NewStatus: domain.ComplaintStatusClosed,
			Comment:   comment,
		},
	})
	message := "Complaint resolved successfully"
	if triaged {
		message = "Uncategorized complaint resolved successfully"
	}
	return &ResolutionResult{ComplaintID: complaintID, Status: domain.ComplaintStatusClosed, Message: message}, nil
}

func (s *LifecycleService) resolveDirect(ctx context.Context, repos repository.Repositories, complaint *domain.Complaint, subadminID int64, input ResolutionInput) error {
	text := s.sanitizer.Clean(input.DirectSolution)
	if text == "" {
		return apperrors.NewValidationError("direct solution is empty", nil)
	}
	if err := repos.Reviews.CreateDirectSolution(ctx, &domain.DirectSolution{
		ComplaintID:  complaint.ID,
		SubadminID:   subadminID,
		SolutionText: text,
	}); err != nil {
		return apperrors.Storage(err)
	}
	closeComplaint(complaint, subadminID, input.DoneByID, input.Severity)
	if err := repos.Complaints.Update(ctx, complaint); err != nil {
		return notFoundOr(err, "complaint", map[string]any{"complaint_id": complaint.ID})
	}
	return nil
}

func (s *LifecycleService) resolveStructured(ctx context.Context, repos repository.Repositories, complaint *domain.Complaint, subadminID int64, input ResolutionInput) error {
	relatedID := input.SubRelatedIssue.RelatedIssueID
	if relatedID == nil {
		relatedID = complaint.RelatedIssueID
	}
	if relatedID == nil {
		return apperrors.NewValidationError("related issue is required for the sub-related issue", nil)
	}
	ref := &IssueRef{ID: input.SubRelatedIssue.ID, Name: input.SubRelatedIssue.Name}
	subID, err := resolveIssueRef(ctx, repos.Taxonomy, domain.IssueLevelSubRelated, relatedID, ref, s.sanitizer)
	if err != nil {
		return err
	}
	steps := make([]string, 0, len(input.SolutionSteps))
	for _, step := range input.SolutionSteps {
		steps = append(steps, s.sanitizer.Clean(step))
	}
	descriptionID, err := writeSolution(ctx, repos.Taxonomy, subID, s.sanitizer.Clean(input.IssueDescription), steps, complaint.Description)
	if err != nil {
		return err
	}
	complaint.FinalSubRelatedIssueID = int64Ptr(subID)
	complaint.IssueDescriptionID = descriptionID
	closeComplaint(complaint, subadminID, input.DoneByID, input.Severity)
	if err := repos.Complaints.Update(ctx, complaint); err != nil {
		return notFoundOr(err, "complaint", map[string]any{"complaint_id": complaint.ID})
	}
	return nil
}

// triageInputFor derives the main issue from the parent of the related issue.
func (s *LifecycleService) triageInputFor(ctx context.Context, repos repository.Repositories, complaint *domain.Complaint, input ResolutionInput) (TriageInput, error) {
	relatedID := input.SubRelatedIssue.RelatedIssueID
	if relatedID == nil && complaint.RelatedIssueID != nil && *complaint.RelatedIssueID != domain.OthersIssueID {
		relatedID = complaint.RelatedIssueID
	}
	if relatedID == nil {
		return TriageInput{}, apperrors.NewValidationError("uncategorized complaints need the related issue of the sub-related issue", nil)
	}
	related, err := repos.Taxonomy.GetNode(ctx, domain.IssueLevelRelated, *relatedID)
	if err != nil {
		return TriageInput{}, notFoundOr(err, "related issue", map[string]any{"id": *relatedID})
	}
	if related.ParentID == nil {
		return TriageInput{}, apperrors.NewValidationError("related issue has no main issue", map[string]any{"id": related.ID})
	}
	return TriageInput{
		MainIssue:        &IssueRef{ID: int64Ptr(*related.ParentID)},
		RelatedIssue:     &IssueRef{ID: int64Ptr(related.ID)},
		SubRelatedIssue:  &IssueRef{ID: input.SubRelatedIssue.ID, Name: input.SubRelatedIssue.Name},
		IssueDescription: input.IssueDescription,
		SolutionSteps:    input.SolutionSteps,
		Severity:         input.Severity,
		DoneByID:         input.DoneByID,
	}, nil
}

// SoftDelete hides a complaint from every listing.
func (s *LifecycleService) SoftDelete(ctx context.Context, adminID, complaintID int64) error {
	var from domain.ComplaintStatus
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		complaint, err := loadComplaintForUpdate(ctx, repos, complaintID)
		if err != nil {
			return err
		}
		from = complaint.Status
		if err := repos.Complaints.SoftDelete(ctx, complaintID); err != nil {
			return notFoundOr(err, "complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil
	})
	if err != nil {
		return apperrors.Storage(err)
	}
	s.logger.Info("complaint deleted", zap.Int64("complaint_id", complaintID), zap.Int64("actor_id", adminID))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:        events.EventComplaintDeleted,
		ComplaintID: complaintID,
		Actor:       staffActor(adminID),
		Payload: events.StatusChangedPayload{
			OldStatus: from,
			NewStatus: from,
			Comment:   "deleted",
		},
	})
	return nil
}

func (s *LifecycleService) recordTransition(actorID, complaintID int64, from, to domain.ComplaintStatus) {
	s.logger.Info("complaint transition",
		zap.Int64("complaint_id", complaintID),
		zap.Int64("actor_id", actorID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	if s.metrics != nil {
		s.metrics.RecordTransition(string(from), string(to))
	}
}

// staffName falls back to a placeholder when the staff row is missing.
func staffName(ctx context.Context, repo repository.StaffRepository, id int64) string {
	staff, err := repo.GetByID(ctx, id)
	if err != nil {
		return "Unknown Subadmin"
	}
	return staff.Name
}
