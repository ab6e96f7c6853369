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

// IssueRef points at a taxonomy node either by id or by name. A name that does not
// exist under the parent is inserted.
type IssueRef struct {
	ID   *int64
	Name string
}

func (r *IssueRef) present() bool {
	return r != nil && (r.ID != nil || strings.TrimSpace(r.Name) != "")
}

// TriageInput is the taxonomy and solution chosen for an uncategorized complaint.
type TriageInput struct {
	MainIssue        *IssueRef
	RelatedIssue     *IssueRef
	SubRelatedIssue  *IssueRef
	IssueDescription string
	SolutionSteps    []string
	Severity         *domain.Severity
	DoneByID         *int64
}

// ResolutionResult is returned by every resolve operation.
type ResolutionResult struct {
	ComplaintID int64
	Status      domain.ComplaintStatus
	Message     string
}

// TriageService closes complaints that are still filed under "Others".
type TriageService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	sanitizer  *classifier.Sanitizer
	logger     *zap.Logger
	metrics    TransitionRecorder
}

// TriageDependencies bundles collaborators.
type TriageDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Sanitizer  *classifier.Sanitizer
	Logger     *zap.Logger
	Metrics    TransitionRecorder
}

// NewTriageService creates the service.
func NewTriageService(deps TriageDependencies) *TriageService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sanitizer := deps.Sanitizer
	if sanitizer == nil {
		sanitizer = classifier.NewSanitizer()
	}
	return &TriageService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		sanitizer:  sanitizer,
		logger:     logger,
		metrics:    deps.Metrics,
	}
}

// ResolveUncategorized files the complaint under the chosen taxonomy, creating any
// nodes named by the subadmin, and closes it. Nothing is written unless every step succeeds.
func (s *TriageService) ResolveUncategorized(ctx context.Context, subadminID, complaintID int64, input TriageInput) (*ResolutionResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	var from domain.ComplaintStatus
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		complaint, err := loadComplaintForUpdate(ctx, repos, complaintID)
		if err != nil {
			return err
		}
		if !complaint.IsActive() {
			return apperrors.NewInvalidState("complaint is not open", map[string]any{"complaint_id": complaintID, "status": complaint.Status})
		}
		if !complaint.IsSentinelCategorized() {
			return apperrors.NewInvalidState("complaint is already categorized", map[string]any{"complaint_id": complaintID})
		}
		if err := checkDoneBy(ctx, repos, input.DoneByID); err != nil {
			return err
		}
		from = complaint.Status
		return s.apply(ctx, repos, complaint, subadminID, input)
	})
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	s.recordClosed(ctx, subadminID, complaintID, from)
	return &ResolutionResult{
		ComplaintID: complaintID,
		Status:      domain.ComplaintStatusClosed,
		Message:     "Uncategorized complaint resolved successfully",
	}, nil
}

// apply performs the writes of an uncategorized resolution inside an open transaction.
func (s *TriageService) apply(ctx context.Context, repos repository.Repositories, complaint *domain.Complaint, subadminID int64, input TriageInput) error {
	mainID, err := resolveIssueRef(ctx, repos.Taxonomy, domain.IssueLevelMain, nil, input.MainIssue, s.sanitizer)
	if err != nil {
		return err
	}
	var relatedID, subID, descriptionID *int64
	if input.RelatedIssue.present() {
		id, err := resolveIssueRef(ctx, repos.Taxonomy, domain.IssueLevelRelated, &mainID, input.RelatedIssue, s.sanitizer)
		if err != nil {
			return err
		}
		relatedID = &id
	}
	if input.SubRelatedIssue.present() {
		id, err := resolveIssueRef(ctx, repos.Taxonomy, domain.IssueLevelSubRelated, relatedID, input.SubRelatedIssue, s.sanitizer)
		if err != nil {
			return err
		}
		subID = &id
		descriptionID, err = writeSolution(ctx, repos.Taxonomy, id, s.sanitizer.Clean(input.IssueDescription), s.cleanSteps(input.SolutionSteps), complaint.Description)
		if err != nil {
			return err
		}
	}

	err = repos.Reviews.CreateUncategorizedResolution(ctx, &domain.UncategorizedResolution{
		ComplaintID:        complaint.ID,
		MainIssueID:        mainID,
		RelatedIssueID:     relatedID,
		SubRelatedIssueID:  subID,
		IssueDescriptionID: descriptionID,
		ResolvedByID:       subadminID,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.NewConflict("complaint was already triaged", map[string]any{"complaint_id": complaint.ID})
	}
	if err != nil {
		return apperrors.Storage(err)
	}

	complaint.MainIssueID = &mainID
	complaint.RelatedIssueID = relatedID
	complaint.SubRelatedIssueID = subID
	complaint.FinalSubRelatedIssueID = subID
	complaint.IssueDescriptionID = descriptionID
	closeComplaint(complaint, subadminID, input.DoneByID, input.Severity)
	if err := repos.Complaints.Update(ctx, complaint); err != nil {
		return notFoundOr(err, "complaint", map[string]any{"complaint_id": complaint.ID})
	}
	return nil
}

func (s *TriageService) cleanSteps(steps []string) []string {
	cleaned := make([]string, 0, len(steps))
	for _, step := range steps {
		cleaned = append(cleaned, s.sanitizer.Clean(step))
	}
	return cleaned
}

func (s *TriageService) recordClosed(ctx context.Context, subadminID, complaintID int64, from domain.ComplaintStatus) {
	s.logger.Info("complaint transition",
		zap.Int64("complaint_id", complaintID),
		zap.Int64("actor_id", subadminID),
		zap.String("from", string(from)),
		zap.String("to", string(domain.ComplaintStatusClosed)),
		zap.Bool("uncategorized", true),
	)
	if s.metrics != nil {
		s.metrics.RecordTransition(string(from), string(domain.ComplaintStatusClosed))
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:        events.EventComplaintResolved,
		ComplaintID: complaintID,
		Actor:       staffActor(subadminID),
		Payload: events.StatusChangedPayload{
			OldStatus: from,
			NewStatus: domain.ComplaintStatusClosed,
			Comment:   "uncategorized",
		},
	})
}

func (in TriageInput) validate() error {
	if !in.MainIssue.present() {
		return apperrors.NewValidationError("main issue is required", nil)
	}
	if in.SubRelatedIssue.present() && !in.RelatedIssue.present() {
		return apperrors.NewValidationError("sub-related issue requires a related issue", nil)
	}
	if hasSolutionContent(in.IssueDescription, in.SolutionSteps) && !in.SubRelatedIssue.present() {
		return apperrors.NewValidationError("issue description and solution steps require a sub-related issue", nil)
	}
	return validateCommon(in.SolutionSteps, in.Severity)
}

func hasSolutionContent(description string, steps []string) bool {
	return strings.TrimSpace(description) != "" || len(steps) > 0
}

func validateCommon(steps []string, severity *domain.Severity) error {
	for i, step := range steps {
		if strings.TrimSpace(step) == "" {
			return apperrors.NewValidationError("solution steps must not be blank", map[string]any{"step_number": i + 1})
		}
	}
	if severity != nil && !severity.Valid() {
		return apperrors.NewValidationError("invalid severity", map[string]any{"severity": *severity})
	}
	return nil
}

// resolveIssueRef validates an id reference against its parent or get-or-inserts a name.
func resolveIssueRef(ctx context.Context, repo repository.TaxonomyRepository, level domain.IssueLevel, parentID *int64, ref *IssueRef, sanitizer *classifier.Sanitizer) (int64, error) {
	if ref.ID != nil {
		node, err := repo.GetNode(ctx, level, *ref.ID)
		if err != nil {
			return 0, notFoundOr(err, string(level)+" issue", map[string]any{"id": *ref.ID})
		}
		if level.HasParent() && (node.ParentID == nil || parentID == nil || *node.ParentID != *parentID) {
			return 0, apperrors.NewValidationError(string(level)+" issue does not belong to its parent", map[string]any{
				"id":        node.ID,
				"parent_id": derefInt64(parentID),
			})
		}
		return node.ID, nil
	}
	name := sanitizer.Clean(ref.Name)
	if name == "" {
		return 0, apperrors.NewValidationError(string(level)+" issue name is empty", nil)
	}
	node, err := repo.GetOrInsertNode(ctx, level, parentID, name)
	if err != nil {
		return 0, apperrors.Storage(err)
	}
	return node.ID, nil
}

// writeSolution stores the description and numbered steps under a sub-related issue and
// returns the description id. Steps without new description text are attached to the
// existing first description, or to a new one carrying fallbackText.
func writeSolution(ctx context.Context, repo repository.TaxonomyRepository, subID int64, text string, steps []string, fallbackText string) (*int64, error) {
	if text == "" && len(steps) == 0 {
		return nil, nil
	}
	var descriptionID int64
	if text == "" {
		existing, err := repo.FirstDescription(ctx, subID)
		switch {
		case err == nil:
			descriptionID = existing.ID
		case errors.Is(err, pgx.ErrNoRows):
			text = fallbackText
		default:
			return nil, apperrors.Storage(err)
		}
	}
	if descriptionID == 0 {
		description := &domain.IssueDescription{SubRelatedIssueID: subID, Text: text}
		if err := repo.CreateDescription(ctx, description); err != nil {
			return nil, apperrors.Storage(err)
		}
		descriptionID = description.ID
	}
	for i, instruction := range steps {
		step := &domain.SolutionStep{
			IssueDescriptionID: descriptionID,
			StepNumber:         i + 1,
			Instruction:        instruction,
		}
		if err := repo.UpsertStep(ctx, step); err != nil {
			return nil, apperrors.Storage(err)
		}
	}
	return &descriptionID, nil
}

// closeComplaint marks the complaint Closed by doneByID, defaulting to the acting subadmin.
func closeComplaint(complaint *domain.Complaint, subadminID int64, doneByID *int64, severity *domain.Severity) {
	complaint.Status = domain.ComplaintStatusClosed
	if doneByID != nil {
		complaint.DoneByID = int64Ptr(*doneByID)
	} else {
		complaint.DoneByID = int64Ptr(subadminID)
	}
	if severity != nil {
		sev := *severity
		complaint.Severity = &sev
	}
}
