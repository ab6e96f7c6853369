package service

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/classifier"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// Column headers expected on the first sheet of a hierarchy import.
const (
	columnMainIssue       = "mainIssue"
	columnRelatedIssue    = "relatedIssue"
	columnSubRelatedIssue = "subRelatedIssue"
	columnDescription     = "description"
	columnStepNumber      = "step_number"
	columnStepInstruction = "step_instruction"
)

var importColumns = []string{
	columnMainIssue, columnRelatedIssue, columnSubRelatedIssue,
	columnDescription, columnStepNumber, columnStepInstruction,
}

// ImportReport counts what a hierarchy import created.
type ImportReport struct {
	InsertedMain         int
	InsertedRelated      int
	InsertedSubRelated   int
	InsertedDescriptions int
	InsertedSolutions    int
	Skipped              int
}

// TaxonomyAdminService maintains the issue taxonomy and its solution content.
type TaxonomyAdminService struct {
	store     repository.Store
	sanitizer *classifier.Sanitizer
	logger    *zap.Logger
}

// TaxonomyAdminDependencies bundles collaborators.
type TaxonomyAdminDependencies struct {
	Store     repository.Store
	Sanitizer *classifier.Sanitizer
	Logger    *zap.Logger
}

// NewTaxonomyAdminService creates the service.
func NewTaxonomyAdminService(deps TaxonomyAdminDependencies) *TaxonomyAdminService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sanitizer := deps.Sanitizer
	if sanitizer == nil {
		sanitizer = classifier.NewSanitizer()
	}
	return &TaxonomyAdminService{store: deps.Store, sanitizer: sanitizer, logger: logger}
}

// CreateNode returns the node named name under parentID, inserting it when missing.
func (s *TaxonomyAdminService) CreateNode(ctx context.Context, level domain.IssueLevel, parentID *int64, name string) (*domain.IssueNode, error) {
	if !level.Valid() {
		return nil, apperrors.NewValidationError("unknown issue level", map[string]any{"level": level})
	}
	name = s.sanitizer.Clean(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	repo := s.store.Repos().Taxonomy
	if level.HasParent() {
		if parentID == nil {
			return nil, apperrors.NewValidationError("parent is required", map[string]any{"level": level})
		}
		if _, err := repo.GetNode(ctx, level.Parent(), *parentID); err != nil {
			return nil, notFoundOr(err, string(level.Parent())+" issue", map[string]any{"id": *parentID})
		}
	} else {
		parentID = nil
	}
	node, err := repo.GetOrInsertNode(ctx, level, parentID, name)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return node, nil
}

// RenameNode renames a node. The "Others" sentinel cannot be renamed.
func (s *TaxonomyAdminService) RenameNode(ctx context.Context, level domain.IssueLevel, id int64, name string) error {
	if err := guardSentinel(level, id); err != nil {
		return err
	}
	name = s.sanitizer.Clean(name)
	if name == "" {
		return apperrors.NewValidationError("name is required", nil)
	}
	err := s.store.Repos().Taxonomy.RenameNode(ctx, level, id, name)
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.NewConflict("name already used under this parent", map[string]any{"name": name})
	}
	if err != nil {
		return notFoundOr(err, string(level)+" issue", map[string]any{"id": id})
	}
	return nil
}

// DeleteNode removes a node nothing refers to. The "Others" sentinel cannot be deleted.
func (s *TaxonomyAdminService) DeleteNode(ctx context.Context, level domain.IssueLevel, id int64) error {
	if err := guardSentinel(level, id); err != nil {
		return err
	}
	err := s.store.Repos().Taxonomy.DeleteNode(ctx, level, id)
	if errors.Is(err, repository.ErrReferenced) {
		return apperrors.NewConflict("issue is still in use", map[string]any{"level": level, "id": id})
	}
	if err != nil {
		return notFoundOr(err, string(level)+" issue", map[string]any{"id": id})
	}
	return nil
}

func guardSentinel(level domain.IssueLevel, id int64) error {
	if !level.Valid() {
		return apperrors.NewValidationError("unknown issue level", map[string]any{"level": level})
	}
	if (domain.IssueNode{ID: id, Level: level}).IsSentinel() {
		return apperrors.NewInvalidState("the Others category cannot be modified", map[string]any{"level": level})
	}
	return nil
}

// CreateDescription attaches a description to a sub-related issue.
func (s *TaxonomyAdminService) CreateDescription(ctx context.Context, subRelatedIssueID int64, text string) (*domain.IssueDescription, error) {
	text = s.sanitizer.Clean(text)
	if text == "" {
		return nil, apperrors.NewValidationError("description is required", nil)
	}
	repo := s.store.Repos().Taxonomy
	if _, err := repo.GetNode(ctx, domain.IssueLevelSubRelated, subRelatedIssueID); err != nil {
		return nil, notFoundOr(err, "sub_related issue", map[string]any{"id": subRelatedIssueID})
	}
	desc := &domain.IssueDescription{SubRelatedIssueID: subRelatedIssueID, Text: text}
	if err := repo.CreateDescription(ctx, desc); err != nil {
		return nil, apperrors.Storage(err)
	}
	return desc, nil
}

// UpdateDescription replaces a description's text.
func (s *TaxonomyAdminService) UpdateDescription(ctx context.Context, id int64, text string) error {
	text = s.sanitizer.Clean(text)
	if text == "" {
		return apperrors.NewValidationError("description is required", nil)
	}
	if err := s.store.Repos().Taxonomy.UpdateDescription(ctx, id, text); err != nil {
		return notFoundOr(err, "issue description", map[string]any{"id": id})
	}
	return nil
}

// DeleteDescription removes a description and its steps unless a complaint refers to it.
func (s *TaxonomyAdminService) DeleteDescription(ctx context.Context, id int64) error {
	err := s.store.Repos().Taxonomy.DeleteDescription(ctx, id)
	if errors.Is(err, repository.ErrReferenced) {
		return apperrors.NewConflict("description is referenced by complaints", map[string]any{"id": id})
	}
	if err != nil {
		return notFoundOr(err, "issue description", map[string]any{"id": id})
	}
	return nil
}

// UpsertStep adds or replaces the step with the given number.
func (s *TaxonomyAdminService) UpsertStep(ctx context.Context, descriptionID int64, stepNumber int, instruction string) (*domain.SolutionStep, error) {
	if stepNumber < 1 {
		return nil, apperrors.NewValidationError("step number must be positive", map[string]any{"step_number": stepNumber})
	}
	instruction = s.sanitizer.Clean(instruction)
	if instruction == "" {
		return nil, apperrors.NewValidationError("instruction is required", nil)
	}
	repo := s.store.Repos().Taxonomy
	if _, err := repo.GetDescription(ctx, descriptionID); err != nil {
		return nil, notFoundOr(err, "issue description", map[string]any{"id": descriptionID})
	}
	step := &domain.SolutionStep{IssueDescriptionID: descriptionID, StepNumber: stepNumber, Instruction: instruction}
	if err := repo.UpsertStep(ctx, step); err != nil {
		return nil, apperrors.Storage(err)
	}
	return step, nil
}

// DeleteStep removes one step of a description.
func (s *TaxonomyAdminService) DeleteStep(ctx context.Context, descriptionID int64, stepNumber int) error {
	if err := s.store.Repos().Taxonomy.DeleteStep(ctx, descriptionID, stepNumber); err != nil {
		return notFoundOr(err, "solution step", map[string]any{"issue_description_id": descriptionID, "step_number": stepNumber})
	}
	return nil
}

// ImportHierarchy loads taxonomy rows from the first sheet of an .xlsx workbook.
// Blank taxonomy and description cells repeat the previous row's value. Rows that
// stay incomplete are skipped. The import is applied in one transaction.
func (s *TaxonomyAdminService) ImportHierarchy(ctx context.Context, r io.Reader) (*ImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewValidationError("failed to parse Excel file", map[string]any{"reason": err.Error()})
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, apperrors.NewValidationError("Excel file has no sheets", nil)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read rows", map[string]any{"reason": err.Error()})
	}
	report := &ImportReport{}
	if len(rows) < 2 {
		return report, nil
	}

	headerMap := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		headerMap[strings.TrimSpace(h)] = i
	}
	for _, column := range importColumns {
		if _, ok := headerMap[column]; !ok {
			return nil, apperrors.NewValidationError("missing column", map[string]any{"column": column})
		}
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		imp := &hierarchyImport{repo: repos.Taxonomy, report: report}
		for _, row := range rows[1:] {
			cell := func(column string) string {
				idx := headerMap[column]
				if idx >= len(row) {
					return ""
				}
				return s.sanitizer.Clean(row[idx])
			}
			if err := imp.apply(ctx, importRow{
				mainIssue:       cell(columnMainIssue),
				relatedIssue:    cell(columnRelatedIssue),
				subRelatedIssue: cell(columnSubRelatedIssue),
				description:     cell(columnDescription),
				stepNumber:      cell(columnStepNumber),
				stepInstruction: cell(columnStepInstruction),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	s.logger.Info("taxonomy imported",
		zap.Int("main", report.InsertedMain),
		zap.Int("related", report.InsertedRelated),
		zap.Int("sub_related", report.InsertedSubRelated),
		zap.Int("descriptions", report.InsertedDescriptions),
		zap.Int("solutions", report.InsertedSolutions),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

type importRow struct {
	mainIssue       string
	relatedIssue    string
	subRelatedIssue string
	description     string
	stepNumber      string
	stepInstruction string
}

// hierarchyImport carries the last complete row forward and remembers resolved ids.
type hierarchyImport struct {
	repo   repository.TaxonomyRepository
	report *ImportReport
	last   importRow

	mainID, relatedID, subID, descriptionID int64
}

func (h *hierarchyImport) apply(ctx context.Context, row importRow) error {
	if row.mainIssue == "" {
		row.mainIssue = h.last.mainIssue
	}
	if row.relatedIssue == "" {
		row.relatedIssue = h.last.relatedIssue
	}
	if row.subRelatedIssue == "" {
		row.subRelatedIssue = h.last.subRelatedIssue
	}
	if row.description == "" {
		row.description = h.last.description
	}
	stepNumber, err := strconv.Atoi(row.stepNumber)
	if row.mainIssue == "" || row.relatedIssue == "" || row.subRelatedIssue == "" ||
		row.description == "" || row.stepInstruction == "" || err != nil || stepNumber < 1 {
		h.report.Skipped++
		return nil
	}

	mainChanged := row.mainIssue != h.last.mainIssue
	if mainChanged {
		if h.mainID, err = h.node(ctx, domain.IssueLevelMain, nil, row.mainIssue, &h.report.InsertedMain); err != nil {
			return err
		}
	}
	relatedChanged := mainChanged || row.relatedIssue != h.last.relatedIssue
	if relatedChanged {
		if h.relatedID, err = h.node(ctx, domain.IssueLevelRelated, &h.mainID, row.relatedIssue, &h.report.InsertedRelated); err != nil {
			return err
		}
	}
	subChanged := relatedChanged || row.subRelatedIssue != h.last.subRelatedIssue
	if subChanged {
		if h.subID, err = h.node(ctx, domain.IssueLevelSubRelated, &h.relatedID, row.subRelatedIssue, &h.report.InsertedSubRelated); err != nil {
			return err
		}
	}
	if subChanged || row.description != h.last.description {
		if err := h.describe(ctx, row.description); err != nil {
			return err
		}
	}

	if err := h.repo.UpsertStep(ctx, &domain.SolutionStep{
		IssueDescriptionID: h.descriptionID,
		StepNumber:         stepNumber,
		Instruction:        row.stepInstruction,
	}); err != nil {
		return apperrors.Storage(err)
	}
	h.report.InsertedSolutions++
	h.last = row
	return nil
}

func (h *hierarchyImport) node(ctx context.Context, level domain.IssueLevel, parentID *int64, name string, inserted *int) (int64, error) {
	existing, err := h.repo.FindNodeByName(ctx, level, parentID, name)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, apperrors.Storage(err)
	}
	node, err := h.repo.GetOrInsertNode(ctx, level, parentID, name)
	if err != nil {
		return 0, apperrors.Storage(err)
	}
	*inserted++
	return node.ID, nil
}

// describe reuses the sub-related issue's first description when its text matches.
func (h *hierarchyImport) describe(ctx context.Context, text string) error {
	existing, err := h.repo.FirstDescription(ctx, h.subID)
	switch {
	case err == nil && existing.Text == text:
		h.descriptionID = existing.ID
		return nil
	case err != nil && !errors.Is(err, pgx.ErrNoRows):
		return apperrors.Storage(err)
	}
	desc := &domain.IssueDescription{SubRelatedIssueID: h.subID, Text: text}
	if err := h.repo.CreateDescription(ctx, desc); err != nil {
		return apperrors.Storage(err)
	}
	h.descriptionID = desc.ID
	h.report.InsertedDescriptions++
	return nil
}
