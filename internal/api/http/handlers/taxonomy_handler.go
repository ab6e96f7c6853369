package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// levelsByPath maps the :level route segment onto taxonomy levels.
var levelsByPath = map[string]domain.IssueLevel{
	"main-issues":        domain.IssueLevelMain,
	"related-issues":     domain.IssueLevelRelated,
	"sub-related-issues": domain.IssueLevelSubRelated,
}

// TaxonomyHandler serves admin maintenance of the issue taxonomy.
type TaxonomyHandler struct {
	admin          *service.TaxonomyAdminService
	classification *service.ClassificationService
}

// NewTaxonomyHandler constructs handler.
func NewTaxonomyHandler(admin *service.TaxonomyAdminService, classification *service.ClassificationService) *TaxonomyHandler {
	return &TaxonomyHandler{admin: admin, classification: classification}
}

func parseLevel(c *fiber.Ctx) (domain.IssueLevel, error) {
	level, ok := levelsByPath[c.Params("level")]
	if !ok {
		return "", apperrors.NewNotFound("taxonomy level", map[string]any{"level": c.Params("level")})
	}
	return level, nil
}

// CreateNode POST /admin/taxonomy/:level.
func (h *TaxonomyHandler) CreateNode(c *fiber.Ctx) error {
	level, err := parseLevel(c)
	if err != nil {
		return err
	}
	var req dto.CreateNodeRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	node, err := h.admin.CreateNode(c.UserContext(), level, req.ParentID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": issueNode(*node)})
}

// RenameNode PUT /admin/taxonomy/:level/:id.
func (h *TaxonomyHandler) RenameNode(c *fiber.Ctx) error {
	level, err := parseLevel(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.RenameNodeRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := h.admin.RenameNode(c.UserContext(), level, id, req.Name); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteNode DELETE /admin/taxonomy/:level/:id.
func (h *TaxonomyHandler) DeleteNode(c *fiber.Ctx) error {
	level, err := parseLevel(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.admin.DeleteNode(c.UserContext(), level, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Solutions GET /admin/taxonomy/sub-related-issues/:id/solutions.
func (h *TaxonomyHandler) Solutions(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	set, err := h.classification.GetSolutionsFor(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SolutionSetResponse{
		IssueDescription: descriptionResponse(set.IssueDescription),
		Solutions:        solutionSteps(set.Solutions),
	}})
}

// CreateDescription POST /admin/taxonomy/sub-related-issues/:id/descriptions.
func (h *TaxonomyHandler) CreateDescription(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.DescriptionRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	desc, err := h.admin.CreateDescription(c.UserContext(), id, req.Text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": descriptionResponse(desc)})
}

// UpdateDescription PUT /admin/taxonomy/descriptions/:id.
func (h *TaxonomyHandler) UpdateDescription(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.DescriptionRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := h.admin.UpdateDescription(c.UserContext(), id, req.Text); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteDescription DELETE /admin/taxonomy/descriptions/:id.
func (h *TaxonomyHandler) DeleteDescription(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.admin.DeleteDescription(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpsertStep PUT /admin/taxonomy/descriptions/:id/steps/:step.
func (h *TaxonomyHandler) UpsertStep(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	stepNumber, err := parseStepNumber(c)
	if err != nil {
		return err
	}
	var req dto.StepRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	step, err := h.admin.UpsertStep(c.UserContext(), id, stepNumber, req.Instruction)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SolutionStepResponse{StepNumber: step.StepNumber, Instruction: step.Instruction}})
}

// DeleteStep DELETE /admin/taxonomy/descriptions/:id/steps/:step.
func (h *TaxonomyHandler) DeleteStep(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	stepNumber, err := parseStepNumber(c)
	if err != nil {
		return err
	}
	if err := h.admin.DeleteStep(c.UserContext(), id, stepNumber); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Import POST /admin/taxonomy/import (multipart form, field "file").
func (h *TaxonomyHandler) Import(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file is required", nil)
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable upload", map[string]any{"file": header.Filename})
	}
	defer file.Close()

	report, err := h.admin.ImportHierarchy(c.UserContext(), file)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ImportReportResponse{
		InsertedMain:         report.InsertedMain,
		InsertedRelated:      report.InsertedRelated,
		InsertedSubRelated:   report.InsertedSubRelated,
		InsertedDescriptions: report.InsertedDescriptions,
		InsertedSolutions:    report.InsertedSolutions,
		Skipped:              report.Skipped,
	}})
}

func parseStepNumber(c *fiber.Ctx) (int, error) {
	n, err := strconv.Atoi(c.Params("step"))
	if err != nil || n <= 0 {
		return 0, apperrors.NewValidationError("invalid step", map[string]any{"step": c.Params("step")})
	}
	return n, nil
}
