package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// ComplaintsHandler serves the user side: classification, submission, tracking and feedback.
type ComplaintsHandler struct {
	classification *service.ClassificationService
	complaints     *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(classification *service.ClassificationService, complaints *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{classification: classification, complaints: complaints}
}

// Classify POST /complaints/classify.
func (h *ComplaintsHandler) Classify(c *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	result, err := h.classification.Classify(c.UserContext(), req.Description)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": classificationResponse(result)})
}

// Solutions GET /complaints/solutions?sub_related_issue_id=.
func (h *ComplaintsHandler) Solutions(c *fiber.Ctx) error {
	subID, err := optionalID(c, "sub_related_issue_id")
	if err != nil {
		return err
	}
	if subID == nil {
		return apperrors.NewValidationError("sub_related_issue_id is required", nil)
	}
	set, err := h.classification.GetSolutionsFor(c.UserContext(), *subID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SolutionSetResponse{
		IssueDescription: descriptionResponse(set.IssueDescription),
		Solutions:        solutionSteps(set.Solutions),
	}})
}

// Submit POST /complaints.
func (h *ComplaintsHandler) Submit(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SubmitComplaintRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	complaint, err := h.complaints.Submit(c.UserContext(), user.ID, service.ComplaintInput{
		Description:       req.Description,
		IssueDescription:  req.IssueDescription,
		MainIssueID:       req.MainIssueID,
		RelatedIssueID:    req.RelatedIssueID,
		SubRelatedIssueID: req.SubRelatedIssueID,
		Priority:          domain.ComplaintPriority(req.Priority),
		IsResolved:        req.IsResolved,
		SessionID:         req.SessionID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// List GET /complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	views, err := h.complaints.ListForUser(c.UserContext(), user.ID, parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintViews(views)})
}

// Track GET /complaints/track.
func (h *ComplaintsHandler) Track(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	views, err := h.complaints.Track(c.UserContext(), user.ID, parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintViews(views)})
}

// Summary GET /complaints/summary.
func (h *ComplaintsHandler) Summary(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	summary, err := h.complaints.Summary(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserSummaryResponse{
		Total:      summary.Total,
		Resolved:   summary.Resolved,
		Unresolved: summary.Unresolved,
		ThisMonth:  summary.ThisMonth,
	}})
}

// LogResolution POST /complaints/resolution-log.
func (h *ComplaintsHandler) LogResolution(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ResolutionLogRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	entry, err := h.complaints.LogResolution(c.UserContext(), user.ID, req.IsResolved, req.SessionID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.ResolutionLogResponse{
		ID:         entry.ID,
		IsResolved: entry.IsResolved,
		SessionID:  entry.SessionID,
		CreatedAt:  entry.CreatedAt,
	}})
}

// Feedback POST /complaints/:id/feedback.
func (h *ComplaintsHandler) Feedback(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	complaintID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.FeedbackRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	feedback, err := h.complaints.SubmitFeedback(c.UserContext(), user.ID, complaintID, domain.FeedbackLabel(req.Label), req.Comment)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": feedbackResponse(feedback)})
}

// MainIssues GET /taxonomy/main-issues.
func (h *ComplaintsHandler) MainIssues(c *fiber.Ctx) error {
	nodes, err := h.classification.MainIssues(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueNodes(nodes)})
}

// RelatedIssues GET /taxonomy/related-issues?main_issue_id=.
func (h *ComplaintsHandler) RelatedIssues(c *fiber.Ctx) error {
	mainID, err := optionalID(c, "main_issue_id")
	if err != nil {
		return err
	}
	nodes, err := h.classification.RelatedIssues(c.UserContext(), mainID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueNodes(nodes)})
}

// SubRelatedIssues GET /taxonomy/sub-related-issues?related_issue_id=.
func (h *ComplaintsHandler) SubRelatedIssues(c *fiber.Ctx) error {
	relatedID, err := optionalID(c, "related_issue_id")
	if err != nil {
		return err
	}
	nodes, err := h.classification.SubRelatedIssues(c.UserContext(), relatedID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueNodes(nodes)})
}
