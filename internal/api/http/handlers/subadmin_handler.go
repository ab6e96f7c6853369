package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/service"
)

// SubadminHandler serves the triage queues and complaint lifecycle actions of subadmins.
type SubadminHandler struct {
	lifecycle *service.LifecycleService
	triage    *service.TriageService
	reports   *service.ReportService
}

// NewSubadminHandler constructs handler.
func NewSubadminHandler(lifecycle *service.LifecycleService, triage *service.TriageService, reports *service.ReportService) *SubadminHandler {
	return &SubadminHandler{lifecycle: lifecycle, triage: triage, reports: reports}
}

// PendingQueue GET /subadmin/complaints/pending.
func (h *SubadminHandler) PendingQueue(c *fiber.Ctx) error {
	views, err := h.reports.PendingQueue(c.UserContext(), parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintViews(views)})
}

// GeneralQueue GET /subadmin/complaints/general.
func (h *SubadminHandler) GeneralQueue(c *fiber.Ctx) error {
	views, err := h.reports.GeneralQueue(c.UserContext(), parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintViews(views)})
}

// Assigned GET /subadmin/complaints/assigned.
func (h *SubadminHandler) Assigned(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	views, err := h.reports.AssignedTo(c.UserContext(), staff.ID, parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintViews(views)})
}

// Solved GET /subadmin/complaints/solved.
func (h *SubadminHandler) Solved(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	views, err := h.reports.SolvedBy(c.UserContext(), staff.ID, parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintViews(views)})
}

// Dashboard GET /subadmin/dashboard.
func (h *SubadminHandler) Dashboard(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	summary, err := h.reports.SubadminDashboard(c.UserContext(), staff.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SubadminDashboardResponse{
		TotalSolved:      summary.TotalSolved,
		Uncategorized:    summary.Uncategorized,
		TotalAssigned:    summary.TotalAssigned,
		TotalCategorized: summary.TotalCategorized,
	}})
}

// Take POST /subadmin/complaints/:id/take.
func (h *SubadminHandler) Take(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	complaintID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	result, err := h.lifecycle.Take(c.UserContext(), staff.ID, complaintID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TakeResponse{
		ComplaintID:  result.ComplaintID,
		Status:       result.Status,
		AssignedToID: result.AssignedToID,
		AssignedTo:   result.AssignedTo,
	}})
}

// Reject POST /subadmin/complaints/:id/reject.
func (h *SubadminHandler) Reject(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	complaintID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	result, err := h.lifecycle.Reject(c.UserContext(), staff.ID, complaintID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatusResponse{ComplaintID: result.ComplaintID, Status: result.Status}})
}

// Resolve POST /subadmin/complaints/:id/resolve.
func (h *SubadminHandler) Resolve(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	complaintID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ResolveRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	input := service.ResolutionInput{
		IssueDescription: req.IssueDescription,
		SolutionSteps:    req.SolutionSteps,
		DirectSolution:   req.DirectSolution,
		Severity:         severityPtr(req.Severity),
		DoneByID:         req.DoneByID,
	}
	if req.SubRelatedIssue != nil {
		input.SubRelatedIssue = &service.SubRelatedIssueInput{
			ID:             req.SubRelatedIssue.ID,
			Name:           req.SubRelatedIssue.Name,
			RelatedIssueID: req.SubRelatedIssue.RelatedIssueID,
		}
	}
	result, err := h.lifecycle.ResolveGeneral(c.UserContext(), staff.ID, complaintID, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": resolutionResponse(result)})
}

// ResolveUncategorized POST /subadmin/complaints/:id/resolve-uncategorized.
func (h *SubadminHandler) ResolveUncategorized(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	complaintID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ResolveUncategorizedRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	result, err := h.triage.ResolveUncategorized(c.UserContext(), staff.ID, complaintID, service.TriageInput{
		MainIssue:        issueRef(req.MainIssue),
		RelatedIssue:     issueRef(req.RelatedIssue),
		SubRelatedIssue:  issueRef(req.SubRelatedIssue),
		IssueDescription: req.IssueDescription,
		SolutionSteps:    req.SolutionSteps,
		Severity:         severityPtr(req.Severity),
		DoneByID:         req.DoneByID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": resolutionResponse(result)})
}

func issueRef(req *dto.IssueRefRequest) *service.IssueRef {
	if req == nil {
		return nil
	}
	return &service.IssueRef{ID: req.ID, Name: req.Name}
}

func resolutionResponse(result *service.ResolutionResult) dto.StatusResponse {
	return dto.StatusResponse{ComplaintID: result.ComplaintID, Status: result.Status, Message: result.Message}
}
