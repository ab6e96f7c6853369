package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// AdminHandler serves admin reporting, routing and account management.
type AdminHandler struct {
	lifecycle *service.LifecycleService
	reports   *service.ReportService
	accounts  *service.StaffService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(lifecycle *service.LifecycleService, reports *service.ReportService, accounts *service.StaffService) *AdminHandler {
	return &AdminHandler{lifecycle: lifecycle, reports: reports, accounts: accounts}
}

// ListComplaints GET /admin/complaints.
func (h *AdminHandler) ListComplaints(c *fiber.Ctx) error {
	views, err := h.reports.AllComplaints(c.UserContext(), parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintViews(views)})
}

// Dashboard GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	summary, err := h.reports.AdminDashboard(c.UserContext())
	if err != nil {
		return err
	}
	categories := make([]dto.CategoryCountResponse, 0, len(summary.Categories))
	for _, cat := range summary.Categories {
		categories = append(categories, dto.CategoryCountResponse{MainIssueID: cat.MainIssueID, Name: cat.Name, Count: cat.Count})
	}
	feedback := make(map[string]int64, len(summary.FeedbackByLabel))
	for label, count := range summary.FeedbackByLabel {
		feedback[string(label)] = count
	}
	return c.JSON(fiber.Map{"data": dto.AdminDashboardResponse{
		TotalComplaints:    summary.TotalComplaints,
		Pending:            summary.Pending,
		Resolved:           summary.Resolved,
		AIResolved:         summary.AIResolved,
		ResolvedBySubadmin: summary.ResolvedBySubadmin,
		HighPriority:       summary.HighPriority,
		Minor:              summary.Minor,
		Major:              summary.Major,
		AvgResolutionHours: summary.AvgResolutionHours,
		TotalUsers:         summary.TotalUsers,
		TotalSubadmins:     summary.TotalSubadmins,
		Categories:         categories,
		FeedbackByLabel:    feedback,
	}})
}

// SubadminPerformance GET /admin/subadmins/performance.
func (h *AdminHandler) SubadminPerformance(c *fiber.Ctx) error {
	rows, err := h.reports.SubadminPerformance(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.SubadminPerformanceResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.SubadminPerformanceResponse{
			SubadminID:  r.SubadminID,
			Name:        r.Name,
			StaffNo:     r.StaffNo,
			TotalSolved: r.TotalSolved,
			AvgHours:    r.AvgHours,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Assign POST /admin/complaints/:id/assign.
func (h *AdminHandler) Assign(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	complaintID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	complaint, err := h.lifecycle.Assign(c.UserContext(), admin.ID, complaintID, req.SubadminName)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// DeleteComplaint DELETE /admin/complaints/:id.
func (h *AdminHandler) DeleteComplaint(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	complaintID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.lifecycle.SoftDelete(c.UserContext(), admin.ID, complaintID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateUser POST /admin/users.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	user, err := h.accounts.CreateUser(c.UserContext(), admin, service.CreateUserInput{
		StaffNo:    req.StaffNo,
		Name:       req.Name,
		Department: req.Department,
		Password:   req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.UserSummaryFrom(user)})
}

// CreateStaff POST /admin/staff.
func (h *AdminHandler) CreateStaff(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateStaffRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	staff, err := h.accounts.CreateStaffMember(c.UserContext(), admin, service.CreateStaffInput{
		StaffNo:    req.StaffNo,
		Name:       req.Name,
		Department: req.Department,
		Password:   req.Password,
		Role:       domain.StaffRole(req.Role),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.StaffSummaryFrom(staff)})
}

// ListStaff GET /admin/staff?role=&active=.
func (h *AdminHandler) ListStaff(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	page := parsePage(c)
	filters := service.StaffListFilters{Limit: page.Limit, Offset: page.Offset}
	if role := c.Query("role"); role != "" {
		r := domain.StaffRole(role)
		filters.Role = &r
	}
	if active := c.Query("active"); active != "" {
		v := active == "true"
		filters.Active = &v
	}
	members, err := h.accounts.ListStaffMembers(c.UserContext(), admin, filters)
	if err != nil {
		return err
	}
	items := make([]*dto.StaffResponse, 0, len(members))
	for i := range members {
		items = append(items, dto.StaffSummaryFrom(&members[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ResetStaffPassword POST /admin/staff/:staffNo/password.
func (h *AdminHandler) ResetStaffPassword(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.PasswordResetRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := h.accounts.ResetStaffPassword(c.UserContext(), admin, c.Params("staffNo"), req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ImportAccounts POST /admin/users/import (multipart "file").
func (h *AdminHandler) ImportAccounts(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file is required", nil)
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable upload", map[string]any{"file": header.Filename})
	}
	defer file.Close()

	report, err := h.accounts.ImportAccounts(c.UserContext(), admin, file)
	if err != nil {
		return err
	}
	failed := make([]dto.AccountImportFailure, 0, len(report.Failed))
	for _, f := range report.Failed {
		failed = append(failed, dto.AccountImportFailure{Row: f.Row, StaffNo: f.StaffNo, Reason: f.Reason})
	}
	return c.JSON(fiber.Map{"data": dto.AccountImportResponse{
		Created: report.Created,
		Updated: report.Updated,
		Failed:  failed,
	}})
}

// RepeatedComplaints GET /admin/reports/repeated-complaints.
func (h *AdminHandler) RepeatedComplaints(c *fiber.Ctx) error {
	rows, err := h.reports.RepeatedComplaints(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.RepeatedComplaintResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.RepeatedComplaintResponse{
			UserID:          r.UserID,
			StaffNo:         r.StaffNo,
			UserName:        r.UserName,
			MainIssue:       r.MainIssue,
			RelatedIssue:    r.RelatedIssue,
			SubRelatedIssue: r.SubRelatedIssue,
			Count:           r.Count,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// TopComplainers GET /admin/reports/top-complainers.
func (h *AdminHandler) TopComplainers(c *fiber.Ctx) error {
	rows, err := h.reports.TopComplainers(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.ComplainerResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.ComplainerResponse{
			UserID:          r.UserID,
			StaffNo:         r.StaffNo,
			Name:            r.Name,
			TotalComplaints: r.TotalComplaints,
			ActiveDays:      r.ActiveDays,
			AvgPerDay:       r.AvgPerDay,
			FirstComplaint:  r.FirstComplaint,
			LastComplaint:   r.LastComplaint,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// UserTimeline GET /admin/users/:id/timeline.
func (h *AdminHandler) UserTimeline(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	days, err := h.reports.UserTimeline(c.UserContext(), userID)
	if err != nil {
		return err
	}
	items := make([]dto.TimelineDayResponse, 0, len(days))
	for _, d := range days {
		items = append(items, dto.TimelineDayResponse{Day: d.Day.Format(time.DateOnly), Count: d.Count})
	}
	return c.JSON(fiber.Map{"data": items})
}

// UsersSummary GET /admin/users/summary.
func (h *AdminHandler) UsersSummary(c *fiber.Ctx) error {
	rows, err := h.reports.UsersSummary(c.UserContext(), parsePage(c))
	if err != nil {
		return err
	}
	items := make([]dto.UserComplaintSummaryResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.UserComplaintSummaryResponse{
			UserID:          r.UserID,
			StaffNo:         r.StaffNo,
			Name:            r.Name,
			Department:      r.Department,
			Total:           r.Total,
			Resolved:        r.Resolved,
			Pending:         r.Pending,
			LastComplaintAt: r.LastComplaintAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// HighPriority GET /admin/complaints/high-priority.
func (h *AdminHandler) HighPriority(c *fiber.Ctx) error {
	views, err := h.reports.HighPriorityComplaints(c.UserContext(), parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintViews(views)})
}
