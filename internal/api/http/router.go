package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Complaints     *handlers.ComplaintsHandler
	Subadmin       *handlers.SubadminHandler
	Admin          *handlers.AdminHandler
	Taxonomy       *handlers.TaxonomyHandler
	Profile        *handlers.ProfileHandler
	AuthMiddleware *auth.AuthMiddleware
	// RateLimiter guards the user routes. Nil disables limiting.
	RateLimiter fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Auth.ChangePassword)

	profile := app.Group("/profile", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	profile.Get("/", cfg.Profile.Get)
	profile.Put("/", cfg.Profile.Update)

	userHandlers := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireUser()}
	if cfg.RateLimiter != nil {
		userHandlers = append(userHandlers, cfg.RateLimiter)
	}
	complaints := app.Group("/complaints", userHandlers...)
	complaints.Post("/classify", cfg.Complaints.Classify)
	complaints.Get("/solutions", cfg.Complaints.Solutions)
	complaints.Post("/resolution-log", cfg.Complaints.LogResolution)
	complaints.Get("/track", cfg.Complaints.Track)
	complaints.Get("/summary", cfg.Complaints.Summary)
	complaints.Post("/:id/feedback", cfg.Complaints.Feedback)
	complaints.Post("/", cfg.Complaints.Submit)
	complaints.Get("/", cfg.Complaints.List)

	// Staff pick categories from the same lists when resolving.
	taxonomy := app.Group("/taxonomy", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	taxonomy.Get("/main-issues", cfg.Complaints.MainIssues)
	taxonomy.Get("/related-issues", cfg.Complaints.RelatedIssues)
	taxonomy.Get("/sub-related-issues", cfg.Complaints.SubRelatedIssues)

	subadmin := app.Group("/subadmin", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(domain.StaffRoleSubadmin))
	subadmin.Get("/dashboard", cfg.Subadmin.Dashboard)
	subadmin.Get("/complaints/pending", cfg.Subadmin.PendingQueue)
	subadmin.Get("/complaints/general", cfg.Subadmin.GeneralQueue)
	subadmin.Get("/complaints/assigned", cfg.Subadmin.Assigned)
	subadmin.Get("/complaints/solved", cfg.Subadmin.Solved)
	subadmin.Post("/complaints/:id/take", cfg.Subadmin.Take)
	subadmin.Post("/complaints/:id/reject", cfg.Subadmin.Reject)
	subadmin.Post("/complaints/:id/resolve", cfg.Subadmin.Resolve)
	subadmin.Post("/complaints/:id/resolve-uncategorized", cfg.Subadmin.ResolveUncategorized)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(domain.StaffRoleAdmin))
	admin.Get("/dashboard", cfg.Admin.Dashboard)
	admin.Get("/subadmins/performance", cfg.Admin.SubadminPerformance)
	admin.Get("/complaints", cfg.Admin.ListComplaints)
	admin.Get("/complaints/high-priority", cfg.Admin.HighPriority)
	admin.Post("/complaints/:id/assign", cfg.Admin.Assign)
	admin.Delete("/complaints/:id", cfg.Admin.DeleteComplaint)
	admin.Post("/users", cfg.Admin.CreateUser)
	admin.Post("/users/import", cfg.Admin.ImportAccounts)
	admin.Get("/users/summary", cfg.Admin.UsersSummary)
	admin.Get("/users/:id/timeline", cfg.Admin.UserTimeline)
	admin.Get("/reports/repeated-complaints", cfg.Admin.RepeatedComplaints)
	admin.Get("/reports/top-complainers", cfg.Admin.TopComplainers)
	admin.Get("/staff", cfg.Admin.ListStaff)
	admin.Post("/staff", cfg.Admin.CreateStaff)
	admin.Post("/staff/:staffNo/password", cfg.Admin.ResetStaffPassword)

	// Fixed segments are registered before the :level routes.
	adminTaxonomy := admin.Group("/taxonomy")
	adminTaxonomy.Post("/import", cfg.Taxonomy.Import)
	adminTaxonomy.Put("/descriptions/:id/steps/:step", cfg.Taxonomy.UpsertStep)
	adminTaxonomy.Delete("/descriptions/:id/steps/:step", cfg.Taxonomy.DeleteStep)
	adminTaxonomy.Put("/descriptions/:id", cfg.Taxonomy.UpdateDescription)
	adminTaxonomy.Delete("/descriptions/:id", cfg.Taxonomy.DeleteDescription)
	adminTaxonomy.Get("/sub-related-issues/:id/solutions", cfg.Taxonomy.Solutions)
	adminTaxonomy.Post("/sub-related-issues/:id/descriptions", cfg.Taxonomy.CreateDescription)
	adminTaxonomy.Post("/:level", cfg.Taxonomy.CreateNode)
	adminTaxonomy.Put("/:level/:id", cfg.Taxonomy.RenameNode)
	adminTaxonomy.Delete("/:level/:id", cfg.Taxonomy.DeleteNode)
}
