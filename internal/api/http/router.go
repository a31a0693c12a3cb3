package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/care-access/internal/api/http/handlers"
	"github.com/spec-kit/care-access/internal/auth"
	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Roles          *handlers.RolesHandler
	Approvals      *handlers.ApprovalsHandler
	Audit          *handlers.AuditHandler
	Care           *handlers.CareHandler
	AuthMiddleware *auth.AuthMiddleware
	RoleChecker    auth.RoleChecker
	RateLimiter    *RateLimiter
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	v1 := app.Group("/v1", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.RateLimiter.Handle)
	adminOnly := auth.RequireRole(cfg.RoleChecker, domain.RoleAdmin)
	superAdminOnly := auth.RequireRole(cfg.RoleChecker, domain.RoleSuperAdmin)

	me := v1.Group("/me")
	me.Get("/profile", cfg.Users.GetOwnProfile)
	me.Put("/profile", cfg.Users.SaveOwnProfile)
	me.Get("/role", cfg.Roles.GetOwnRole)
	me.Post("/role/expiration-check", cfg.Roles.CheckExpiration)
	me.Get("/admin", cfg.Roles.IsAdmin)
	me.Post("/admin-access-requests", cfg.Roles.RequestAdminAccess)
	me.Post("/approval", cfg.Approvals.RequestApproval)
	me.Get("/approval", cfg.Approvals.IsApproved)
	me.Get("/records", cfg.Care.OwnRecords)
	me.Post("/records/vitals", cfg.Care.LogVitals)
	me.Post("/records/symptoms", cfg.Care.LogSymptom)

	users := v1.Group("/users/:principal")
	users.Get("/profile", cfg.Users.GetUserProfile)
	users.Get("/admin-session", cfg.Roles.AdminSession)
	users.Put("/role", adminOnly, cfg.Roles.AssignRole)

	admins := v1.Group("/admins", superAdminOnly)
	admins.Get("/", cfg.Roles.ListAdmins)
	admins.Post("/:principal/promote", cfg.Roles.Promote)
	admins.Post("/:principal/temporary", cfg.Roles.GrantTemporary)
	admins.Patch("/:principal/expiry", cfg.Roles.ExtendExpiry)
	admins.Delete("/:principal", cfg.Roles.Revoke)

	v1.Get("/approvals", adminOnly, cfg.Approvals.List)
	v1.Put("/approvals/:principal", adminOnly, cfg.Approvals.Set)

	v1.Post("/doctors", cfg.Approvals.RegisterDoctor)
	v1.Get("/doctors", adminOnly, cfg.Approvals.ListDoctors)
	v1.Get("/doctors/:principal", cfg.Approvals.GetDoctor)
	v1.Post("/doctors/:principal/verify", adminOnly, cfg.Approvals.VerifyDoctor)

	v1.Get("/audit-logs", superAdminOnly, cfg.Audit.List)

	v1.Get("/facilities", cfg.Care.ListFacilities)
	v1.Post("/facilities", adminOnly, cfg.Care.AddFacility)

	v1.Get("/devices", adminOnly, cfg.Care.ListDevices)
	v1.Post("/devices", adminOnly, cfg.Care.CreateDevice)
	v1.Put("/devices/:id/link", adminOnly, cfg.Care.LinkDevice)
	v1.Delete("/devices/:id/link", adminOnly, cfg.Care.UnlinkDevice)
	v1.Post("/devices/:id/toggle", adminOnly, cfg.Care.ToggleDevice)

	v1.Get("/patients/:principal/devices", cfg.Care.PatientDevices)
	v1.Get("/patients/:principal/records", cfg.Care.PatientRecords)

	v1.Get("/appointments", cfg.Care.ListAppointments)
	v1.Post("/appointments", cfg.Care.BookAppointment)
	v1.Put("/appointments/:id/status", adminOnly, cfg.Care.OverrideAppointmentStatus)
}
