package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Departments    *handlers.DepartmentsHandler
	Settings       *handlers.SettingsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	protected.Get("/me", cfg.Users.Me)

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/share", cfg.Tickets.ShareTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)

	departments := protected.Group("/departments")
	departments.Get("", cfg.Departments.ListDepartments)
	departments.Get("/:id", cfg.Departments.GetDepartment)
	departments.Get("/:id/members", cfg.Departments.ListMembers)
	departments.Post("", auth.RequireSystemAdmin(), cfg.Departments.CreateDepartment)
	departments.Put("/:id", auth.RequireSystemAdmin(), cfg.Departments.UpdateDepartment)

	settings := protected.Group("/settings", auth.RequireSystemAdmin())
	settings.Get("", cfg.Settings.GetSettings)
	settings.Put("", cfg.Settings.UpdateSettings)

	notifications := protected.Group("/notifications")
	notifications.Get("", cfg.Notifications.ListNotifications)
	notifications.Post("/:id/read", cfg.Notifications.MarkNotificationRead)
}
