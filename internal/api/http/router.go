package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-tickets/internal/api/http/handlers"
	"github.com/spec-kit/support-tickets/internal/auth"
	"github.com/spec-kit/support-tickets/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Generic PUT/PATCH on the ticket
// resource are deliberately not routed; mutations go through the
// operation-specific endpoints only.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.DeleteTicket)
	tickets.Patch("/:id/status", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.ChangeStatus)
	tickets.Patch("/:id/priority", auth.RequireRole(domain.RoleAdmin, domain.RoleUser), cfg.Tickets.ChangePriority)
	tickets.Post("/:id/responses", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.AddResponse)
}
