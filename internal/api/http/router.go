package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/southcentralhub/supportdesk/internal/api/http/handlers"
	"github.com/southcentralhub/supportdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Tickets   *handlers.TicketsHandler
	Auth      *handlers.AuthHandler
	StaffAuth *auth.StaffMiddleware
}

// RegisterRoutes wires HTTP routes. Reads stay open so the filing form and
// the polling panel work without a session; staff mutations go through the
// optional token middleware.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/admin", cfg.Auth.AdminLogin)

	tickets := app.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.StaffAuth.Handle, cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.StaffAuth.Handle, cfg.Tickets.DeleteTicket)
	tickets.Get("/:id/messages", cfg.Tickets.ListMessages)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)
}
