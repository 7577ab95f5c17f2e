package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/ticket-tracker/internal/api/http/handlers"
	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Tickets    *handlers.TicketsHandler
	Priorities *handlers.LabelsHandler
	Categories *handlers.LabelsHandler
	Identity   *auth.IdentityMiddleware
	Metrics    *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authenticated := auth.RequireAuthenticated()
	admin := auth.RequireAdmin()

	api := app.Group("/api", cfg.Identity.Handle)

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Get("/verify", cfg.Auth.Verify)
	authGroup.Put("/password", authenticated, cfg.Auth.ChangePassword)

	tickets := api.Group("/tickets")
	tickets.Get("/unresolved", cfg.Tickets.ListUnresolved)
	tickets.Get("/public", cfg.Tickets.ListUnresolved)
	tickets.Get("/search", authenticated, cfg.Tickets.Search)
	tickets.Get("/stats", authenticated, cfg.Tickets.Stats)
	tickets.Get("/oldest-unresolved", authenticated, cfg.Tickets.OldestUnresolved)
	tickets.Get("/recently-resolved", authenticated, cfg.Tickets.RecentlyResolved)
	tickets.Get("/user/:userId", authenticated, cfg.Tickets.ListByUser)
	tickets.Get("/priority/:id", authenticated, cfg.Tickets.ListByPriority)
	tickets.Get("/category/:id", authenticated, cfg.Tickets.ListByCategory)
	tickets.Get("", authenticated, cfg.Tickets.ListTickets)
	// identity is optional here; the access policy handles anonymous callers
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("", authenticated, cfg.Tickets.CreateTicket)
	tickets.Put("/:id/resolve", admin, cfg.Tickets.ResolveTicket)
	tickets.Put("/:id/reopen", admin, cfg.Tickets.ReopenTicket)
	tickets.Put("/:id", authenticated, cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", admin, cfg.Tickets.DeleteTicket)

	registerLabelRoutes(api.Group("/priorities"), cfg.Priorities, authenticated, admin, false)
	registerLabelRoutes(api.Group("/categories"), cfg.Categories, authenticated, admin, true)
}

func registerLabelRoutes(group fiber.Router, h *handlers.LabelsHandler, authenticated, admin fiber.Handler, popularity bool) {
	group.Get("", authenticated, h.List)
	group.Get("/search", authenticated, h.Search)
	group.Get("/stats", authenticated, h.Stats)
	group.Get("/with-unresolved-tickets", authenticated, h.WithUnresolved)
	if popularity {
		group.Get("/popular", authenticated, h.Popular)
		group.Get("/by-popularity", authenticated, h.ByPopularity)
		group.Get("/user/:userId", authenticated, h.UsedByUser)
	}
	group.Get("/:id", authenticated, h.Get)
	group.Post("", admin, h.Create)
	group.Put("/:id", admin, h.Update)
	group.Delete("/:id", admin, h.Delete)
}
