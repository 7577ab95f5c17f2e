package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// TicketsHandler manages the /api/tickets endpoints.
type TicketsHandler struct {
	service  *service.TicketService
	validate *Validator
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, validate *Validator) *TicketsHandler {
	return &TicketsHandler{service: ticketService, validate: validate}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.TicketRequest
	if err := h.validate.parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.Create(c.UserContext(), ticketInput(req), auth.IdentityFrom(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// ListUnresolved GET /api/tickets/unresolved and /api/tickets/public.
func (h *TicketsHandler) ListUnresolved(c *fiber.Ctx) error {
	tickets, err := h.service.ListUnresolved(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// GetTicket GET /api/tickets/:id. Anonymous callers may read unresolved tickets.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.service.Get(c.UserContext(), id, auth.IdentityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListByUser GET /api/tickets/user/:userId.
func (h *TicketsHandler) ListByUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}
	tickets, err := h.service.ListByUser(c.UserContext(), userID, auth.IdentityFrom(c))
	if errors.Is(err, domain.ErrUserNotFound) {
		return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// Search GET /api/tickets/search?keyword=.
func (h *TicketsHandler) Search(c *fiber.Ctx) error {
	tickets, err := h.service.Search(c.UserContext(), c.Query("keyword"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// Stats GET /api/tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketStatsResponse{
		Total:      stats.Total,
		Unresolved: stats.Unresolved,
		Resolved:   stats.Resolved,
		ByPriority: labelStatResponses(stats.ByPriority),
	}})
}

// OldestUnresolved GET /api/tickets/oldest-unresolved?limit=.
func (h *TicketsHandler) OldestUnresolved(c *fiber.Ctx) error {
	tickets, err := h.service.OldestUnresolved(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// RecentlyResolved GET /api/tickets/recently-resolved?days=.
func (h *TicketsHandler) RecentlyResolved(c *fiber.Ctx) error {
	tickets, err := h.service.RecentlyResolved(c.UserContext(), c.QueryInt("days", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// ListByPriority GET /api/tickets/priority/:id.
func (h *TicketsHandler) ListByPriority(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	tickets, err := h.service.ListByPriority(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// ListByCategory GET /api/tickets/category/:id.
func (h *TicketsHandler) ListByCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	tickets, err := h.service.ListByCategory(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// UpdateTicket PUT /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.TicketRequest
	if err := h.validate.parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.Update(c.UserContext(), id, ticketInput(req), auth.IdentityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ResolveTicket PUT /api/tickets/:id/resolve.
func (h *TicketsHandler) ResolveTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.service.Resolve(c.UserContext(), id, auth.IdentityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ReopenTicket PUT /api/tickets/:id/reopen.
func (h *TicketsHandler) ReopenTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.service.Reopen(c.UserContext(), id, auth.IdentityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// DeleteTicket DELETE /api/tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id, auth.IdentityFrom(c)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func ticketInput(req dto.TicketRequest) service.TicketInput {
	return service.TicketInput{
		Title:       req.Title,
		Description: req.Description,
		PriorityID:  req.PriorityID,
		CategoryIDs: req.CategoryIDs,
	}
}
