package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// LabelsHandler serves /api/priorities or /api/categories depending on its service.
type LabelsHandler struct {
	service  *service.LabelService
	validate *Validator
}

// NewLabelsHandler constructs handler.
func NewLabelsHandler(labelService *service.LabelService, validate *Validator) *LabelsHandler {
	return &LabelsHandler{service: labelService, validate: validate}
}

// List GET /.
func (h *LabelsHandler) List(c *fiber.Ctx) error {
	labels, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": labelResponses(labels)})
}

// Get GET /:id.
func (h *LabelsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	label, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.notFound(err, id)
	}
	return c.JSON(fiber.Map{"data": labelResponse(*label)})
}

// Search GET /search?keyword=.
func (h *LabelsHandler) Search(c *fiber.Ctx) error {
	labels, err := h.service.Search(c.UserContext(), c.Query("keyword"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": labelResponses(labels)})
}

// Stats GET /stats.
func (h *LabelsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": labelStatResponses(stats)})
}

// WithUnresolved GET /with-unresolved-tickets.
func (h *LabelsHandler) WithUnresolved(c *fiber.Ctx) error {
	labels, err := h.service.WithUnresolvedTickets(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": labelResponses(labels)})
}

// Popular GET /popular?minTickets=.
func (h *LabelsHandler) Popular(c *fiber.Ctx) error {
	stats, err := h.service.Popular(c.UserContext(), int64(c.QueryInt("minTickets", 1)))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": labelStatResponses(stats)})
}

// ByPopularity GET /by-popularity.
func (h *LabelsHandler) ByPopularity(c *fiber.Ctx) error {
	labels, err := h.service.ByPopularity(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": labelResponses(labels)})
}

// UsedByUser GET /user/:userId.
func (h *LabelsHandler) UsedByUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}
	labels, err := h.service.UsedByUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": labelResponses(labels)})
}

// Create POST /.
func (h *LabelsHandler) Create(c *fiber.Ctx) error {
	var req dto.LabelRequest
	if err := h.validate.parseBody(c, &req); err != nil {
		return err
	}
	label, err := h.service.Create(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": labelResponse(*label)})
}

// Update PUT /:id.
func (h *LabelsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.LabelRequest
	if err := h.validate.parseBody(c, &req); err != nil {
		return err
	}
	label, err := h.service.Update(c.UserContext(), id, req.Name)
	if err != nil {
		return h.notFound(err, id)
	}
	return c.JSON(fiber.Map{"data": labelResponse(*label)})
}

// Delete DELETE /:id.
func (h *LabelsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.notFound(err, id)
	}
	return c.SendStatus(http.StatusNoContent)
}

// notFound names the label kind and id in not-found errors; other errors pass through.
func (h *LabelsHandler) notFound(err error, id int64) error {
	kind := h.service.Kind()
	if errors.Is(err, domain.LabelNotFound(kind)) {
		return apperrors.NewNotFound(string(kind), map[string]any{"id": id})
	}
	return err
}
