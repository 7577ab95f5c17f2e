package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

func parseID(c *fiber.Ctx, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+param, map[string]any{param: c.Params(param)})
	}
	return id, nil
}

func ticketResponse(t *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Resolved:    t.Resolved,
		CreatedAt:   t.CreatedAt,
		ResolvedAt:  t.ResolvedAt,
		SubmitterID: t.SubmitterID,
		ResolverID:  t.ResolverID,
		Priority:    labelResponse(t.Priority),
		Categories:  labelResponses(t.Categories),
	}
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return items
}

func labelResponse(l domain.Label) dto.LabelResponse {
	return dto.LabelResponse{ID: l.ID, Name: l.Name}
}

func labelResponses(labels []domain.Label) []dto.LabelResponse {
	items := make([]dto.LabelResponse, 0, len(labels))
	for _, l := range labels {
		items = append(items, labelResponse(l))
	}
	return items
}

func labelStatResponses(stats []domain.LabelStat) []dto.LabelStatResponse {
	items := make([]dto.LabelStatResponse, 0, len(stats))
	for _, s := range stats {
		items = append(items, dto.LabelStatResponse{ID: s.ID, Name: s.Name, Count: s.Count})
	}
	return items
}
