package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/cache"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/policy"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

const (
	defaultOldestLimit        = 10
	defaultRecentlyResolvedIn = 7
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	priorities repository.LabelRepository
	categories repository.LabelRepository
	dispatcher events.Dispatcher
	stats      *cache.StatsCache
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	UserRepo     repository.UserRepository
	PriorityRepo repository.LabelRepository
	CategoryRepo repository.LabelRepository
	Dispatcher   events.Dispatcher
	StatsCache   *cache.StatsCache
	Logger       *zap.Logger
	Now          func() time.Time
}

// TicketInput describes the editable fields of a ticket.
type TicketInput struct {
	Title       string
	Description string
	PriorityID  int64
	CategoryIDs []int64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		priorities: deps.PriorityRepo,
		categories: deps.CategoryRepo,
		dispatcher: deps.Dispatcher,
		stats:      deps.StatsCache,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.dispatcher == nil {
		s.dispatcher = events.NewInMemoryDispatcher(s.logger)
	}
	return s
}

// Create opens a ticket. Anonymous callers produce a ticket without submitter.
func (s *TicketService) Create(ctx context.Context, input TicketInput, caller domain.Identity) (*domain.Ticket, error) {
	ticket := &domain.Ticket{SubmitterID: caller.UserID}
	if err := s.apply(ctx, ticket, input); err != nil {
		return nil, err
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	s.logger.Info("ticket created", zap.Int64("ticket_id", ticket.ID))
	s.publish(ctx, events.EventTicketCreated, ticket.ID, caller, events.TicketCreatedPayload{
		Title:      ticket.Title,
		PriorityID: ticket.Priority.ID,
	})
	return ticket, nil
}

// Get returns a ticket the caller is allowed to read.
func (s *TicketService) Get(ctx context.Context, id int64, caller domain.Identity) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessTicket(ticket, caller) {
		return nil, domain.ErrForbidden
	}
	return ticket, nil
}

// List returns every ticket, newest first.
func (s *TicketService) List(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets.List(ctx, repository.TicketFilter{})
}

// ListUnresolved returns the tickets visible to anonymous callers.
func (s *TicketService) ListUnresolved(ctx context.Context) ([]domain.Ticket, error) {
	resolved := false
	return s.tickets.List(ctx, repository.TicketFilter{Resolved: &resolved})
}

// ListByUser returns the tickets submitted by target.
func (s *TicketService) ListByUser(ctx context.Context, target int64, caller domain.Identity) ([]domain.Ticket, error) {
	if !policy.CanListUserTickets(target, caller) {
		return nil, domain.ErrForbidden
	}
	if _, err := s.users.GetByID(ctx, target); err != nil {
		return nil, err
	}
	return s.tickets.List(ctx, repository.TicketFilter{SubmitterID: &target})
}

// Search matches keyword against title and description, ignoring case. A
// blank keyword returns every ticket.
func (s *TicketService) Search(ctx context.Context, keyword string) ([]domain.Ticket, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.List(ctx)
	}
	return s.tickets.List(ctx, repository.TicketFilter{SearchTerm: &keyword})
}

// ListByPriority returns tickets using the priority.
func (s *TicketService) ListByPriority(ctx context.Context, priorityID int64) ([]domain.Ticket, error) {
	if _, err := s.priorities.GetByID(ctx, priorityID); err != nil {
		return nil, err
	}
	return s.tickets.List(ctx, repository.TicketFilter{PriorityID: &priorityID})
}

// ListByCategory returns tickets tagged with the category.
func (s *TicketService) ListByCategory(ctx context.Context, categoryID int64) ([]domain.Ticket, error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.tickets.List(ctx, repository.TicketFilter{CategoryID: &categoryID})
}

// OldestUnresolved returns up to limit open tickets, oldest first.
func (s *TicketService) OldestUnresolved(ctx context.Context, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = defaultOldestLimit
	}
	resolved := false
	return s.tickets.List(ctx, repository.TicketFilter{Resolved: &resolved, Order: repository.OrderOldest, Limit: limit})
}

// RecentlyResolved returns tickets resolved within the last days.
func (s *TicketService) RecentlyResolved(ctx context.Context, days int) ([]domain.Ticket, error) {
	if days <= 0 {
		days = defaultRecentlyResolvedIn
	}
	resolved := true
	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	return s.tickets.List(ctx, repository.TicketFilter{
		Resolved:      &resolved,
		ResolvedSince: &since,
		Order:         repository.OrderRecentlyResolved,
	})
}

// Update edits a ticket the caller may modify.
func (s *TicketService) Update(ctx context.Context, id int64, input TicketInput, caller domain.Identity) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanModifyTicket(ticket, caller) {
		return nil, domain.ErrForbidden
	}
	if err := s.apply(ctx, ticket, input); err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	s.publish(ctx, events.EventTicketUpdated, ticket.ID, caller, nil)
	return ticket, nil
}

// Resolve marks the ticket resolved by the caller.
func (s *TicketService) Resolve(ctx context.Context, id int64, caller domain.Identity) (*domain.Ticket, error) {
	if !policy.CanResolveOrDelete(caller) {
		return nil, domain.ErrForbidden
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Resolved {
		return nil, domain.ErrAlreadyResolved
	}

	resolvedAt := s.now()
	ticket.Resolved = true
	ticket.ResolvedAt = &resolvedAt
	ticket.ResolverID = caller.UserID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, fmt.Errorf("resolve ticket: %w", err)
	}

	s.logger.Info("ticket resolved", zap.Int64("ticket_id", ticket.ID), zap.Int64p("resolver_id", caller.UserID))
	s.publish(ctx, events.EventTicketResolved, ticket.ID, caller, events.TicketResolutionPayload{Resolved: true})
	return ticket, nil
}

// Reopen clears the resolution of a resolved ticket.
func (s *TicketService) Reopen(ctx context.Context, id int64, caller domain.Identity) (*domain.Ticket, error) {
	if !policy.CanResolveOrDelete(caller) {
		return nil, domain.ErrForbidden
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ticket.Resolved {
		return nil, domain.ErrNotResolved
	}

	ticket.Resolved = false
	ticket.ResolvedAt = nil
	ticket.ResolverID = nil
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, fmt.Errorf("reopen ticket: %w", err)
	}

	s.logger.Info("ticket reopened", zap.Int64("ticket_id", ticket.ID))
	s.publish(ctx, events.EventTicketReopened, ticket.ID, caller, events.TicketResolutionPayload{Resolved: false})
	return ticket, nil
}

// Delete removes a ticket.
func (s *TicketService) Delete(ctx context.Context, id int64, caller domain.Identity) error {
	if !policy.CanResolveOrDelete(caller) {
		return domain.ErrForbidden
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("ticket deleted", zap.Int64("ticket_id", id))
	s.publish(ctx, events.EventTicketDeleted, id, caller, nil)
	return nil
}

// Stats returns ticket counts, served from the cache when possible. Cache
// failures fall back to the store.
func (s *TicketService) Stats(ctx context.Context) (domain.TicketStats, error) {
	if cached, ok, err := s.stats.Get(ctx); err != nil {
		s.logger.Warn("stats cache read failed", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	stats, err := s.tickets.Stats(ctx)
	if err != nil {
		return stats, fmt.Errorf("compute stats: %w", err)
	}
	if err := s.stats.Set(ctx, stats); err != nil {
		s.logger.Warn("stats cache write failed", zap.Error(err))
	}
	return stats, nil
}

// apply validates input against the label stores and copies it onto ticket.
func (s *TicketService) apply(ctx context.Context, ticket *domain.Ticket, input TicketInput) error {
	priority, err := s.priorities.GetByID(ctx, input.PriorityID)
	if err != nil {
		return err
	}

	categories := make([]domain.Label, 0, len(input.CategoryIDs))
	seen := make(map[int64]struct{}, len(input.CategoryIDs))
	for _, id := range input.CategoryIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		category, err := s.categories.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrCategoryNotFound) {
				return fmt.Errorf("category %d: %w", id, err)
			}
			return err
		}
		categories = append(categories, *category)
	}

	ticket.Title = strings.TrimSpace(input.Title)
	ticket.Description = strings.TrimSpace(input.Description)
	ticket.Priority = *priority
	ticket.Categories = categories
	return nil
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, ticketID int64, caller domain.Identity, payload any) {
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		ActorID:   caller.UserID,
		Timestamp: s.now(),
		Payload:   payload,
	})
}
