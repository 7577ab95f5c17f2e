package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// MemoryStore keeps users, tickets and labels in process memory. It backs
// the service when no Postgres DSN is configured and is used by tests.
type MemoryStore struct {
	mu         sync.RWMutex
	now        func() time.Time
	nextID     int64
	users      map[int64]domain.User
	tickets    map[int64]domain.Ticket
	priorities map[int64]domain.Label
	categories map[int64]domain.Label
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:        time.Now,
		users:      make(map[int64]domain.User),
		tickets:    make(map[int64]domain.Ticket),
		priorities: make(map[int64]domain.Label),
		categories: make(map[int64]domain.Label),
	}
}

// Users returns a UserRepository view of the store.
func (s *MemoryStore) Users() UserRepository { return &memoryUsers{s} }

// Tickets returns a TicketRepository view of the store.
func (s *MemoryStore) Tickets() TicketRepository { return &memoryTickets{s} }

// Priorities returns a LabelRepository over priorities.
func (s *MemoryStore) Priorities() LabelRepository {
	return &memoryLabels{store: s, kind: domain.LabelPriority}
}

// Categories returns a LabelRepository over categories.
func (s *MemoryStore) Categories() LabelRepository {
	return &memoryLabels{store: s, kind: domain.LabelCategory}
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memoryUsers struct{ s *MemoryStore }

func (r *memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Pseudo == user.Pseudo {
			return domain.ErrDuplicatePseudo
		}
	}
	user.ID = r.s.id()
	user.CreatedAt = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

func (r *memoryUsers) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	existing.PasswordHash = user.PasswordHash
	existing.IsAdmin = user.IsAdmin
	r.s.users[user.ID] = existing
	return nil
}

func (r *memoryUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *memoryUsers) GetByPseudo(_ context.Context, pseudo string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Pseudo == pseudo {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type memoryTickets struct{ s *MemoryStore }

func (r *memoryTickets) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket.ID = r.s.id()
	ticket.CreatedAt = r.s.now()
	r.s.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *memoryTickets) Update(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[ticket.ID]; !ok {
		return domain.ErrTicketNotFound
	}
	r.s.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *memoryTickets) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[id]; !ok {
		return domain.ErrTicketNotFound
	}
	delete(r.s.tickets, id)
	return nil
}

func (r *memoryTickets) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	t = r.s.hydrate(t)
	return &t, nil
}

func (r *memoryTickets) List(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	term := ""
	if filter.SearchTerm != nil {
		term = strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
	}

	result := []domain.Ticket{}
	for _, t := range r.s.tickets {
		if filter.SubmitterID != nil && !t.IsSubmittedBy(*filter.SubmitterID) {
			continue
		}
		if filter.Resolved != nil && t.Resolved != *filter.Resolved {
			continue
		}
		if filter.PriorityID != nil && t.Priority.ID != *filter.PriorityID {
			continue
		}
		if filter.CategoryID != nil && !containsID(t.CategoryIDs(), *filter.CategoryID) {
			continue
		}
		if filter.ResolvedSince != nil && (t.ResolvedAt == nil || t.ResolvedAt.Before(*filter.ResolvedSince)) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			continue
		}
		result = append(result, r.s.hydrate(t))
	}

	sort.Slice(result, ticketLess(result, filter.Order))
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func ticketLess(ts []domain.Ticket, order TicketOrder) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := ts[i], ts[j]
		switch order {
		case OrderOldest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		case OrderRecentlyResolved:
			if a.ResolvedAt == nil || b.ResolvedAt == nil {
				return a.ResolvedAt != nil
			}
			if !a.ResolvedAt.Equal(*b.ResolvedAt) {
				return a.ResolvedAt.After(*b.ResolvedAt)
			}
			return a.ID > b.ID
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		}
	}
}

func (r *memoryTickets) Stats(_ context.Context) (domain.TicketStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := domain.TicketStats{ByPriority: []domain.LabelStat{}}
	counts := make(map[int64]int64)
	for _, t := range r.s.tickets {
		stats.Total++
		if t.Resolved {
			stats.Resolved++
		} else {
			stats.Unresolved++
		}
		counts[t.Priority.ID]++
	}
	for _, p := range sortedLabels(r.s.priorities) {
		stats.ByPriority = append(stats.ByPriority, domain.LabelStat{ID: p.ID, Name: p.Name, Count: counts[p.ID]})
	}
	return stats, nil
}

// hydrate resolves label names from their ids. Callers hold the lock.
func (s *MemoryStore) hydrate(t domain.Ticket) domain.Ticket {
	t = cloneTicket(t)
	if p, ok := s.priorities[t.Priority.ID]; ok {
		t.Priority = p
	}
	cats := make([]domain.Label, 0, len(t.Categories))
	for _, c := range t.Categories {
		if stored, ok := s.categories[c.ID]; ok {
			cats = append(cats, stored)
		}
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	t.Categories = cats
	return t
}

type memoryLabels struct {
	store *MemoryStore
	kind  domain.LabelKind
}

func (r *memoryLabels) Kind() domain.LabelKind {
	return r.kind
}

// labels returns the map for this kind. Callers hold the lock.
func (r *memoryLabels) labels() map[int64]domain.Label {
	if r.kind == domain.LabelCategory {
		return r.store.categories
	}
	return r.store.priorities
}

func (r *memoryLabels) nameTaken(name string, exceptID int64) bool {
	for _, l := range r.labels() {
		if l.ID != exceptID && strings.EqualFold(l.Name, name) {
			return true
		}
	}
	return false
}

func (r *memoryLabels) Create(_ context.Context, label *domain.Label) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.nameTaken(label.Name, 0) {
		return domain.ErrDuplicateName
	}
	label.ID = r.store.id()
	r.labels()[label.ID] = *label
	return nil
}

func (r *memoryLabels) Update(_ context.Context, label *domain.Label) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.labels()[label.ID]; !ok {
		return domain.LabelNotFound(r.kind)
	}
	if r.nameTaken(label.Name, label.ID) {
		return domain.ErrDuplicateName
	}
	r.labels()[label.ID] = *label
	return nil
}

func (r *memoryLabels) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.labels()[id]; !ok {
		return domain.LabelNotFound(r.kind)
	}
	delete(r.labels(), id)
	return nil
}

func (r *memoryLabels) GetByID(_ context.Context, id int64) (*domain.Label, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	l, ok := r.labels()[id]
	if !ok {
		return nil, domain.LabelNotFound(r.kind)
	}
	return &l, nil
}

func (r *memoryLabels) GetByName(_ context.Context, name string) (*domain.Label, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	name = strings.TrimSpace(name)
	for _, l := range r.labels() {
		if strings.EqualFold(l.Name, name) {
			l := l
			return &l, nil
		}
	}
	return nil, domain.LabelNotFound(r.kind)
}

func (r *memoryLabels) List(_ context.Context) ([]domain.Label, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return sortedLabels(r.labels()), nil
}

func (r *memoryLabels) Search(_ context.Context, keyword string) ([]domain.Label, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	result := []domain.Label{}
	for _, l := range sortedLabels(r.labels()) {
		if strings.Contains(strings.ToLower(l.Name), keyword) {
			result = append(result, l)
		}
	}
	return result, nil
}

// usedBy reports whether the ticket references the label. Callers hold the lock.
func (r *memoryLabels) usedBy(t domain.Ticket, id int64) bool {
	if r.kind == domain.LabelCategory {
		return containsID(t.CategoryIDs(), id)
	}
	return t.Priority.ID == id
}

func (r *memoryLabels) CountTickets(_ context.Context, id int64) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var count int64
	for _, t := range r.store.tickets {
		if r.usedBy(t, id) {
			count++
		}
	}
	return count, nil
}

func (r *memoryLabels) Stats(_ context.Context) ([]domain.LabelStat, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	stats := []domain.LabelStat{}
	for _, l := range sortedLabels(r.labels()) {
		s := domain.LabelStat{ID: l.ID, Name: l.Name}
		for _, t := range r.store.tickets {
			if r.usedBy(t, l.ID) {
				s.Count++
			}
		}
		stats = append(stats, s)
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Count > stats[j].Count })
	return stats, nil
}

func (r *memoryLabels) WithUnresolvedTickets(_ context.Context) ([]domain.Label, error) {
	return r.filterByTickets(func(t domain.Ticket) bool { return !t.Resolved }), nil
}

func (r *memoryLabels) UsedByUser(_ context.Context, userID int64) ([]domain.Label, error) {
	return r.filterByTickets(func(t domain.Ticket) bool { return t.IsSubmittedBy(userID) }), nil
}

func (r *memoryLabels) filterByTickets(match func(domain.Ticket) bool) []domain.Label {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	result := []domain.Label{}
	for _, l := range sortedLabels(r.labels()) {
		for _, t := range r.store.tickets {
			if match(t) && r.usedBy(t, l.ID) {
				result = append(result, l)
				break
			}
		}
	}
	return result
}

func sortedLabels(m map[int64]domain.Label) []domain.Label {
	labels := make([]domain.Label, 0, len(m))
	for _, l := range m {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })
	return labels
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.Categories = append([]domain.Label(nil), t.Categories...)
	return t
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
