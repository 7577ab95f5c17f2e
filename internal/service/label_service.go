package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

// LabelService manages priorities or categories, depending on its repository.
type LabelService struct {
	repo       repository.LabelRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewLabelService builds a service over repo. dispatcher may be nil.
func NewLabelService(repo repository.LabelRepository, dispatcher events.Dispatcher, logger *zap.Logger) *LabelService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LabelService{repo: repo, dispatcher: dispatcher, logger: logger}
}

// Kind reports which label kind the service manages.
func (s *LabelService) Kind() domain.LabelKind {
	return s.repo.Kind()
}

// List returns every label sorted by name.
func (s *LabelService) List(ctx context.Context) ([]domain.Label, error) {
	return s.repo.List(ctx)
}

// Get returns a single label.
func (s *LabelService) Get(ctx context.Context, id int64) (*domain.Label, error) {
	return s.repo.GetByID(ctx, id)
}

// Search matches names containing keyword, ignoring case. Blank returns all.
func (s *LabelService) Search(ctx context.Context, keyword string) ([]domain.Label, error) {
	if strings.TrimSpace(keyword) == "" {
		return s.repo.List(ctx)
	}
	return s.repo.Search(ctx, keyword)
}

// Create stores a new label with a trimmed, case-insensitively unique name.
func (s *LabelService) Create(ctx context.Context, name string) (*domain.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if err := s.ensureNameFree(ctx, name, 0); err != nil {
		return nil, err
	}

	label := &domain.Label{Name: name}
	if err := s.repo.Create(ctx, label); err != nil {
		return nil, err
	}
	s.changed(ctx, label.ID, "created")
	return label, nil
}

// Update renames a label.
func (s *LabelService) Update(ctx context.Context, id int64, name string) (*domain.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	label, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, name, id); err != nil {
		return nil, err
	}

	label.Name = name
	if err := s.repo.Update(ctx, label); err != nil {
		return nil, err
	}
	s.changed(ctx, label.ID, "renamed")
	return label, nil
}

// Delete removes a label that no ticket references.
func (s *LabelService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountTickets(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrLabelInUse
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, id, "deleted")
	return nil
}

// Stats returns the ticket count per label, most used first.
func (s *LabelService) Stats(ctx context.Context) ([]domain.LabelStat, error) {
	return s.repo.Stats(ctx)
}

// WithUnresolvedTickets returns labels referenced by at least one open ticket.
func (s *LabelService) WithUnresolvedTickets(ctx context.Context) ([]domain.Label, error) {
	return s.repo.WithUnresolvedTickets(ctx)
}

// Popular returns labels used by at least minTickets tickets.
func (s *LabelService) Popular(ctx context.Context, minTickets int64) ([]domain.LabelStat, error) {
	if minTickets <= 0 {
		minTickets = 1
	}
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	popular := []domain.LabelStat{}
	for _, st := range stats {
		if st.Count >= minTickets {
			popular = append(popular, st)
		}
	}
	return popular, nil
}

// ByPopularity returns every label ordered by usage.
func (s *LabelService) ByPopularity(ctx context.Context) ([]domain.Label, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	labels := make([]domain.Label, 0, len(stats))
	for _, st := range stats {
		labels = append(labels, domain.Label{ID: st.ID, Name: st.Name})
	}
	return labels, nil
}

// UsedByUser returns labels found on tickets submitted by userID.
func (s *LabelService) UsedByUser(ctx context.Context, userID int64) ([]domain.Label, error) {
	return s.repo.UsedByUser(ctx, userID)
}

func (s *LabelService) ensureNameFree(ctx context.Context, name string, selfID int64) error {
	existing, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return domain.ErrDuplicateName
	case err == nil, errors.Is(err, domain.LabelNotFound(s.repo.Kind())):
		return nil
	default:
		return err
	}
}

func (s *LabelService) changed(ctx context.Context, id int64, action string) {
	s.logger.Info("label changed",
		zap.String("kind", string(s.repo.Kind())),
		zap.Int64("label_id", id),
		zap.String("action", action),
	)
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventLabelsChanged,
		Timestamp: time.Now(),
		Payload:   events.LabelChangedPayload{Kind: string(s.repo.Kind()), LabelID: id, Action: action},
	})
}
