package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

func TestMemoryUsersUniquePseudo(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()

	if err := users.Create(ctx, &domain.User{Pseudo: "alice"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := users.Create(ctx, &domain.User{Pseudo: "alice"}); !errors.Is(err, domain.ErrDuplicatePseudo) {
		t.Fatalf("expected ErrDuplicatePseudo, got %v", err)
	}
	if err := users.Create(ctx, &domain.User{Pseudo: "Alice"}); err != nil {
		t.Fatalf("pseudo comparison should be case-sensitive: %v", err)
	}
	if _, err := users.GetByPseudo(ctx, "bob"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestMemoryLabelsCaseInsensitiveNames(t *testing.T) {
	ctx := context.Background()
	priorities := NewMemoryStore().Priorities()

	high := &domain.Label{Name: "High"}
	if err := priorities.Create(ctx, high); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := priorities.Create(ctx, &domain.Label{Name: "HIGH"}); !errors.Is(err, domain.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	got, err := priorities.GetByName(ctx, " high ")
	if err != nil || got.ID != high.ID {
		t.Fatalf("GetByName: %v %+v", err, got)
	}
	if _, err := priorities.GetByID(ctx, 999); !errors.Is(err, domain.ErrPriorityNotFound) {
		t.Fatalf("expected ErrPriorityNotFound, got %v", err)
	}
}

func TestMemoryTicketsFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	low := &domain.Label{Name: "Low"}
	_ = store.Priorities().Create(ctx, low)
	bug := &domain.Label{Name: "Bug"}
	_ = store.Categories().Create(ctx, bug)

	submitter := int64(5)
	tickets := store.Tickets()
	first := &domain.Ticket{Title: "Printer jam", Description: "Paper stuck", Priority: *low, SubmitterID: &submitter}
	second := &domain.Ticket{Title: "VPN down", Description: "Cannot connect", Priority: *low, Categories: []domain.Label{*bug}}
	for _, tk := range []*domain.Ticket{first, second} {
		if err := tickets.Create(ctx, tk); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	newest, _ := tickets.List(ctx, TicketFilter{})
	if len(newest) != 2 || newest[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v", newest)
	}
	oldest, _ := tickets.List(ctx, TicketFilter{Order: OrderOldest, Limit: 1})
	if len(oldest) != 1 || oldest[0].ID != first.ID {
		t.Fatalf("expected oldest first, got %+v", oldest)
	}

	term := "PRINTER"
	found, _ := tickets.List(ctx, TicketFilter{SearchTerm: &term})
	if len(found) != 1 || found[0].ID != first.ID {
		t.Fatalf("search mismatch: %+v", found)
	}
	byCategory, _ := tickets.List(ctx, TicketFilter{CategoryID: &bug.ID})
	if len(byCategory) != 1 || byCategory[0].Categories[0].Name != "Bug" {
		t.Fatalf("category filter mismatch: %+v", byCategory)
	}
	mine, _ := tickets.List(ctx, TicketFilter{SubmitterID: &submitter})
	if len(mine) != 1 || mine[0].ID != first.ID {
		t.Fatalf("submitter filter mismatch: %+v", mine)
	}

	stats, _ := tickets.Stats(ctx)
	if stats.Total != 2 || stats.Unresolved != 2 || len(stats.ByPriority) != 1 || stats.ByPriority[0].Count != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	count, _ := store.Categories().CountTickets(ctx, bug.ID)
	if count != 1 {
		t.Fatalf("expected bug category used once, got %d", count)
	}
	used, _ := store.Categories().UsedByUser(ctx, submitter)
	if len(used) != 0 {
		t.Fatalf("submitter 5 did not use categories, got %+v", used)
	}
}
