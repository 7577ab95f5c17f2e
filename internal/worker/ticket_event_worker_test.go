package worker

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticket-tracker/internal/cache"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/observability"
)

func TestTicketEventsInvalidateStats(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	stats := cache.NewStatsCache(client, time.Minute)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(nil)
	StartTicketEventWorker(dispatcher, stats, metrics, nil)

	for _, eventType := range []events.EventType{events.EventTicketResolved, events.EventLabelsChanged} {
		if err := stats.Set(ctx, domain.TicketStats{Total: 4}); err != nil {
			t.Fatalf("Set: %v", err)
		}
		_ = dispatcher.Publish(ctx, events.Event{Type: eventType, TicketID: 1})
		if mr.Exists(cache.StatsKey) {
			t.Fatalf("%s should invalidate the stats snapshot", eventType)
		}
	}

	want := `
# HELP ticket_events_total Ticket lifecycle events.
# TYPE ticket_events_total counter
ticket_events_total{type="ticket_resolved"} 1
`
	if err := testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(want), "ticket_events_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

