package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/cache"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/observability"
)

// StartTicketEventWorker subscribes the stats cache invalidator and the
// event counters to every ticket and label event.
func StartTicketEventWorker(dispatcher events.Dispatcher, stats *cache.StatsCache, metrics *observability.Metrics, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	invalidate := func(ctx context.Context, e events.Event) error {
		if err := stats.Invalidate(ctx); err != nil {
			return err
		}
		logger.Debug("stats cache invalidated", zap.String("event_type", string(e.Type)))
		return nil
	}
	count := func(_ context.Context, e events.Event) error {
		metrics.RecordTicketEvent(string(e.Type))
		return nil
	}

	for _, t := range events.TicketEventTypes {
		dispatcher.Subscribe(t, invalidate)
		dispatcher.Subscribe(t, count)
	}
	dispatcher.Subscribe(events.EventLabelsChanged, invalidate)
}
