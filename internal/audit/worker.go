package audit

import (
	"context"
	"log/slog"
	"time"
)

// flushTimeout bounds how long the worker keeps draining after shutdown.
const flushTimeout = 5 * time.Second

// Sink receives forwarded events, e.g. a Kafka topic.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker consumes audit events from the outbox and forwards them to a sink.
// A failed forward is logged and skipped; the event is already in the store.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run forwards events until the inbox is closed. When ctx is cancelled it
// keeps forwarding until the inbox is closed, bounded by flushTimeout, so
// events emitted while the server shuts down still reach the sink.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.forward(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			w.logger.Warn("audit flush timed out, buffered events not forwarded",
				"pending", len(w.inbox),
			)
			return
		case event, ok := <-w.inbox:
			if !ok {
				return
			}
			w.forward(ctx, event)
		}
	}
}

func (w *Worker) forward(ctx context.Context, event Event) {
	if err := w.sink.Publish(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to forward audit event",
			"action", event.Action,
			"event_id", event.ID,
			"error", err,
		)
	}
}
