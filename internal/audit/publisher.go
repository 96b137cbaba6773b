package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"sangham/pkg/requestcontext"
)

// Store persists audit events for later review.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Publisher captures structured audit events. It is append-only: every event is
// written to the store, then offered to the outbox when one is configured.
// A full outbox drops the event from forwarding only; the store copy remains.
type Publisher struct {
	store   Store
	logger  *slog.Logger
	outbox  chan Event
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
}

type PublisherOption func(*Publisher)

// WithOutbox enables forwarding through a buffered channel drained by a Worker.
func WithOutbox(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.outbox = make(chan Event, size)
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stamps and stores the event. Timestamp and request id default from the
// request context.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	if p.outbox == nil {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		n := p.dropped.Add(1)
		p.logger.WarnContext(ctx, "audit outbox closed, event not forwarded",
			"action", event.Action,
			"event_id", event.ID,
			"dropped_total", n,
		)
		return nil
	}
	select {
	case p.outbox <- event:
	default:
		n := p.dropped.Add(1)
		p.logger.WarnContext(ctx, "audit outbox full, event not forwarded",
			"action", event.Action,
			"event_id", event.ID,
			"dropped_total", n,
		)
	}
	return nil
}

// List returns the most recent events, newest first.
func (p *Publisher) List(ctx context.Context, limit int) ([]Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Outbox is the channel a Worker drains. Nil when forwarding is disabled.
func (p *Publisher) Outbox() <-chan Event {
	return p.outbox
}

// Dropped reports how many events were not forwarded because the outbox was
// full or already closed.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close stops forwarding and closes the outbox so a Worker can finish its
// drain. Events emitted afterwards are still stored. Safe to call twice.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.outbox != nil {
		close(p.outbox)
	}
}
