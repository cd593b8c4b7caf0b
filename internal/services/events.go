package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/notekeep/apiserver/internal/logging"
	"github.com/notekeep/apiserver/internal/mq"
)

// Auth event types.
const (
	EventSignedUp    = "user.signed_up"
	EventLoggedIn    = "user.logged_in"
	EventLoginFailed = "user.login_failed"
)

// Login failure reasons. They never leave the server through the HTTP API.
const (
	ReasonUnknownAccount = "unknown_account"
	ReasonWrongPassword  = "wrong_password"
)

const (
	defaultPublishTimeout = 2 * time.Second
	defaultEventQueueSize = 256
)

// AuthEvent is the payload published for every signup and login attempt.
type AuthEvent struct {
	Type   string    `json:"type"`
	UserID uuid.UUID `json:"user_id,omitempty"`
	Email  string    `json:"email"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

// EventPublisher publishes auth events on a bus from a background worker.
// Publish never waits on the broker: events are queued and dropped with a
// warning when the queue is full. A nil bus turns it into a no-op.
type EventPublisher struct {
	bus     *mq.Bus
	log     logging.Logger
	now     func() time.Time
	timeout time.Duration
	size    int

	mu     sync.RWMutex
	closed bool
	queue  chan AuthEvent
	done   chan struct{}
}

// EventOption configures an EventPublisher.
type EventOption func(*EventPublisher)

// WithPublishTimeout bounds each broker call made by the worker.
func WithPublishTimeout(d time.Duration) EventOption {
	return func(p *EventPublisher) { p.timeout = d }
}

// WithEventQueueSize sets how many events may wait for the worker.
func WithEventQueueSize(n int) EventOption {
	return func(p *EventPublisher) { p.size = n }
}

func NewEventPublisher(bus *mq.Bus, log logging.Logger, opts ...EventOption) *EventPublisher {
	p := &EventPublisher{
		bus:     bus,
		log:     log,
		now:     time.Now,
		timeout: defaultPublishTimeout,
		size:    defaultEventQueueSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	if bus != nil {
		p.queue = make(chan AuthEvent, p.size)
		p.done = make(chan struct{})
		go p.run()
	}
	return p
}

// Publish queues event for delivery.
func (p *EventPublisher) Publish(ctx context.Context, event AuthEvent) {
	if p == nil || p.bus == nil {
		return
	}
	if event.At.IsZero() {
		event.At = p.now().UTC()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.log.Warn(ctx, "auth event dropped, publisher closed", "type", event.Type)
		return
	}
	select {
	case p.queue <- event:
	default:
		p.log.Warn(ctx, "auth event dropped, queue full", "type", event.Type, "channel", p.bus.Channel())
	}
}

// Close stops accepting events and waits until the queued ones are
// delivered or ctx is done.
func (p *EventPublisher) Close(ctx context.Context) error {
	if p == nil || p.bus == nil {
		return nil
	}
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *EventPublisher) run() {
	defer close(p.done)
	for event := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		_, err := p.bus.PublishJSON(ctx, event, map[string]string{"type": event.Type})
		cancel()
		if err != nil {
			p.log.Warn(context.Background(), "publish auth event failed", "type", event.Type, "channel", p.bus.Channel(), "error", err)
		}
	}
}
