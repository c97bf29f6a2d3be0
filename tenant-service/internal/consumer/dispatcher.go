package consumer

import (
	"context"
	"fmt"

	"github.com/junoblue/launch/pkg/log"
	"github.com/junoblue/launch/pkg/pubsub"
	"github.com/junoblue/launch/tenant-service/internal/domain"
)

// Handler reacts to a single tenant event.
type Handler interface {
	HandleEvent(ctx context.Context, ev *pubsub.Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev *pubsub.Event)

func (f HandlerFunc) HandleEvent(ctx context.Context, ev *pubsub.Event) { f(ctx, ev) }

// Dispatcher holds the one pattern subscription a replica keeps on the
// tenant channels and passes every event to each handler in turn. Buses
// allow a single subscription per pattern, so all listeners go through it.
type Dispatcher struct {
	sub      pubsub.Subscriber
	pattern  string
	handlers []Handler
	doneCh   chan struct{}
}

// NewDispatcher creates a dispatcher over sub.
func NewDispatcher(sub pubsub.Subscriber, handlers ...Handler) *Dispatcher {
	return &Dispatcher{
		sub:      sub,
		pattern:  pubsub.Pattern(domain.EventEntity),
		handlers: handlers,
		doneCh:   make(chan struct{}),
	}
}

// Start subscribes and dispatches events until ctx is done or the bus
// closes the subscription.
func (d *Dispatcher) Start(ctx context.Context) error {
	events, err := d.sub.SubscribePattern(ctx, d.pattern)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", d.pattern, err)
	}

	l := log.L()
	l.Info().Str("pattern", d.pattern).Int("handlers", len(d.handlers)).Msg("tenant event dispatcher started")

	go d.consumeLoop(ctx, events)
	return nil
}

// Done is closed once the loop has exited.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.doneCh
}

func (d *Dispatcher) consumeLoop(ctx context.Context, events <-chan *pubsub.Event) {
	l := log.L()
	defer close(d.doneCh)

	for {
		select {
		case <-ctx.Done():
			l.Info().Msg("tenant event dispatcher shutting down")
			return
		case ev, ok := <-events:
			if !ok {
				l.Warn().Str("pattern", d.pattern).Msg("tenant event subscription closed")
				return
			}
			for _, h := range d.handlers {
				h.HandleEvent(ctx, ev)
			}
		}
	}
}
