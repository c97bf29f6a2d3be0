package pubsub

import (
	"context"
	"path"
	"sync"

	"github.com/junoblue/launch/pkg/log"
)

type memorySubscription struct {
	pattern bool
	ch      chan *Event
	cancel  context.CancelFunc
}

// MemoryPubSub delivers events inside one process. It backs single-node
// deployments and tests. Patterns use Redis glob syntax.
type MemoryPubSub struct {
	mu     sync.RWMutex
	subs   map[string]*memorySubscription
	closed bool
}

// NewMemoryPubSub creates an empty in-process bus.
func NewMemoryPubSub() *MemoryPubSub {
	return &MemoryPubSub{subs: make(map[string]*memorySubscription)}
}

func (m *MemoryPubSub) Publish(ctx context.Context, channel string, event *Event) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for key, sub := range m.subs {
		if !matches(key, sub.pattern, channel) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			l := log.Ctx(ctx)
			l.Warn().Str("subscription", key).Str("event_type", event.Type).Msg("memory pubsub: subscriber full, event dropped")
		}
	}
	return nil
}

func matches(key string, pattern bool, channel string) bool {
	if !pattern {
		return key == channel
	}
	ok, err := path.Match(key, channel)
	return err == nil && ok
}

func (m *MemoryPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	return m.subscribe(ctx, channel, false), nil
}

func (m *MemoryPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error) {
	return m.subscribe(ctx, pattern, true), nil
}

func (m *MemoryPubSub) subscribe(ctx context.Context, key string, pattern bool) <-chan *Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeLocked(key)

	subCtx, cancel := context.WithCancel(ctx)
	sub := &memorySubscription{pattern: pattern, ch: make(chan *Event, 100), cancel: cancel}
	if m.closed {
		cancel()
		close(sub.ch)
		return sub.ch
	}
	m.subs[key] = sub

	go func() {
		<-subCtx.Done()
		m.mu.Lock()
		if m.subs[key] == sub {
			m.removeLocked(key)
		}
		m.mu.Unlock()
	}()

	return sub.ch
}

// removeLocked closes the subscription under key. Callers hold mu.
func (m *MemoryPubSub) removeLocked(key string) {
	sub, ok := m.subs[key]
	if !ok {
		return
	}
	delete(m.subs, key)
	sub.cancel()
	close(sub.ch)
}

func (m *MemoryPubSub) Unsubscribe(_ context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(channel)
	return nil
}

func (m *MemoryPubSub) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.subs {
		m.removeLocked(key)
	}
	m.closed = true
	return nil
}
