package event

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/caretkit/internal/event/topic"
)

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithErrorHandler sets the handler for handler failures.
func WithErrorHandler(h ErrorHandler) BusOption {
	return func(b *Bus) {
		if h != nil {
			b.onError = h
		}
	}
}

// WithLogger sets the logger used to report handler failures.
func WithLogger(l *zap.Logger) BusOption {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// Bus delivers notifications synchronously to subscribed handlers in
// priority order. Subscribing and publishing are safe for concurrent use;
// delivery always runs on the publisher's goroutine.
type Bus struct {
	mu     sync.RWMutex
	subs   []*Subscription
	seq    uint64
	closed atomic.Bool

	onError ErrorHandler
	logger  *zap.Logger

	eventsPublished  atomic.Uint64
	eventsDelivered  atomic.Uint64
	handlersExecuted atomic.Uint64
	handlerErrors    atomic.Uint64
	handlerPanics    atomic.Uint64
}

// NewBus creates a bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for events whose topic matches pattern.
func (b *Bus) Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (*Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, fmt.Errorf("subscribe %q: %w", pattern, ErrInvalidTopic)
	}
	if b.closed.Load() {
		return nil, ErrBusClosed
	}

	cfg := SubscriptionConfig{Priority: PriorityNormal}
	for _, opt := range opts {
		opt(&cfg)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	sub := &Subscription{
		id:      uuid.NewString(),
		topic:   pattern,
		handler: handler,
		config:  cfg,
		seq:     b.seq,
	}
	b.subs = append(b.subs, sub)
	sort.SliceStable(b.subs, func(i, j int) bool {
		if b.subs[i].config.Priority != b.subs[j].config.Priority {
			return b.subs[i].config.Priority < b.subs[j].config.Priority
		}
		return b.subs[i].seq < b.subs[j].seq
	})
	return sub, nil
}

// SubscribeFunc subscribes a function handler.
func (b *Bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	sub.Cancel()

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers event to every matching subscription before returning.
// The event must carry a topic (every Event does). Handler errors and
// panics are reported to the error handler and do not stop delivery; only
// a cancelled context does.
func (b *Bus) Publish(ctx context.Context, event any) error {
	if b.closed.Load() {
		return ErrBusClosed
	}
	t, ok := event.(Topiced)
	if !ok || !t.Topic().IsValid() || t.Topic().IsWildcard() {
		return ErrInvalidEvent
	}
	eventTopic := t.Topic()
	b.eventsPublished.Add(1)

	for _, sub := range b.match(eventTopic) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !sub.IsActive() || !sub.accepts(event) {
			continue
		}
		if b.deliver(ctx, sub, eventTopic, event) && sub.config.Once {
			_ = b.Unsubscribe(sub)
		}
	}
	return nil
}

func (b *Bus) match(t topic.Topic) []*Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []*Subscription
	for _, s := range b.subs {
		if s.IsActive() && t.Matches(s.topic) {
			out = append(out, s)
		}
	}
	return out
}

func (b *Bus) deliver(ctx context.Context, sub *Subscription, t topic.Topic, event any) (ok bool) {
	b.handlersExecuted.Add(1)
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			b.fail(&PanicError{SubscriptionID: sub.id, Topic: t.String(), Value: r, Stack: string(debug.Stack())})
			ok = false
		}
	}()

	if err := sub.handler.Handle(ctx, event); err != nil {
		b.handlerErrors.Add(1)
		b.fail(&HandlerError{SubscriptionID: sub.id, Topic: t.String(), Err: err})
		return false
	}
	b.eventsDelivered.Add(1)
	return true
}

func (b *Bus) fail(err error) {
	b.logger.Warn("event handler failed", zap.Error(err))
	if b.onError != nil {
		b.onError(err)
	}
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	active := 0
	for _, s := range b.subs {
		if s.IsActive() {
			active++
		}
	}
	b.mu.RUnlock()

	return Stats{
		EventsPublished:   b.eventsPublished.Load(),
		EventsDelivered:   b.eventsDelivered.Load(),
		HandlersExecuted:  b.handlersExecuted.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		HandlerPanics:     b.handlerPanics.Load(),
		ActiveSubscribers: active,
	}
}

// Close cancels every subscription. Later publishes return ErrBusClosed.
func (b *Bus) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		s.Cancel()
	}
	b.subs = nil
}

// IsClosed returns true after Close.
func (b *Bus) IsClosed() bool {
	return b.closed.Load()
}
