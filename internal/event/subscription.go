package event

import (
	"sync/atomic"

	"github.com/dshills/caretkit/internal/event/topic"
)

// SubscriptionConfig contains configuration for a subscription.
type SubscriptionConfig struct {
	// Priority determines execution order (lower values run first).
	Priority Priority

	// Filter optionally restricts delivery.
	Filter FilterFunc

	// Once cancels the subscription after its first successful delivery.
	Once bool
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithPriority sets the subscription priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Priority = p
	}
}

// WithFilter sets a filter predicate.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Filter = f
	}
}

// WithOnce cancels the subscription after the first delivery.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

// Subscription is a handle to a registered handler.
type Subscription struct {
	id        string
	topic     topic.Topic
	handler   Handler
	config    SubscriptionConfig
	seq       uint64
	cancelled atomic.Bool
}

// ID returns the subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Topic returns the subscribed pattern.
func (s *Subscription) Topic() topic.Topic {
	return s.topic
}

// Priority returns the subscription priority.
func (s *Subscription) Priority() Priority {
	return s.config.Priority
}

// IsActive returns true until the subscription is cancelled.
func (s *Subscription) IsActive() bool {
	return !s.cancelled.Load()
}

// Cancel stops delivery to the subscription. The bus drops cancelled
// subscriptions on the next publish.
func (s *Subscription) Cancel() {
	s.cancelled.Store(true)
}

func (s *Subscription) accepts(event any) bool {
	return s.config.Filter == nil || s.config.Filter(event)
}
