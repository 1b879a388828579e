// Package queue carries greenhouse readings from field devices and forecast
// alerts to subscribers over NATS JetStream, Redis Streams, Kafka or an
// in-process channel.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrAlreadySubscribed is returned when a subject already has a handler
	ErrAlreadySubscribed = errors.New("already subscribed")
	// ErrNotSubscribed is returned when unsubscribing an unknown subject
	ErrNotSubscribed = errors.New("not subscribed")
	// ErrClosed is returned by operations on a closed queue
	ErrClosed = errors.New("queue closed")
)

// Publisher publishes messages to a queue
type Publisher interface {
	// Publish publishes a message to a subject/topic
	Publish(ctx context.Context, subject string, data []byte) error

	// PublishBatch publishes multiple messages and waits for all to complete.
	// Returns the number of successfully published messages and any error
	PublishBatch(ctx context.Context, messages []BatchMessage) (int, error)

	// Close closes the connection
	Close() error
}

// BatchMessage represents a message for batch publishing
type BatchMessage struct {
	Subject string
	Data    []byte
}

// Subscriber subscribes to messages from a queue
type Subscriber interface {
	// Subscribe subscribes to a subject/topic with a handler
	Subscribe(subject string, handler MessageHandler) error

	// Unsubscribe unsubscribes from a subject/topic
	Unsubscribe(subject string) error

	// Close closes the connection
	Close() error
}

// MessageHandler handles incoming messages.
// Returning an error asks the backend to redeliver the message where it can.
type MessageHandler func(data []byte) error

// Queue combines Publisher and Subscriber interfaces
type Queue interface {
	Publisher
	Subscriber
}

// PublishJSON marshals v and publishes it on subject
func PublishJSON(ctx context.Context, p Publisher, subject string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode message for %s: %w", subject, err)
	}
	return p.Publish(ctx, subject, data)
}

// subscriptions tracks the stop function of every active subject
type subscriptions struct {
	mu     sync.Mutex
	active map[string]func() error
}

func newSubscriptions() *subscriptions {
	return &subscriptions{active: make(map[string]func() error)}
}

// reserve fails if subject is taken; the placeholder is replaced by set
func (s *subscriptions) reserve(subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.active[subject]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadySubscribed, subject)
	}
	s.active[subject] = func() error { return nil }
	return nil
}

func (s *subscriptions) set(subject string, stop func() error) {
	s.mu.Lock()
	s.active[subject] = stop
	s.mu.Unlock()
}

func (s *subscriptions) release(subject string) {
	s.mu.Lock()
	delete(s.active, subject)
	s.mu.Unlock()
}

// stop removes subject and runs its stop function
func (s *subscriptions) stop(subject string) error {
	s.mu.Lock()
	stop, exists := s.active[subject]
	delete(s.active, subject)
	s.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrNotSubscribed, subject)
	}
	return stop()
}

// stopAll stops every subscription and returns the last error
func (s *subscriptions) stopAll() error {
	s.mu.Lock()
	stops := s.active
	s.active = make(map[string]func() error)
	s.mu.Unlock()

	var lastErr error
	for _, stop := range stops {
		if err := stop(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (s *subscriptions) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}
