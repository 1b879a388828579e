package queue

import (
	"context"
	"fmt"
	"sync"
)

// memoryBuffer is the per-subject channel capacity
const memoryBuffer = 10000

// MemoryQueue implements Queue with in-process channels.
// Messages published before a subscriber arrives stay buffered for it.
// Used for tests and single-process deployments without a broker.
type MemoryQueue struct {
	mu       sync.Mutex
	channels map[string]chan []byte
	subs     *subscriptions
	wg       sync.WaitGroup
	closed   bool
}

// newMemoryQueue creates a new in-memory queue instance
func newMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		channels: make(map[string]chan []byte),
		subs:     newSubscriptions(),
	}
}

// channel returns the subject channel, creating it on first use
func (q *MemoryQueue) channel(subject string) (chan []byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, ErrClosed
	}
	ch, exists := q.channels[subject]
	if !exists {
		ch = make(chan []byte, memoryBuffer)
		q.channels[subject] = ch
	}
	return ch, nil
}

// Publish copies data onto the subject channel without blocking
func (q *MemoryQueue) Publish(ctx context.Context, subject string, data []byte) error {
	ch, err := q.channel(subject)
	if err != nil {
		return err
	}

	msg := make([]byte, len(data))
	copy(msg, data)

	select {
	case ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("channel full for subject: %s", subject)
	}
}

// PublishBatch publishes each message, skipping failures
func (q *MemoryQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	published := 0
	for _, msg := range messages {
		if err := q.Publish(ctx, msg.Subject, msg.Data); err != nil {
			if ctx.Err() != nil {
				return published, ctx.Err()
			}
			continue
		}
		published++
	}
	return published, nil
}

// Subscribe consumes subject in a background goroutine.
// Handler errors are dropped: the in-memory queue has no redelivery.
func (q *MemoryQueue) Subscribe(subject string, handler MessageHandler) error {
	ch, err := q.channel(subject)
	if err != nil {
		return err
	}
	if err := q.subs.reserve(subject); err != nil {
		return err
	}

	done := make(chan struct{})
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-done:
				return
			case data := <-ch:
				_ = handler(data)
			}
		}
	}()

	var once sync.Once
	q.subs.set(subject, func() error {
		once.Do(func() { close(done) })
		return nil
	})
	return nil
}

// Unsubscribe stops the consumer of subject; buffered messages are kept
func (q *MemoryQueue) Unsubscribe(subject string) error {
	return q.subs.stop(subject)
}

// Close stops all consumers and waits for them to exit
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	err := q.subs.stopAll()
	q.wg.Wait()
	return err
}

// Pending returns the number of buffered messages for a subject
func (q *MemoryQueue) Pending(subject string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if ch, exists := q.channels[subject]; exists {
		return len(ch)
	}
	return 0
}
