package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSConfig represents NATS JetStream configuration
type NATSConfig struct {
	URL          string
	Username     string
	Password     string
	StreamPrefix string        // Stream names are <prefix>-<subject> (default: "greenhouse")
	AckWait      time.Duration // Redeliver after this long without an ack (default: 30s)
	MaxDeliver   int           // Delivery attempts per message (default: 3)
}

// NATSQueue implements Queue interface using NATS JetStream.
// Every subject gets its own file-backed stream and durable consumer, so
// readings published while the service is down are replayed on restart.
type NATSQueue struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	config NATSConfig
	subs   *subscriptions

	streams sync.Map // stream names known to exist
}

// newNATSQueue connects to NATS and enables JetStream
func newNATSQueue(cfg NATSConfig) (*NATSQueue, error) {
	var opts []nats.Option
	if cfg.Username != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	q, err := newNATSQueueWithConn(conn, cfg)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return q, nil
}

// newNATSQueueWithConn wraps an existing connection
func newNATSQueueWithConn(conn *nats.Conn, cfg NATSConfig) (*NATSQueue, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if cfg.StreamPrefix == "" {
		cfg.StreamPrefix = "greenhouse"
	}
	if cfg.AckWait <= 0 {
		cfg.AckWait = 30 * time.Second
	}
	if cfg.MaxDeliver <= 0 {
		cfg.MaxDeliver = 3
	}

	return &NATSQueue{
		conn:   conn,
		js:     js,
		config: cfg,
		subs:   newSubscriptions(),
	}, nil
}

// ensureStream creates the stream backing subject if it does not exist
func (q *NATSQueue) ensureStream(subject string) error {
	name := q.config.StreamPrefix + "-" + sanitizeName(subject)
	if _, ok := q.streams.Load(name); ok {
		return nil
	}
	if _, err := q.js.StreamInfo(name); err == nil {
		q.streams.Store(name, struct{}{})
		return nil
	}

	_, err := q.js.AddStream(&nats.StreamConfig{
		Name:     name,
		Subjects: []string{subject},
		Storage:  nats.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream for subject %s: %w", subject, err)
	}
	q.streams.Store(name, struct{}{})
	return nil
}

// Publish publishes a message and waits for the JetStream ack
func (q *NATSQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if err := q.ensureStream(subject); err != nil {
		return err
	}
	var opts []nats.PubOpt
	if _, ok := ctx.Deadline(); ok {
		opts = append(opts, nats.Context(ctx))
	}
	if _, err := q.js.Publish(subject, data, opts...); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}
	return nil
}

// PublishBatch publishes asynchronously and waits for every ack
func (q *NATSQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	futures := make([]nats.PubAckFuture, 0, len(messages))
	for _, msg := range messages {
		if err := q.ensureStream(msg.Subject); err != nil {
			continue
		}
		future, err := q.js.PublishAsync(msg.Subject, msg.Data)
		if err != nil {
			continue
		}
		futures = append(futures, future)
	}

	select {
	case <-q.js.PublishAsyncComplete():
	case <-ctx.Done():
		return 0, fmt.Errorf("timeout waiting for batch publish: %w", ctx.Err())
	}

	published := 0
	for _, future := range futures {
		select {
		case <-future.Ok():
			published++
		case <-future.Err():
		}
	}
	return published, nil
}

// Subscribe attaches a durable, manually acked consumer to subject.
// Handler errors NAK the message so JetStream redelivers it up to MaxDeliver times.
func (q *NATSQueue) Subscribe(subject string, handler MessageHandler) error {
	if err := q.subs.reserve(subject); err != nil {
		return err
	}

	if err := q.ensureStream(subject); err != nil {
		q.subs.release(subject)
		return err
	}

	sub, err := q.js.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(msg.Data); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("consumer-"+sanitizeName(subject)),
		nats.ManualAck(),
		nats.MaxAckPending(100),
		nats.AckWait(q.config.AckWait),
		nats.MaxDeliver(q.config.MaxDeliver),
		nats.DeliverAll(),
	)
	if err != nil {
		q.subs.release(subject)
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	q.subs.set(subject, sub.Unsubscribe)
	return nil
}

// Unsubscribe unsubscribes from a subject
func (q *NATSQueue) Unsubscribe(subject string) error {
	return q.subs.stop(subject)
}

// Close unsubscribes everything and closes the connection
func (q *NATSQueue) Close() error {
	err := q.subs.stopAll()
	q.conn.Close()
	return err
}

// sanitizeName maps a subject to the characters allowed in stream and
// consumer names: A-Z, a-z, 0-9, dash and underscore
func sanitizeName(subject string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, subject)
}
