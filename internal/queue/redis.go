package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig represents Redis Streams configuration
type RedisConfig struct {
	URL      string        // Redis URL (e.g., redis://localhost:6379)
	Password string        // Optional password
	DB       int           // Database number (default: 0)
	Stream   string        // Stream prefix (default: "greenhouse")
	Group    string        // Consumer group name (default: "greenhouse-group")
	Consumer string        // Consumer name (default: hostname)
	Block    time.Duration // XREADGROUP block time (default: 5s)
}

// RedisQueue implements Queue interface using Redis Streams.
// A message that fails its handler stays pending in the consumer group.
type RedisQueue struct {
	client *redis.Client
	config RedisConfig
	subs   *subscriptions
	wg     sync.WaitGroup
}

// newRedisQueue connects to Redis and verifies the connection
func newRedisQueue(cfg RedisConfig) (*RedisQueue, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{
			Addr:     cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisQueueWithClient(client, cfg), nil
}

// newRedisQueueWithClient wraps an existing client and applies defaults
func newRedisQueueWithClient(client *redis.Client, cfg RedisConfig) *RedisQueue {
	if cfg.Stream == "" {
		cfg.Stream = "greenhouse"
	}
	if cfg.Group == "" {
		cfg.Group = "greenhouse-group"
	}
	if cfg.Consumer == "" {
		hostname, _ := os.Hostname()
		if hostname == "" {
			hostname = "consumer-1"
		}
		cfg.Consumer = hostname
	}
	if cfg.Block <= 0 {
		cfg.Block = 5 * time.Second
	}

	return &RedisQueue{
		client: client,
		config: cfg,
		subs:   newSubscriptions(),
	}
}

// streamName converts a subject to a Redis stream key
func (q *RedisQueue) streamName(subject string) string {
	return q.config.Stream + ":" + subject
}

func (q *RedisQueue) addArgs(subject string, data []byte) *redis.XAddArgs {
	return &redis.XAddArgs{
		Stream: q.streamName(subject),
		ID:     "*",
		Values: map[string]interface{}{"data": data},
	}
}

// Publish appends a message to the subject stream
func (q *RedisQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if err := q.client.XAdd(ctx, q.addArgs(subject, data)).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis stream %s: %w", q.streamName(subject), err)
	}
	return nil
}

// PublishBatch appends all messages in one pipeline
func (q *RedisQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	pipe := q.client.Pipeline()
	for _, msg := range messages {
		pipe.XAdd(ctx, q.addArgs(msg.Subject, msg.Data))
	}

	cmds, err := pipe.Exec(ctx)
	published := 0
	for _, cmd := range cmds {
		if cmd.Err() == nil {
			published++
		}
	}
	if err != nil && published == 0 {
		return 0, fmt.Errorf("failed to execute batch publish: %w", err)
	}
	return published, nil
}

// Subscribe reads subject through the consumer group in the background
func (q *RedisQueue) Subscribe(subject string, handler MessageHandler) error {
	if err := q.subs.reserve(subject); err != nil {
		return err
	}

	stream := q.streamName(subject)
	ctx, cancel := context.WithCancel(context.Background())

	err := q.client.XGroupCreateMkStream(ctx, stream, q.config.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		cancel()
		q.subs.release(subject)
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.readStream(ctx, stream, handler)
	}()

	q.subs.set(subject, func() error {
		cancel()
		return nil
	})
	return nil
}

// readStream reads and acks messages until ctx is cancelled
func (q *RedisQueue) readStream(ctx context.Context, stream string, handler MessageHandler) {
	for ctx.Err() == nil {
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.config.Group,
			Consumer: q.config.Consumer,
			Streams:  []string{stream, ">"},
			Count:    100,
			Block:    q.config.Block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			// back off on connection errors instead of spinning
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				data, ok := msg.Values["data"].(string)
				if ok {
					if err := handler([]byte(data)); err != nil {
						continue
					}
				}
				q.client.XAck(ctx, stream, q.config.Group, msg.ID)
			}
		}
	}
}

// Unsubscribe unsubscribes from a subject
func (q *RedisQueue) Unsubscribe(subject string) error {
	return q.subs.stop(subject)
}

// Close stops all readers and closes the client
func (q *RedisQueue) Close() error {
	_ = q.subs.stopAll()
	q.wg.Wait()
	return q.client.Close()
}
