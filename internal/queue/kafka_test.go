package queue

import (
	"context"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kafkaBrokers() []string {
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		return strings.Split(brokers, ",")
	}
	return []string{"localhost:9092"}
}

func skipWithoutKafka(t *testing.T) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", kafkaBrokers()[0], time.Second)
	if err != nil {
		t.Skip("Kafka not available, skipping test")
	}
	_ = conn.Close()
}

func TestKafkaQueue_RequiresBrokers(t *testing.T) {
	q, err := newKafkaQueue(KafkaConfig{})
	assert.Error(t, err)
	assert.Nil(t, q)
}

func TestKafkaQueue_Defaults(t *testing.T) {
	q, err := newKafkaQueue(KafkaConfig{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	assert.Equal(t, "greenhouse", q.config.GroupID)
	assert.Equal(t, 100, q.config.BatchSize)
	assert.Equal(t, 10*time.Millisecond, q.config.BatchTimeout)
	assert.Equal(t, 3, q.config.MaxAttempts)
	assert.Equal(t, 3, q.config.CommitRetries)
}

func TestKafkaQueue_WriterPerTopic(t *testing.T) {
	q, err := newKafkaQueue(KafkaConfig{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	a := q.writer("a")
	assert.Same(t, a, q.writer("a"))
	assert.NotSame(t, a, q.writer("b"))
	assert.Equal(t, "a", a.Topic)
}

func TestKafkaQueue_PublishBatchEmpty(t *testing.T) {
	q, err := newKafkaQueue(KafkaConfig{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	n, err := q.PublishBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestKafkaQueue_PublishSubscribe(t *testing.T) {
	skipWithoutKafka(t)

	q, err := newKafkaQueue(KafkaConfig{
		Brokers: kafkaBrokers(),
		GroupID: "test-" + uuid.NewString(),
	})
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	topic := "greenhouse-test-" + uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	require.NoError(t, q.Publish(ctx, topic, []byte("hello")))

	received := collect(t, q, topic)
	assert.Equal(t, "hello", string(receive(t, received, 20*time.Second)))
}
