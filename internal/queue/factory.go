package queue

import (
	"fmt"
	"strings"

	"github.com/soltixdb/greenhouse/internal/config"
	"github.com/soltixdb/greenhouse/internal/utils"
)

// NewQueue creates a new Queue instance based on configuration
func NewQueue(cfg config.QueueConfig) (Queue, error) {
	queueType := utils.QueueType(strings.ToLower(cfg.Type))

	switch queueType {
	case utils.QueueTypeNATS:
		q, err := newNATSQueue(NATSConfig{
			URL:          cfg.URL,
			Username:     cfg.Username,
			Password:     cfg.Password,
			StreamPrefix: cfg.StreamPrefix,
		})
		if err != nil {
			return nil, err
		}
		return q, nil

	case utils.QueueTypeRedis:
		q, err := newRedisQueue(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.RedisDB,
			Stream:   cfg.StreamPrefix,
			Group:    cfg.RedisGroup,
			Consumer: cfg.RedisConsumer,
		})
		if err != nil {
			return nil, err
		}
		return q, nil

	case utils.QueueTypeKafka:
		q, err := newKafkaQueue(KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			GroupID: cfg.KafkaGroupID,
		})
		if err != nil {
			return nil, err
		}
		return q, nil

	case utils.QueueTypeMemory:
		return newMemoryQueue(), nil

	case utils.QueueTypeNone, "":
		return nil, fmt.Errorf("queue is disabled (type %q)", cfg.Type)

	default:
		return nil, fmt.Errorf("unsupported queue type: %s (supported: nats, redis, kafka, memory)", queueType)
	}
}
