package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

// HTTP Handler Timeouts
const (
	// DefaultRequestTimeout is the default timeout for HTTP requests
	DefaultRequestTimeout = 30 * time.Second

	// StoreQueryTimeout bounds a single reading-store query issued by a handler
	StoreQueryTimeout = 5 * time.Second

	// ShutdownTimeout is the grace period for the HTTP server on shutdown
	ShutdownTimeout = 10 * time.Second
)

// =============================================================================
// Batch Size Constants
// =============================================================================

const (
	// DefaultLatestLimit is the default batch size for "latest value" queries
	DefaultLatestLimit = 1

	// DefaultHistoryLimit is the default batch size for chart history queries
	DefaultHistoryLimit = 20

	// DefaultAnalysisLimit is the default batch size fed to the analyzers
	DefaultAnalysisLimit = 100

	// MaxBatchSize is the maximum allowed batch size for any query
	MaxBatchSize = 10000
)

// =============================================================================
// Monitor Constants
// =============================================================================

const (
	// DefaultMonitorInterval is how often the monitor re-runs the analyzers
	DefaultMonitorInterval = 30 * time.Second

	// MinMonitorInterval is the smallest accepted monitor interval
	MinMonitorInterval = time.Second
)

// =============================================================================
// Queue Type Constants
// =============================================================================
// QueueType represents the type of message queue
type QueueType string

const (
	// QueueTypeNATS represents NATS JetStream queue
	QueueTypeNATS QueueType = "nats"

	// QueueTypeRedis represents Redis Streams queue
	QueueTypeRedis QueueType = "redis"

	// QueueTypeKafka represents Apache Kafka queue
	QueueTypeKafka QueueType = "kafka"

	// QueueTypeMemory represents in-memory queue (for testing and single-node setups)
	QueueTypeMemory QueueType = "memory"

	// QueueTypeNone disables queue ingestion entirely
	QueueTypeNone QueueType = "none"
)

// ClampLimit returns limit bounded to [1, MaxBatchSize], substituting def for non-positive values.
func ClampLimit(limit, def int) int {
	if limit <= 0 {
		limit = def
	}
	if limit > MaxBatchSize {
		limit = MaxBatchSize
	}
	return limit
}
