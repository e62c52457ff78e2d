package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

// HTTP Handler Timeouts
const (
	// DefaultRequestTimeout bounds a synchronous analytics request
	DefaultRequestTimeout = 30 * time.Second

	// PublishTimeout bounds publishing one report job or result
	PublishTimeout = 5 * time.Second

	// JobTimeout bounds generating one queued report
	JobTimeout = 60 * time.Second
)

// =============================================================================
// Queue Constants
// =============================================================================

// QueueType represents the type of message queue
type QueueType string

const (
	// QueueTypeNATS represents NATS JetStream queue (default)
	QueueTypeNATS QueueType = "nats"
	// QueueTypeRedis represents Redis Streams queue
	QueueTypeRedis QueueType = "redis"
	// QueueTypeKafka represents Apache Kafka queue
	QueueTypeKafka QueueType = "kafka"
	// QueueTypeMemory represents in-process channels, for tests and single-node runs
	QueueTypeMemory QueueType = "memory"
)

// Consumer tuning shared by the broker-backed queues
const (
	// MaxInFlight is the number of unacknowledged messages per subscription
	MaxInFlight = 64
	// AckWait is how long a broker waits before redelivering an unacked message
	AckWait = 2 * time.Minute
	// MaxDeliveries is how often a failing message is attempted
	MaxDeliveries = 3
	// PollInterval bounds a blocking read on Redis and Kafka
	PollInterval = 2 * time.Second
	// ReplyTTL is how long an unread reply stream survives on Redis
	ReplyTTL = 10 * time.Minute
)
