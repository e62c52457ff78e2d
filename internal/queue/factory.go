package queue

import (
	"fmt"
	"strings"

	"github.com/fabzclean/analytics/internal/config"
	"github.com/fabzclean/analytics/internal/logging"
	"github.com/fabzclean/analytics/internal/utils"
)

// NewQueue creates the backend named by cfg.Type, NATS when empty
func NewQueue(cfg config.QueueConfig, logger *logging.Logger) (Queue, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	queueType := utils.QueueType(strings.ToLower(strings.TrimSpace(cfg.Type)))
	if queueType == "" {
		queueType = utils.QueueTypeNATS
	}
	logger = logger.With("queue", string(queueType))

	switch queueType {
	case utils.QueueTypeNATS:
		return newNATSQueue(NATSConfig{
			URL:      cfg.URL,
			Username: cfg.Username,
			Password: cfg.Password,
		}, logger)

	case utils.QueueTypeRedis:
		return newRedisQueue(RedisConfig{
			URL:      cfg.URL,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.RedisDB,
			Stream:   cfg.RedisStream,
			Group:    cfg.RedisGroup,
			Consumer: cfg.RedisConsumer,
		}, logger)

	case utils.QueueTypeKafka:
		return newKafkaQueue(KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			GroupID: cfg.KafkaGroupID,
		}, logger)

	case utils.QueueTypeMemory:
		return newMemoryQueue(logger), nil

	default:
		return nil, fmt.Errorf("unsupported queue type: %s (supported: nats, redis, kafka, memory)", queueType)
	}
}
