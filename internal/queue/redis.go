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

	"github.com/fabzclean/analytics/internal/logging"
	"github.com/fabzclean/analytics/internal/utils"
)

// RedisConfig represents Redis Streams configuration
type RedisConfig struct {
	URL      string // redis://host:port/db, or a bare host:port
	Username string
	Password string
	DB       int
	Stream   string // Stream key prefix (default: "analytics")
	Group    string // Consumer group (default: "analytics-group")
	Consumer string // Consumer name (default: hostname)
}

// withDefaults fills the unset naming fields
func (c RedisConfig) withDefaults() RedisConfig {
	if c.URL == "" {
		c.URL = "redis://localhost:6379"
	}
	if c.Stream == "" {
		c.Stream = "analytics"
	}
	if c.Group == "" {
		c.Group = "analytics-group"
	}
	if c.Consumer == "" {
		if host, err := os.Hostname(); err == nil && host != "" {
			c.Consumer = host
		} else {
			c.Consumer = "analytics-consumer"
		}
	}
	return c
}

// options turns the config into client options
func (c RedisConfig) options() *redis.Options {
	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		opts = &redis.Options{Addr: c.URL, DB: c.DB}
	}
	if c.Username != "" {
		opts.Username = c.Username
	}
	if c.Password != "" {
		opts.Password = c.Password
	}
	if c.DB != 0 {
		opts.DB = c.DB
	}
	return opts
}

// RedisQueue implements Queue on Redis Streams consumer groups. Reply
// streams expire after utils.ReplyTTL and are deleted on Unsubscribe.
type RedisQueue struct {
	client *redis.Client
	cfg    RedisConfig
	logger *logging.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func newRedisQueue(cfg RedisConfig, logger *logging.Logger) (*RedisQueue, error) {
	cfg = cfg.withDefaults()
	client := redis.NewClient(cfg.options())

	ctx, cancel := context.WithTimeout(context.Background(), utils.PublishTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisQueue{
		client:  client,
		cfg:     cfg,
		logger:  logger,
		cancels: make(map[string]context.CancelFunc),
	}, nil
}

func (q *RedisQueue) stream(subject string) string {
	return q.cfg.Stream + ":" + subject
}

func (q *RedisQueue) addArgs(subject string, data []byte) *redis.XAddArgs {
	return &redis.XAddArgs{
		Stream: q.stream(subject),
		Values: map[string]interface{}{"data": data},
	}
}

// Publish appends the message to the subject's stream
func (q *RedisQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if IsReplySubject(subject) {
		_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.XAdd(ctx, q.addArgs(subject, data))
			pipe.Expire(ctx, q.stream(subject), utils.ReplyTTL)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to publish to Redis stream %s: %w", q.stream(subject), err)
		}
		return nil
	}
	if err := q.client.XAdd(ctx, q.addArgs(subject, data)).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis stream %s: %w", q.stream(subject), err)
	}
	return nil
}

// PublishBatch appends every message in one pipeline round trip
func (q *RedisQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	cmds, err := q.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, msg := range messages {
			pipe.XAdd(ctx, q.addArgs(msg.Subject, msg.Data))
			if IsReplySubject(msg.Subject) {
				pipe.Expire(ctx, q.stream(msg.Subject), utils.ReplyTTL)
			}
		}
		return nil
	})
	if err != nil && len(cmds) == 0 {
		return 0, fmt.Errorf("failed to execute batch publish: %w", err)
	}

	accepted := 0
	for _, cmd := range cmds {
		if cmd.Name() == "xadd" && cmd.Err() == nil {
			accepted++
		}
	}
	return accepted, nil
}

// Subscribe joins the consumer group for subject and reads in the background
func (q *RedisQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.cancels[subject]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadySubscribed, subject)
	}

	stream := q.stream(subject)
	ctx, cancel := context.WithCancel(context.Background())
	err := q.client.XGroupCreateMkStream(ctx, stream, q.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		cancel()
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	if IsReplySubject(subject) {
		q.client.Expire(ctx, stream, utils.ReplyTTL)
	}

	q.cancels[subject] = cancel
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.consume(ctx, stream, handler)
	}()
	return nil
}

func (q *RedisQueue) consume(ctx context.Context, stream string, handler MessageHandler) {
	for ctx.Err() == nil {
		res, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.cfg.Group,
			Consumer: q.cfg.Consumer,
			Streams:  []string{stream, ">"},
			Count:    utils.MaxInFlight,
			Block:    utils.PollInterval,
		}).Result()
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, redis.Nil) {
				q.logger.Warn("Redis stream read failed", "stream", stream, "error", err)
				time.Sleep(utils.PollInterval)
			}
			continue
		}

		for _, s := range res {
			for _, msg := range s.Messages {
				q.handle(ctx, stream, msg, handler)
			}
		}
	}
}

// handle runs handler on one entry and acknowledges it on success.
// Malformed entries are acknowledged so they do not block the group.
func (q *RedisQueue) handle(ctx context.Context, stream string, msg redis.XMessage, handler MessageHandler) {
	data, ok := msg.Values["data"].(string)
	if !ok {
		q.logger.Warn("Dropping malformed stream entry", "stream", stream, "id", msg.ID)
		q.client.XAck(ctx, stream, q.cfg.Group, msg.ID)
		return
	}

	if err := handler([]byte(data)); err != nil {
		q.logger.Warn("Message handler failed, leaving entry pending", "stream", stream, "id", msg.ID, "error", err)
		return
	}
	q.client.XAck(ctx, stream, q.cfg.Group, msg.ID)
}

// Unsubscribe stops the reader for subject and deletes a reply stream
func (q *RedisQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	cancel, ok := q.cancels[subject]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSubscribed, subject)
	}
	cancel()
	delete(q.cancels, subject)

	if IsReplySubject(subject) {
		return q.dropReplies([]string{subject})
	}
	return nil
}

// Close stops every reader, deletes reply streams and closes the client
func (q *RedisQueue) Close() error {
	var replies []string
	q.mu.Lock()
	for subject, cancel := range q.cancels {
		cancel()
		delete(q.cancels, subject)
		if IsReplySubject(subject) {
			replies = append(replies, subject)
		}
	}
	q.mu.Unlock()

	q.wg.Wait()
	err := q.dropReplies(replies)
	return errors.Join(err, q.client.Close())
}

func (q *RedisQueue) dropReplies(subjects []string) error {
	if len(subjects) == 0 {
		return nil
	}
	keys := make([]string, len(subjects))
	for i, subject := range subjects {
		keys[i] = q.stream(subject)
	}

	ctx, cancel := context.WithTimeout(context.Background(), utils.PublishTimeout)
	defer cancel()
	if err := q.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete reply streams: %w", err)
	}
	return nil
}
