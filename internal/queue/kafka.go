package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/fabzclean/analytics/internal/logging"
	"github.com/fabzclean/analytics/internal/utils"
)

// KafkaConfig represents Apache Kafka configuration
type KafkaConfig struct {
	Brokers      []string
	GroupID      string        // Consumer group (default: "analytics-worker")
	BatchTimeout time.Duration // Producer linger (default: 10ms)
}

// KafkaQueue implements Queue on Kafka topics, one topic per subject.
// Reply topics are read without a consumer group and deleted on Unsubscribe.
type KafkaQueue struct {
	cfg    KafkaConfig
	writer *kafka.Writer
	admin  *kafka.Client
	logger *logging.Logger

	mu      sync.Mutex
	readers map[string]*kafka.Reader
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func newKafkaQueue(cfg KafkaConfig, logger *logging.Logger) (*KafkaQueue, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}
	if cfg.GroupID == "" {
		cfg.GroupID = "analytics-worker"
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}

	// Topic is set per message so one writer serves every subject
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequireOne,
		MaxAttempts:            utils.MaxDeliveries,
		AllowAutoTopicCreation: true,
	}

	return &KafkaQueue{
		cfg:     cfg,
		writer:  writer,
		admin:   &kafka.Client{Addr: kafka.TCP(cfg.Brokers...), Timeout: utils.PublishTimeout},
		logger:  logger,
		readers: make(map[string]*kafka.Reader),
		cancels: make(map[string]context.CancelFunc),
	}, nil
}

// Publish writes one message to the subject's topic
func (q *KafkaQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if err := q.writer.WriteMessages(ctx, kafka.Message{Topic: subject, Value: data}); err != nil {
		return fmt.Errorf("failed to publish to kafka topic %s: %w", subject, err)
	}
	return nil
}

// PublishBatch writes every message in one producer call. A partial failure
// reports the count of messages that were written.
func (q *KafkaQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	msgs := make([]kafka.Message, len(messages))
	for i, m := range messages {
		msgs[i] = kafka.Message{Topic: m.Subject, Value: m.Data}
	}

	err := q.writer.WriteMessages(ctx, msgs...)
	if err == nil {
		return len(msgs), nil
	}

	var writeErrs kafka.WriteErrors
	if errors.As(err, &writeErrs) {
		failed := writeErrs.Count()
		if failed < len(msgs) {
			return len(msgs) - failed, nil
		}
	}
	return 0, fmt.Errorf("failed to publish batch: %w", err)
}

// Subscribe starts a consumer-group reader for the subject's topic
func (q *KafkaQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.cancels[subject]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadySubscribed, subject)
	}

	readerCfg := kafka.ReaderConfig{
		Brokers:  q.cfg.Brokers,
		GroupID:  q.cfg.GroupID,
		Topic:    subject,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  utils.PollInterval,
	}
	if IsReplySubject(subject) {
		readerCfg.GroupID = ""
		readerCfg.StartOffset = kafka.FirstOffset
	}
	reader := kafka.NewReader(readerCfg)
	ctx, cancel := context.WithCancel(context.Background())

	q.readers[subject] = reader
	q.cancels[subject] = cancel
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.consume(ctx, reader, handler)
	}()
	return nil
}

// consume commits a message only after handler accepts it. A rejected
// message is retried in place up to MaxDeliveries times, then skipped.
func (q *KafkaQueue) consume(ctx context.Context, reader *kafka.Reader, handler MessageHandler) {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			q.logger.Warn("Kafka fetch failed", "topic", reader.Config().Topic, "error", err)
			time.Sleep(utils.PollInterval)
			continue
		}

		for attempt := 1; attempt <= utils.MaxDeliveries; attempt++ {
			if err = handler(msg.Value); err == nil {
				break
			}
			q.logger.Warn("Message handler failed",
				"topic", msg.Topic, "offset", msg.Offset, "attempt", attempt, "error", err)
		}

		if reader.Config().GroupID == "" {
			continue
		}
		if err := reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			q.logger.Error("Kafka commit failed", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
	}
}

// Unsubscribe stops and closes the reader for subject and deletes a reply topic
func (q *KafkaQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	cancel, ok := q.cancels[subject]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSubscribed, subject)
	}
	cancel()
	err := q.readers[subject].Close()
	delete(q.cancels, subject)
	delete(q.readers, subject)

	if IsReplySubject(subject) {
		err = errors.Join(err, q.dropReplies([]string{subject}))
	}
	return err
}

// Close stops every reader, deletes reply topics and flushes the writer
func (q *KafkaQueue) Close() error {
	q.mu.Lock()
	var errs []error
	var replies []string
	for subject, cancel := range q.cancels {
		cancel()
		if err := q.readers[subject].Close(); err != nil {
			errs = append(errs, err)
		}
		delete(q.cancels, subject)
		delete(q.readers, subject)
		if IsReplySubject(subject) {
			replies = append(replies, subject)
		}
	}
	q.mu.Unlock()

	q.wg.Wait()
	if err := q.dropReplies(replies); err != nil {
		errs = append(errs, err)
	}
	if err := q.writer.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (q *KafkaQueue) dropReplies(topics []string) error {
	if len(topics) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), utils.PublishTimeout)
	defer cancel()
	resp, err := q.admin.DeleteTopics(ctx, &kafka.DeleteTopicsRequest{Topics: topics})
	if err != nil {
		return fmt.Errorf("failed to delete reply topics: %w", err)
	}

	var errs []error
	for topic, err := range resp.Errors {
		// the topic never exists when no reply was published
		if err != nil && !errors.Is(err, kafka.UnknownTopicOrPartition) {
			errs = append(errs, fmt.Errorf("failed to delete reply topic %s: %w", topic, err))
		}
	}
	return errors.Join(errs...)
}
