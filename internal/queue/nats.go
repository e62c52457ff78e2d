package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/fabzclean/analytics/internal/logging"
	"github.com/fabzclean/analytics/internal/utils"
)

// NATSConfig represents NATS connection options
type NATSConfig struct {
	URL      string
	Username string
	Password string
}

// NATSQueue implements Queue on NATS JetStream with one stream and one
// durable consumer per subject. Reply subjects use core NATS and leave
// nothing on the server.
type NATSQueue struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	logger *logging.Logger

	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

func newNATSQueue(cfg NATSConfig, logger *logging.Logger) (*NATSQueue, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}

	opts := []nats.Option{nats.Name("analytics")}
	if cfg.Username != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	q, err := natsQueueFromConn(conn, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return q, nil
}

func natsQueueFromConn(conn *nats.Conn, logger *logging.Logger) (*NATSQueue, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return &NATSQueue{
		conn:   conn,
		js:     js,
		logger: logger,
		subs:   make(map[string]*nats.Subscription),
	}, nil
}

// Publish stores the message in the subject's stream and waits for the ack
func (q *NATSQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if IsReplySubject(subject) {
		return q.publishReply(ctx, subject, data)
	}
	if err := q.ensureStream(subject); err != nil {
		return err
	}
	if _, err := q.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}
	return nil
}

// publishReply sends on core NATS and flushes so the reply has left the client
func (q *NATSQueue) publishReply(ctx context.Context, subject string, data []byte) error {
	if err := q.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}
	if err := q.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush reply %s: %w", subject, err)
	}
	return nil
}

// PublishBatch queues every message asynchronously and waits for the acks
func (q *NATSQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	futures := make([]nats.PubAckFuture, 0, len(messages))
	replies := 0
	for _, msg := range messages {
		if IsReplySubject(msg.Subject) {
			if err := q.publishReply(ctx, msg.Subject, msg.Data); err != nil {
				q.logger.Warn("Skipping batch message", "subject", msg.Subject, "error", err)
				continue
			}
			replies++
			continue
		}
		if err := q.ensureStream(msg.Subject); err != nil {
			q.logger.Warn("Skipping batch message", "subject", msg.Subject, "error", err)
			continue
		}
		future, err := q.js.PublishAsync(msg.Subject, msg.Data)
		if err != nil {
			q.logger.Warn("Skipping batch message", "subject", msg.Subject, "error", err)
			continue
		}
		futures = append(futures, future)
	}
	if len(futures) == 0 {
		return replies, nil
	}

	select {
	case <-q.js.PublishAsyncComplete():
	case <-ctx.Done():
		return replies, fmt.Errorf("timeout waiting for batch publish: %w", ctx.Err())
	}

	acked := replies
	for _, future := range futures {
		select {
		case <-future.Ok():
			acked++
		case err := <-future.Err():
			q.logger.Warn("Batch message rejected", "subject", future.Msg().Subject, "error", err)
		}
	}
	return acked, nil
}

// Subscribe attaches a durable, manually acknowledged consumer to subject
func (q *NATSQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.subs[subject]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadySubscribed, subject)
	}
	if IsReplySubject(subject) {
		return q.subscribeReply(subject, handler)
	}
	if err := q.ensureStream(subject); err != nil {
		return err
	}

	sub, err := q.js.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(msg.Data); err != nil {
			q.logger.Warn("Message handler failed, requesting redelivery", "subject", subject, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("consumer-"+subjectToken(subject)),
		nats.ManualAck(),
		nats.MaxAckPending(utils.MaxInFlight),
		nats.AckWait(utils.AckWait),
		nats.MaxDeliver(utils.MaxDeliveries),
		nats.DeliverAll(),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	q.subs[subject] = sub
	q.logger.Debug("Subscribed", "subject", subject)
	return nil
}

// subscribeReply attaches a plain core NATS subscription; callers hold q.mu
func (q *NATSQueue) subscribeReply(subject string, handler MessageHandler) error {
	sub, err := q.conn.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(msg.Data); err != nil {
			q.logger.Warn("Reply handler failed, dropping message", "subject", subject, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}
	// the server must know the interest before anyone replies
	if err := q.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	q.subs[subject] = sub
	q.logger.Debug("Subscribed to reply subject", "subject", subject)
	return nil
}

// Unsubscribe drops the subscription for subject. The durable consumer stays
// on the server so a later Subscribe resumes where it left off.
func (q *NATSQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	sub, ok := q.subs[subject]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSubscribed, subject)
	}
	delete(q.subs, subject)

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe from subject %s: %w", subject, err)
	}
	return nil
}

// Close drains subscriptions and closes the connection
func (q *NATSQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for subject, sub := range q.subs {
		if err := sub.Unsubscribe(); err != nil {
			q.logger.Warn("Failed to unsubscribe", "subject", subject, "error", err)
		}
		delete(q.subs, subject)
	}
	q.conn.Close()
	return nil
}

// ensureStream creates the stream backing subject when it does not exist
func (q *NATSQueue) ensureStream(subject string) error {
	name := "analytics-" + subjectToken(subject)
	if _, err := q.js.StreamInfo(name); err == nil {
		return nil
	}

	_, err := q.js.AddStream(&nats.StreamConfig{
		Name:     name,
		Subjects: []string{subject},
		Storage:  nats.FileStorage,
	})
	if err != nil && !strings.Contains(err.Error(), "already in use") {
		return fmt.Errorf("failed to create stream for subject %s: %w", subject, err)
	}
	return nil
}

// subjectToken maps a subject to the character set JetStream allows in
// stream and consumer names
func subjectToken(subject string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, subject)
}
