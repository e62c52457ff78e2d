package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/fabzclean/analytics/internal/logging"
)

// memoryBuffer is the per-subject channel capacity
const memoryBuffer = 1024

// MemoryQueue implements Queue with in-process channels. Messages published
// before a subscriber attaches wait in the subject's buffer.
type MemoryQueue struct {
	logger *logging.Logger

	mu       sync.Mutex
	closed   bool
	channels map[string]chan []byte
	cancels  map[string]context.CancelFunc
	wg       sync.WaitGroup
}

func newMemoryQueue(logger *logging.Logger) *MemoryQueue {
	return &MemoryQueue{
		logger:   logger,
		channels: make(map[string]chan []byte),
		cancels:  make(map[string]context.CancelFunc),
	}
}

// channel returns the buffer for subject; callers hold q.mu
func (q *MemoryQueue) channel(subject string) chan []byte {
	ch, ok := q.channels[subject]
	if !ok {
		ch = make(chan []byte, memoryBuffer)
		q.channels[subject] = ch
	}
	return ch
}

// Publish copies data into the subject's buffer. A full buffer is an error.
func (q *MemoryQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return fmt.Errorf("queue closed")
	}

	msg := append([]byte(nil), data...)
	select {
	case q.channel(subject) <- msg:
		return nil
	default:
		return fmt.Errorf("channel full for subject: %s", subject)
	}
}

// PublishBatch publishes messages one by one and counts the accepted ones
func (q *MemoryQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	accepted := 0
	for _, msg := range messages {
		if err := q.Publish(ctx, msg.Subject, msg.Data); err != nil {
			q.logger.Warn("Skipping batch message", "subject", msg.Subject, "error", err)
			continue
		}
		accepted++
	}
	return accepted, nil
}

// Subscribe starts a goroutine delivering the subject's messages to handler.
// There is no redelivery: a failed message is logged and dropped.
func (q *MemoryQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return fmt.Errorf("queue closed")
	}
	if _, ok := q.cancels[subject]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadySubscribed, subject)
	}

	ch := q.channel(subject)
	ctx, cancel := context.WithCancel(context.Background())
	q.cancels[subject] = cancel

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case data := <-ch:
				if err := handler(data); err != nil {
					q.logger.Warn("Message handler failed, dropping message", "subject", subject, "error", err)
				}
			}
		}
	}()
	return nil
}

// Unsubscribe stops delivery for subject. Buffered messages are kept,
// except on reply subjects whose buffer is dropped.
func (q *MemoryQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	cancel, ok := q.cancels[subject]
	delete(q.cancels, subject)
	if ok && IsReplySubject(subject) {
		delete(q.channels, subject)
	}
	q.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSubscribed, subject)
	}
	cancel()
	return nil
}

// Close stops every subscriber and discards buffered messages
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	q.closed = true
	for subject, cancel := range q.cancels {
		cancel()
		delete(q.cancels, subject)
	}
	q.mu.Unlock()

	q.wg.Wait()

	q.mu.Lock()
	q.channels = make(map[string]chan []byte)
	q.mu.Unlock()
	return nil
}

// Pending returns the number of buffered messages for subject
func (q *MemoryQueue) Pending(subject string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if ch, ok := q.channels[subject]; ok {
		return len(ch)
	}
	return 0
}
