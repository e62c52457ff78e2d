// Package queue moves report jobs and results between processes. The broker
// backends deliver at least once: a handler error leaves the message
// unacknowledged so the broker redelivers it.
package queue

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ReplyPrefix marks reply subjects. A reply subject serves one waiting
// caller: delivery is at most once and the backends keep no durable state
// for it after Unsubscribe or Close.
const ReplyPrefix = "_INBOX."

var (
	// ErrAlreadySubscribed is returned when a subject already has a handler
	ErrAlreadySubscribed = errors.New("already subscribed")
	// ErrNotSubscribed is returned when unsubscribing an unknown subject
	ErrNotSubscribed = errors.New("not subscribed")
)

// Publisher publishes messages to a queue
type Publisher interface {
	// Publish publishes a message to a subject/topic
	Publish(ctx context.Context, subject string, data []byte) error

	// PublishBatch publishes messages and reports how many were accepted
	PublishBatch(ctx context.Context, messages []BatchMessage) (int, error)

	// Close closes the connection
	Close() error
}

// BatchMessage is one entry of a PublishBatch call
type BatchMessage struct {
	Subject string
	Data    []byte
}

// Subscriber subscribes to messages from a queue
type Subscriber interface {
	// Subscribe registers handler for subject. A subject has at most one handler.
	Subscribe(subject string, handler MessageHandler) error

	// Unsubscribe stops delivery for subject
	Unsubscribe(subject string) error

	// Close closes the connection
	Close() error
}

// MessageHandler handles one message. Returning an error requests redelivery.
type MessageHandler func(data []byte) error

// Queue combines Publisher and Subscriber interfaces
type Queue interface {
	Publisher
	Subscriber
}

// NewReplySubject returns a unique reply subject
func NewReplySubject() string {
	return ReplyPrefix + uuid.New().String()
}

// IsReplySubject reports whether subject was made by NewReplySubject
func IsReplySubject(subject string) bool {
	return strings.HasPrefix(subject, ReplyPrefix)
}
