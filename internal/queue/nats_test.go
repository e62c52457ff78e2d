package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabzclean/analytics/internal/config"
	"github.com/fabzclean/analytics/internal/logging"
)

// startTestNATS runs an embedded JetStream server for the test
func startTestNATS(t *testing.T) string {
	t.Helper()
	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	})
	require.NoError(t, err)

	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}
	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	return ns.ClientURL()
}

func newTestNATSQueue(t *testing.T) *NATSQueue {
	t.Helper()
	q, err := newNATSQueue(NATSConfig{URL: startTestNATS(t)}, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func TestNATSQueue_PublishSubscribe(t *testing.T) {
	q := newTestNATSQueue(t)
	c := newCollector(2)
	require.NoError(t, q.Subscribe("analytics.reports.request", c.handle))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, q.Publish(ctx, "analytics.reports.request", []byte("one")))
	require.NoError(t, q.Publish(ctx, "analytics.reports.request", []byte("two")))

	assert.Equal(t, []string{"one", "two"}, c.wait(t))
}

func TestNATSQueue_ReplaysMessagesPublishedBeforeSubscribe(t *testing.T) {
	q := newTestNATSQueue(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, q.Publish(ctx, "jobs", []byte("queued")))

	c := newCollector(1)
	require.NoError(t, q.Subscribe("jobs", c.handle))
	assert.Equal(t, []string{"queued"}, c.wait(t))
}

func TestNATSQueue_PublishBatch(t *testing.T) {
	q := newTestNATSQueue(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := q.PublishBatch(ctx, []BatchMessage{
		{Subject: "batch", Data: []byte("1")},
		{Subject: "batch", Data: []byte("2")},
		{Subject: "batch", Data: []byte("3")},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	c := newCollector(3)
	require.NoError(t, q.Subscribe("batch", c.handle))
	assert.ElementsMatch(t, []string{"1", "2", "3"}, c.wait(t))
}

func TestNATSQueue_RedeliversOnHandlerError(t *testing.T) {
	q := newTestNATSQueue(t)
	var attempts atomic.Int32
	done := make(chan struct{})

	require.NoError(t, q.Subscribe("retry", func([]byte) error {
		if attempts.Add(1) == 1 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}))
	require.NoError(t, q.Publish(context.Background(), "retry", []byte("x")))

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("message was not redelivered")
	}
	assert.Equal(t, int32(2), attempts.Load())
}

func TestNATSQueue_SubscriptionErrors(t *testing.T) {
	q := newTestNATSQueue(t)
	noop := func([]byte) error { return nil }

	require.NoError(t, q.Subscribe("s", noop))
	assert.ErrorIs(t, q.Subscribe("s", noop), ErrAlreadySubscribed)
	require.NoError(t, q.Unsubscribe("s"))
	assert.ErrorIs(t, q.Unsubscribe("s"), ErrNotSubscribed)
}

func TestNATSQueue_ReplySubjectLeavesNoStream(t *testing.T) {
	q := newTestNATSQueue(t)
	reply := NewReplySubject()
	c := newCollector(2)
	require.NoError(t, q.Subscribe(reply, c.handle))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, q.Publish(ctx, reply, []byte("done")))
	n, err := q.PublishBatch(ctx, []BatchMessage{{Subject: reply, Data: []byte("again")}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"done", "again"}, c.wait(t))

	require.NoError(t, q.Unsubscribe(reply))
	_, err = q.js.StreamInfo("analytics-" + subjectToken(reply))
	assert.ErrorIs(t, err, nats.ErrStreamNotFound)
	for name := range q.js.StreamNames() {
		assert.NotContains(t, name, subjectToken(ReplyPrefix))
	}
}

func TestNewQueue_NATS(t *testing.T) {
	q, err := NewQueue(config.QueueConfig{URL: startTestNATS(t)}, logging.NewNop())
	require.NoError(t, err)
	defer func() { _ = q.Close() }()
	assert.IsType(t, &NATSQueue{}, q)
}

func TestSubjectToken(t *testing.T) {
	tests := map[string]string{
		"analytics.reports.request": "analytics_reports_request",
		"jobs":                      "jobs",
		"a-b_c*>":                   "a-b_c__",
	}
	for in, want := range tests {
		assert.Equal(t, want, subjectToken(in), in)
	}
}
