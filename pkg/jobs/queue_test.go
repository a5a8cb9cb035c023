package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu       sync.Mutex
	payloads []string
	failures int
}

func (r *recorder) handle(ctx context.Context, job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return assert.AnError
	}
	r.payloads = append(r.payloads, job.Payload.(string))
	return nil
}

func (r *recorder) processed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.payloads...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestQueueProcessesJobs(t *testing.T) {
	rec := &recorder{}
	q := NewQueue("test", rec.handle, QueueConfig{Workers: 2})
	q.Start()
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "1", Type: "selfie.purge", Payload: "key-1"}))
	require.NoError(t, q.Enqueue(Job{ID: "2", Type: "selfie.purge", Payload: "key-2"}))

	waitFor(t, func() bool { return len(rec.processed()) == 2 })
	assert.ElementsMatch(t, []string{"key-1", "key-2"}, rec.processed())
}

func TestQueueRetriesFailedJob(t *testing.T) {
	rec := &recorder{failures: 1}
	q := NewQueue("test", rec.handle, QueueConfig{Workers: 1, RetryDelay: 10 * time.Millisecond})
	q.Start()
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "1", Payload: "key-1"}))

	waitFor(t, func() bool { return len(rec.processed()) == 1 })
	assert.Equal(t, []string{"key-1"}, rec.processed())
}

func TestQueueDropsAfterMaxRetries(t *testing.T) {
	rec := &recorder{failures: 100}
	q := NewQueue("test", rec.handle, QueueConfig{Workers: 1, MaxRetries: 2, RetryDelay: 5 * time.Millisecond})
	q.Start()
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "1", Payload: "key-1"}))

	// The job fails twice and is dropped without ever succeeding.
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, rec.processed())
}

func TestQueueFullBufferErrors(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{Workers: 1, BufferSize: 1})
	// Not started, so nothing drains the buffer.
	require.NoError(t, q.Enqueue(Job{ID: "1"}))
	assert.Error(t, q.Enqueue(Job{ID: "2"}))
}

func TestQueueStartTwice(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{Workers: 1})
	q.Start()
	q.Start()
	q.Stop()
}

func TestQueueStopDrainsBufferedJobs(t *testing.T) {
	rec := &recorder{}
	q := NewQueue("test", rec.handle, QueueConfig{Workers: 1, BufferSize: 8})

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(Job{ID: string(rune('a' + i)), Payload: "key"}))
	}

	q.Start()
	q.Stop()

	// Stop only returns once the workers have worked off the buffer, so
	// every accepted job ran even though shutdown began immediately.
	assert.Len(t, rec.processed(), 5)
}

func TestQueueRetryDroppedAfterStop(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	handler := func(ctx context.Context, job Job) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return assert.AnError
	}
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return attempts
	}

	q := NewQueue("test", handler, QueueConfig{Workers: 1, MaxRetries: 10, RetryDelay: 20 * time.Millisecond})
	q.Start()
	require.NoError(t, q.Enqueue(Job{ID: "1", Payload: "key-1"}))
	waitFor(t, func() bool { return count() >= 1 })

	q.Stop()
	after := count()
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, after, count(), "retry must not re-enqueue into a stopped queue")
}
