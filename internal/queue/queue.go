// Package queue provides the durable-ish in-process message queue that
// drives archive import jobs. Each message carries the full resumption
// state of its job, so a handler can continue from the last committed
// cursor after a crash or redelivery.
package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/llun/fitfeed/internal/domain"
	"github.com/llun/fitfeed/internal/logger"
)

// Message is one unit of archive import work. Messages are self-chaining:
// a handler that still has activities or media left publishes a successor
// message with an advanced cursor instead of looping in place.
type Message struct {
	MessageID string `json:"message_id"`

	JobID         string `json:"job_id"`
	ActorID       string `json:"actor_id"`
	ArchiveID     string `json:"archive_id"`
	ArchiveFileID string `json:"archive_file_id"`
	BatchID       string `json:"batch_id"`

	Visibility domain.Visibility `json:"visibility"`

	NextActivityIndex      int      `json:"next_activity_index"`
	PendingMediaActivities []string `json:"pending_media_activities,omitempty"`
	MediaAttachmentRetry   int      `json:"media_attachment_retry"`

	TotalActivitiesCount     *int `json:"total_activities_count,omitempty"`
	CompletedActivitiesCount int  `json:"completed_activities_count"`
	FailedActivitiesCount    int  `json:"failed_activities_count"`

	FirstFailureMessage *string `json:"first_failure_message,omitempty"`
}

// Publisher is the producer side of the queue.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Handler consumes one message. A returned error counts the message as
// failed; the handler is responsible for any republish.
type Handler func(ctx context.Context, msg Message) error

// Stats exposes current queue metrics.
type Stats struct {
	Length      int
	Capacity    int
	WorkerCount int
	Processed   uint64
	Failed      uint64
}

// ErrQueueFull is returned by Publish when the queue buffer is at
// capacity.
var ErrQueueFull = errors.New("import queue is full")

// ErrQueueStopped is returned by Publish before Start or after Stop.
var ErrQueueStopped = errors.New("import queue is not running")

// ImportQueue is a bounded message queue with a fixed worker pool.
type ImportQueue struct {
	messages    chan Message
	workerCount int
	timeout     time.Duration
	handler     Handler
	started     bool
	mu          sync.RWMutex
	wg          sync.WaitGroup
	processed   uint64
	failed      uint64
}

// New creates a new ImportQueue with the provided capacity, worker count,
// and per-message timeout.
func New(capacity, workerCount int, timeout time.Duration) *ImportQueue {
	if capacity <= 0 {
		capacity = 64
	}
	if workerCount <= 0 {
		workerCount = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &ImportQueue{
		messages:    make(chan Message, capacity),
		workerCount: workerCount,
		timeout:     timeout,
	}
}

// Start launches the worker pool with the given handler.
func (q *ImportQueue) Start(ctx context.Context, handler Handler) {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.handler = handler
	q.mu.Unlock()
	for i := 0; i < q.workerCount; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
}

// Publish enqueues a message without blocking. The read lock is held
// across the send so Stop cannot close the channel mid-publish.
func (q *ImportQueue) Publish(ctx context.Context, msg Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.started {
		return ErrQueueStopped
	}
	select {
	case q.messages <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop stops accepting new messages and waits for workers to drain until
// context is done.
func (q *ImportQueue) Stop(ctx context.Context) {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.started = false
	close(q.messages)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Stats returns current queue metrics.
func (q *ImportQueue) Stats() Stats {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return Stats{
		Length:      len(q.messages),
		Capacity:    cap(q.messages),
		WorkerCount: q.workerCount,
		Processed:   atomic.LoadUint64(&q.processed),
		Failed:      atomic.LoadUint64(&q.failed),
	}
}

// Healthy reports whether the queue has been started and not stopped.
func (q *ImportQueue) Healthy() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.started
}

func (q *ImportQueue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-q.messages:
			if !ok {
				return
			}
			q.handleMessage(ctx, msg)
		}
	}
}

func (q *ImportQueue) handleMessage(ctx context.Context, msg Message) {
	log := logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldComponent: "queue",
		logger.FieldJobID:     msg.JobID,
		"message_id":          msg.MessageID,
	})
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Message handler panicked")
			atomic.AddUint64(&q.failed, 1)
		}
	}()

	msgCtx, cancel := context.WithTimeout(ctx, q.timeout)
	err := q.handler(msgCtx, msg)
	cancel()

	atomic.AddUint64(&q.processed, 1)
	if err != nil {
		atomic.AddUint64(&q.failed, 1)
		log.WithError(err).
			WithField(logger.FieldDurationMs, time.Since(start).Milliseconds()).
			Error("Message handling failed")
		return
	}
	log.WithField(logger.FieldDurationMs, time.Since(start).Milliseconds()).
		Debug("Message handled")
}
