package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/sweetsbybella/internal/domain/errors"
	"github.com/polkiloo/sweetsbybella/internal/domain/model"
	"github.com/polkiloo/sweetsbybella/internal/usecase"
)

const defaultSendTimeout = 30 * time.Second

// MailQueue delivers post-commit notifications from a bounded buffer.
// Messages enqueued before Start are delivered once workers run.
type MailQueue struct {
	notifier    usecase.Notifier
	workers     int
	sendTimeout time.Duration
	logger      *slog.Logger

	jobs    chan model.Notification
	wg      sync.WaitGroup
	mu      sync.RWMutex
	started bool
	stopped bool
}

// NewMailQueue constructs the queue. Non-positive sizes default to one.
func NewMailQueue(notifier usecase.Notifier, workers, size int, logger *slog.Logger) *MailQueue {
	if workers <= 0 {
		workers = 1
	}
	if size <= 0 {
		size = 1
	}
	return &MailQueue{
		notifier:    notifier,
		workers:     workers,
		sendTimeout: defaultSendTimeout,
		logger:      logger,
		jobs:        make(chan model.Notification, size),
	}
}

// Enqueue never blocks. It reports false when the buffer is full or the queue is stopped.
func (q *MailQueue) Enqueue(msg model.Notification) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped {
		return false
	}
	select {
	case q.jobs <- msg:
		return true
	default:
		return false
	}
}

// Start launches the workers. Calling it twice does nothing.
func (q *MailQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.stopped {
		return
	}
	q.started = true

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
}

// Stop refuses new messages and waits until queued ones are sent or ctx ends.
func (q *MailQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return nil
	}
	q.stopped = true
	close(q.jobs)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		q.logger.Warn("mail queue stopped before drain", slog.Int("pending", len(q.jobs)))
		return ctx.Err()
	}
}

func (q *MailQueue) worker() {
	defer q.wg.Done()
	for msg := range q.jobs {
		q.deliver(msg)
	}
}

func (q *MailQueue) deliver(msg model.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), q.sendTimeout)
	defer cancel()

	err := q.notifier.Send(ctx, msg.To, msg.Subject, msg.HTML)
	switch {
	case err == nil:
		q.logger.Info("notification sent",
			slog.String("kind", string(msg.Kind)),
			slog.String("order_reference", msg.Reference),
		)
	case errors.Is(err, domainErrors.ErrNotifierDisabled):
		q.logger.Debug("notification skipped, mail disabled",
			slog.String("kind", string(msg.Kind)),
			slog.String("order_reference", msg.Reference),
		)
	default:
		q.logger.Error("notification failed",
			slog.String("kind", string(msg.Kind)),
			slog.String("order_reference", msg.Reference),
			slog.String("error", err.Error()),
		)
	}
}
