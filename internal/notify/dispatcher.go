package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueFull is returned when the dispatcher cannot accept another message.
var ErrQueueFull = errors.New("notification queue full")

// ErrClosed is returned by Notify after Close.
var ErrClosed = errors.New("notification dispatcher closed")

// Dispatcher queues messages and hands them to the wrapped notifier from a
// single worker goroutine, so callers never wait on the transport.
type Dispatcher struct {
	next    Notifier
	timeout time.Duration
	jobs    chan Message

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewDispatcher creates a dispatcher with room for queueSize pending messages.
// Each send gets its own timeout.
func NewDispatcher(next Notifier, queueSize int, timeout time.Duration) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		next:    next,
		timeout: timeout,
		jobs:    make(chan Message, queueSize),
		done:    make(chan struct{}),
	}
}

// Notify enqueues the message without blocking.
func (d *Dispatcher) Notify(_ context.Context, msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}
	select {
	case d.jobs <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run delivers queued messages until Close has been called and the queue is
// drained, or ctx is cancelled. Delivery failures are logged, never returned.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.done)

	for {
		select {
		case <-ctx.Done():
			if n := len(d.jobs); n > 0 {
				slog.Warn("dropping queued notifications", "count", n)
			}
			return nil
		case msg, ok := <-d.jobs:
			if !ok {
				return nil
			}
			d.deliver(ctx, msg)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := d.next.Notify(ctx, msg); err != nil {
		slog.Error("failed to send notification", "subject", msg.Subject, "error", err)
		return
	}
	slog.Info("notification sent", "subject", msg.Subject, "duration", time.Since(start).Round(time.Millisecond))
}

// Close stops accepting messages. Run returns once the queue is drained.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	close(d.jobs)
}

// Wait blocks until Run has returned.
func (d *Dispatcher) Wait() {
	<-d.done
}
