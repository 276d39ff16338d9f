package subprocess

import (
	"context"
	"sync"

	"github.com/wagiedev/uci-service-go/internal/config"
	"github.com/wagiedev/uci-service-go/internal/errors"
)

// Compile-time verification that LineQueue implements config.LineSource.
var _ config.LineSource = (*LineQueue)(nil)

// LineQueue is an unbounded FIFO of output lines with one producer and one
// consumer. Push never blocks, so the reader goroutine keeps pace with the
// engine no matter how slowly requests consume.
type LineQueue struct {
	mu     sync.Mutex
	lines  []string
	closed bool

	// notify carries at most one pending wake-up for the consumer.
	notify chan struct{}
	done   chan struct{}
}

// NewLineQueue creates an empty, open queue.
func NewLineQueue() *LineQueue {
	return &LineQueue{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push appends a line. It returns false if the queue is closed.
func (q *LineQueue) Push(line string) bool {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()

		return false
	}

	q.lines = append(q.lines, line)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}

	return true
}

// Pop removes and returns the oldest line, blocking until one is available.
// Queued lines are still delivered after Close; once the queue is closed and
// empty Pop returns errors.ErrOutputClosed.
func (q *LineQueue) Pop(ctx context.Context) (string, error) {
	for {
		q.mu.Lock()

		if len(q.lines) > 0 {
			line := q.lines[0]
			q.lines[0] = ""
			q.lines = q.lines[1:]
			q.mu.Unlock()

			return line, nil
		}

		closed := q.closed
		q.mu.Unlock()

		if closed {
			return "", errors.ErrOutputClosed
		}

		select {
		case <-q.notify:
		case <-q.done:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Drain discards all queued lines without blocking.
func (q *LineQueue) Drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.lines)
	q.lines = nil

	return n
}

// Len returns the number of queued lines.
func (q *LineQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.lines)
}

// Close marks the end of the stream. It's safe to call Close multiple times.
func (q *LineQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.done)
}

// Closed reports whether Close has been called.
func (q *LineQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.closed
}
