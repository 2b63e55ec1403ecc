package core

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrOutboxClosed is returned once a closed outbox has been drained.
	ErrOutboxClosed = errors.New("outbox closed")
	// ErrOutboxFull is returned when the queue limit is exceeded; the backlog is discarded.
	ErrOutboxFull = errors.New("outbox full")
)

// Outbox is the FIFO queue of encoded messages waiting to be written to one client.
// The hub pushes, a single delivery loop pops.
type Outbox struct {
	mu     sync.Mutex
	items  [][]byte
	limit  int
	closed bool
	err    error
	notify chan struct{}
}

// NewOutbox creates a queue holding at most limit messages. limit <= 0 means unbounded.
func NewOutbox(limit int) *Outbox {
	return &Outbox{
		limit:  limit,
		notify: make(chan struct{}, 1),
	}
}

// Push appends msg without blocking. ErrOutboxFull is returned only by the push
// that overflowed the queue; later pushes see ErrOutboxClosed.
func (o *Outbox) Push(msg []byte) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrOutboxClosed
	}
	if o.limit > 0 && len(o.items) >= o.limit {
		o.items = nil
		o.closed = true
		o.err = ErrOutboxFull
		o.mu.Unlock()
		o.wake()
		return ErrOutboxFull
	}
	o.items = append(o.items, msg)
	o.mu.Unlock()
	o.wake()
	return nil
}

// Pop returns the oldest message, waiting while the queue is empty.
// After Close it keeps returning queued messages, then ErrOutboxClosed.
func (o *Outbox) Pop(ctx context.Context) ([]byte, error) {
	for {
		o.mu.Lock()
		if o.err != nil {
			err := o.err
			o.mu.Unlock()
			return nil, err
		}
		if len(o.items) > 0 {
			msg := o.items[0]
			o.items[0] = nil
			o.items = o.items[1:]
			o.mu.Unlock()
			return msg, nil
		}
		if o.closed {
			o.mu.Unlock()
			return nil, ErrOutboxClosed
		}
		o.mu.Unlock()

		select {
		case <-o.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close stops accepting messages. Already queued messages are still delivered.
func (o *Outbox) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.wake()
}

// Len reports the number of queued messages.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.items)
}

func (o *Outbox) wake() {
	select {
	case o.notify <- struct{}{}:
	default:
	}
}
