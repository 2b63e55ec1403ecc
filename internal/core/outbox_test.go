package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestOutboxDeliversInOrder(t *testing.T) {
	box := NewOutbox(0)
	const total = 500

	var (
		wg     sync.WaitGroup
		got    []string
		popErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			msg, err := box.Pop(context.Background())
			if err != nil {
				popErr = err
				return
			}
			got = append(got, string(msg))
		}
	}()

	for i := range total {
		if err := box.Push([]byte(fmt.Sprintf("m%d", i))); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	box.Close()
	wg.Wait()

	if !errors.Is(popErr, ErrOutboxClosed) {
		t.Fatalf("expected ErrOutboxClosed after drain, got %v", popErr)
	}
	if len(got) != total {
		t.Fatalf("expected %d messages, got %d", total, len(got))
	}
	for i, msg := range got {
		if want := fmt.Sprintf("m%d", i); msg != want {
			t.Fatalf("message %d: expected %q, got %q", i, want, msg)
		}
	}
}

func TestOutboxCloseDrainsThenStops(t *testing.T) {
	box := NewOutbox(0)
	if err := box.Push([]byte("last words")); err != nil {
		t.Fatalf("push: %v", err)
	}
	box.Close()

	if err := box.Push([]byte("too late")); !errors.Is(err, ErrOutboxClosed) {
		t.Fatalf("expected ErrOutboxClosed, got %v", err)
	}

	msg, err := box.Pop(context.Background())
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if string(msg) != "last words" {
		t.Fatalf("unexpected message %q", msg)
	}

	if _, err := box.Pop(context.Background()); !errors.Is(err, ErrOutboxClosed) {
		t.Fatalf("expected ErrOutboxClosed, got %v", err)
	}
}

func TestOutboxPopWaitsForPush(t *testing.T) {
	box := NewOutbox(0)

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = box.Push([]byte("late"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg, err := box.Pop(ctx)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if string(msg) != "late" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestOutboxPopHonoursContext(t *testing.T) {
	box := NewOutbox(0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := box.Pop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestOutboxOverflowDiscardsBacklog(t *testing.T) {
	box := NewOutbox(2)
	for _, msg := range []string{"1", "2"} {
		if err := box.Push([]byte(msg)); err != nil {
			t.Fatalf("push %s: %v", msg, err)
		}
	}
	if err := box.Push([]byte("3")); !errors.Is(err, ErrOutboxFull) {
		t.Fatalf("expected ErrOutboxFull on overflow, got %v", err)
	}
	// Only the overflowing push reports it; the queue is closed afterwards.
	if err := box.Push([]byte("4")); !errors.Is(err, ErrOutboxClosed) {
		t.Fatalf("expected ErrOutboxClosed after overflow, got %v", err)
	}
	if n := box.Len(); n != 0 {
		t.Fatalf("expected backlog to be discarded, got %d queued", n)
	}

	if _, err := box.Pop(context.Background()); !errors.Is(err, ErrOutboxFull) {
		t.Fatalf("expected ErrOutboxFull from pop, got %v", err)
	}
}
