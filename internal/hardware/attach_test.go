package hardware

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAttach_SucceedsFirstTry(t *testing.T) {
	ch := NewFakeChannel("door", AngleRange)
	calls := 0

	got, err := Attach(context.Background(), "door", FlakyOpener(ch, 0, &calls), AttachOptions{Attempts: 3})
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if got != ch {
		t.Error("Attach() returned a different channel")
	}
	if calls != 1 {
		t.Errorf("open calls = %d, want 1", calls)
	}
}

func TestAttach_RetriesThenSucceeds(t *testing.T) {
	ch := NewFakeChannel("window", AngleRange)
	calls := 0

	_, err := Attach(context.Background(), "window", FlakyOpener(ch, 2, &calls), AttachOptions{
		Attempts: 3,
		Backoff:  time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("open calls = %d, want 3", calls)
	}
}

func TestAttach_ExhaustsRetries(t *testing.T) {
	ch := NewFakeChannel("window", AngleRange)
	calls := 0

	start := time.Now()
	_, err := Attach(context.Background(), "window", FlakyOpener(ch, 10, &calls), AttachOptions{
		Attempts: 3,
		Backoff:  10 * time.Millisecond,
	})
	if !errors.Is(err, ErrInitFailed) {
		t.Fatalf("Attach() error = %v, want ErrInitFailed", err)
	}
	if calls != 3 {
		t.Errorf("open calls = %d, want 3", calls)
	}
	// Two backoffs separate three attempts.
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 20ms of backoff", elapsed)
	}
}

func TestAttach_DefaultAttempts(t *testing.T) {
	calls := 0
	_, err := Attach(context.Background(), "fan", FlakyOpener(nil, 10, &calls), AttachOptions{Backoff: time.Millisecond})
	if !errors.Is(err, ErrInitFailed) {
		t.Fatalf("Attach() error = %v, want ErrInitFailed", err)
	}
	if calls != DefaultAttachAttempts {
		t.Errorf("open calls = %d, want %d", calls, DefaultAttachAttempts)
	}
}

func TestAttach_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0

	_, err := Attach(ctx, "door", FlakyOpener(nil, 10, &calls), AttachOptions{Attempts: 3, Backoff: time.Hour})
	if !errors.Is(err, ErrInitFailed) || !errors.Is(err, context.Canceled) {
		t.Fatalf("Attach() error = %v, want ErrInitFailed wrapping context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("open calls = %d, want 1", calls)
	}
}
