package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/hearth/internal/infrastructure/logging"
)

type fakePruner struct {
	mu    sync.Mutex
	calls []time.Duration
	err   error
}

func (f *fakePruner) PruneHistory(_ context.Context, olderThan time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, olderThan)
	return 1, f.err
}

func (f *fakePruner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestPruneHistory(t *testing.T) {
	repo := &fakePruner{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pruneHistory(ctx, repo, 7, 10*time.Millisecond, logging.Discard())
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for repo.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if repo.count() < 2 {
		t.Fatalf("PruneHistory called %d times, want at least 2", repo.count())
	}
	if got := repo.calls[0]; got != 7*24*time.Hour {
		t.Errorf("retention = %v, want 168h", got)
	}
}

func TestPruneHistory_Disabled(t *testing.T) {
	repo := &fakePruner{}
	pruneHistory(context.Background(), repo, 0, time.Millisecond, logging.Discard())
	if repo.count() != 0 {
		t.Errorf("PruneHistory called %d times with retention disabled", repo.count())
	}
}

func TestPruneHistory_ErrorKeepsRunning(t *testing.T) {
	repo := &fakePruner{err: errors.New("disk I/O error")}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pruneHistory(ctx, repo, 1, 5*time.Millisecond, logging.Discard())
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for repo.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done
	if repo.count() < 3 {
		t.Errorf("PruneHistory called %d times after errors, want at least 3", repo.count())
	}
}
