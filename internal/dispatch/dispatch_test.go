package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"demoforge/internal/logging"
)

func TestPoolRunsSubmittedTasks(t *testing.T) {
	pool := NewPool(2, logging.NewNop())
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		ok := pool.Submit("increment", func(ctx context.Context) {
			defer wg.Done()
			count.Add(1)
		})
		if !ok {
			wg.Done()
			t.Fatal("Submit returned false")
		}
	}
	wg.Wait()
	pool.Stop()

	if count.Load() != 10 {
		t.Fatalf("count = %d", count.Load())
	}
}

func TestPoolRejectsWhenStopped(t *testing.T) {
	pool := NewPool(1, logging.NewNop())
	if pool.Submit("early", func(context.Context) {}) {
		t.Fatal("expected rejection before Start")
	}
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	pool.Stop()
	if pool.Submit("late", func(context.Context) {}) {
		t.Fatal("expected rejection after Stop")
	}
}

func TestPoolDoubleStartFails(t *testing.T) {
	pool := NewPool(1, logging.NewNop())
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer pool.Stop()
	if err := pool.Start(context.Background()); err == nil {
		t.Fatal("expected error on second Start")
	}
}

func TestPoolSurvivesPanickingTask(t *testing.T) {
	pool := NewPool(1, logging.NewNop())
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer pool.Stop()

	pool.Submit("boom", func(context.Context) { panic("boom") })

	done := make(chan struct{})
	pool.Submit("after", func(context.Context) { close(done) })
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not recover from panic")
	}
}

func TestSyncRunsInline(t *testing.T) {
	ran := false
	Sync{}.Submit("inline", func(context.Context) { ran = true })
	if !ran {
		t.Fatal("task did not run inline")
	}
}
