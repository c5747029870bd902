package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"demoforge/internal/logging"
)

const defaultQueueDepth = 64

// Task is one unit of background pipeline work. Tasks must be idempotent;
// the pool guarantees at-most-once execution per submission but the same
// logical job may be submitted more than once.
type Task func(ctx context.Context)

// Queue is the submission surface handed to producers.
type Queue interface {
	// Submit enqueues a task. It reports false when the pool is not running
	// or the queue is full; callers treat that as "will be retried by a
	// later event or sweep", never as fatal.
	Submit(name string, task Task) bool
}

// Pool fans submitted tasks out to a fixed set of workers.
type Pool struct {
	logger  *slog.Logger
	workers int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	tasks   chan namedTask
	wg      sync.WaitGroup
}

type namedTask struct {
	name string
	task Task
}

// NewPool constructs a worker pool. Worker counts below one are clamped.
func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		logger:  logger.With(logging.String(logging.FieldComponent, "dispatch")),
		workers: workers,
	}
}

// Start begins background processing.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return errors.New("dispatch already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.tasks = make(chan namedTask, defaultQueueDepth)
	p.running = true

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.runWorker(runCtx)
	}
	return nil
}

// Stop terminates background processing and waits for in-flight tasks.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.running = false
	p.cancel = nil
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	cancel()
}

// Submit enqueues a task for a worker.
func (p *Pool) Submit(name string, task Task) bool {
	if task == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return false
	}
	select {
	case p.tasks <- namedTask{name: name, task: task}:
		return true
	default:
		p.logger.Warn("task queue full, dropping submission", logging.String("task", name))
		return false
	}
}

func (p *Pool) runWorker(ctx context.Context) {
	defer p.wg.Done()
	for item := range p.tasks {
		if ctx.Err() != nil {
			return
		}
		p.runTask(ctx, item)
	}
}

func (p *Pool) runTask(ctx context.Context, item namedTask) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("task panicked",
				logging.String("task", item.name),
				logging.Any("panic", r))
		}
	}()
	item.task(ctx)
}

// Sync is a Queue that runs every task inline on the caller's goroutine.
// Tests use it to make pipeline progress deterministic.
type Sync struct{}

// Submit runs the task immediately.
func (Sync) Submit(name string, task Task) bool {
	if task == nil {
		return false
	}
	task(context.Background())
	return true
}
