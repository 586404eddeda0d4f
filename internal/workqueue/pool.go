package workqueue

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"zipduck-backend/internal/shared/telemetry"
)

const (
	DefaultWorkers   = 8
	DefaultQueueSize = 64
)

// ErrSaturated reports that the queue is full and the task was rejected.
var ErrSaturated = errors.New("work queue saturated")

// ErrClosed reports that the pool no longer accepts tasks.
var ErrClosed = errors.New("work queue closed")

// Task is a detached unit of work. It receives a background-derived context;
// a started task is never cancelled mid-flight.
type Task func(ctx context.Context)

// Pool runs tasks on a fixed set of workers over a bounded queue. Submit
// never blocks; callers decide what a rejected task means.
type Pool struct {
	queue chan Task
	group *errgroup.Group

	mu     sync.Mutex
	closed bool
}

// New starts a pool with the given worker count and queue capacity.
func New(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	p := &Pool{
		queue: make(chan Task, queueSize),
		group: &errgroup.Group{},
	}
	for i := 0; i < workers; i++ {
		p.group.Go(func() error {
			for task := range p.queue {
				p.run(task)
			}
			return nil
		})
	}
	return p
}

// Submit enqueues a task without blocking.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- task:
		return nil
	default:
		return ErrSaturated
	}
}

// Shutdown stops accepting tasks and waits for queued and in-flight work to
// drain, or for the context to expire.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = p.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("workqueue.task_panic", map[string]any{"panic": r})
		}
	}()
	task(context.Background())
}
