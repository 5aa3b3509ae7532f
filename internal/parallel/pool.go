// Package parallel provides a bounded worker pool for running independent
// scheduling invocations concurrently. Each solve owns its entire mutable
// state, so request-level parallelism needs no coordination beyond capping
// the number of in-flight searches.
package parallel

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// ErrPoolShutdown is returned when submitting work to a pool that has been
// shut down.
var ErrPoolShutdown = fmt.Errorf("worker pool has been shut down")

// WorkerPool executes submitted tasks on a fixed number of goroutines.
// Submission applies backpressure: when every worker is busy and the queue
// is full, Submit blocks until capacity frees up, the context expires, or
// the pool shuts down.
type WorkerPool struct {
	maxWorkers   int
	taskChan     chan func()
	workerWg     sync.WaitGroup
	shutdownChan chan struct{}
	once         sync.Once
}

// NewWorkerPool creates a pool with the given number of workers.
// Zero or negative means one worker per CPU core.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	pool := &WorkerPool{
		maxWorkers:   maxWorkers,
		taskChan:     make(chan func(), maxWorkers*2),
		shutdownChan: make(chan struct{}),
	}

	for i := 0; i < maxWorkers; i++ {
		pool.workerWg.Add(1)
		go pool.worker()
	}

	return pool
}

// Size returns the number of worker goroutines.
func (wp *WorkerPool) Size() int { return wp.maxWorkers }

// worker drains the task channel until shutdown.
func (wp *WorkerPool) worker() {
	defer wp.workerWg.Done()

	for {
		select {
		case task := <-wp.taskChan:
			if task != nil {
				task()
			}
		case <-wp.shutdownChan:
			return
		}
	}
}

// Submit queues a task for execution. Blocks while the pool is saturated;
// returns the context error if ctx expires first, or ErrPoolShutdown if the
// pool has been shut down.
func (wp *WorkerPool) Submit(ctx context.Context, task func()) error {
	select {
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	default:
	}
	select {
	case wp.taskChan <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	}
}

// Shutdown stops accepting work and waits for running tasks to finish.
// Safe to call more than once.
func (wp *WorkerPool) Shutdown() {
	wp.once.Do(func() {
		close(wp.shutdownChan)
		wp.workerWg.Wait()
	})
}
