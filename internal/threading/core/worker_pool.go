package core

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool manages a pool of worker goroutines for parallel processing
type WorkerPool struct {
	numWorkers int
	jobQueue   chan func()
	wg         sync.WaitGroup
	quit       chan struct{}
	stopOnce   sync.Once
	completed  SafeCounter
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// numWorkers <= 0 uses the CPU count.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	return &WorkerPool{
		numWorkers: numWorkers,
		jobQueue:   make(chan func(), numWorkers*2),
		quit:       make(chan struct{}),
	}
}

// StartWorkerPool creates a pool and starts its workers
func StartWorkerPool(numWorkers int) *WorkerPool {
	pool := NewWorkerPool(numWorkers)
	pool.Start()
	return pool
}

// Start initializes and starts all worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.numWorkers; i++ {
		go wp.worker()
	}
}

// worker is the goroutine that processes jobs from the queue
func (wp *WorkerPool) worker() {
	for {
		select {
		case job := <-wp.jobQueue:
			job()
			wp.completed.Increment()
			wp.wg.Done()
		case <-wp.quit:
			return
		}
	}
}

// Submit adds a job to the worker queue
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.jobQueue <- job
}

// Wait waits for all currently queued jobs to complete
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Stop shuts down the worker pool. It is safe to call more than once.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() { close(wp.quit) })
}

// ParallelFor executes fn for every value in [start, end).
func (wp *WorkerPool) ParallelFor(start, end int, fn func(int)) {
	wp.ParallelForWithContext(context.Background(), start, end, fn)
}

// ParallelForWithContext executes fn for every value in [start, end), split
// into one chunk per worker. Workers check ctx between iterations and abandon
// their chunk once it is done; the caller inspects ctx.Err() afterwards.
func (wp *WorkerPool) ParallelForWithContext(ctx context.Context, start, end int, fn func(int)) {
	if start >= end {
		return
	}

	totalWork := end - start
	chunkSize := max(1, totalWork/wp.numWorkers)

	for i := start; i < end; i += chunkSize {
		chunkStart := i
		chunkEnd := min(i+chunkSize, end)
		wp.Submit(func() {
			for j := chunkStart; j < chunkEnd; j++ {
				select {
				case <-ctx.Done():
					return
				default:
					fn(j)
				}
			}
		})
	}
	wp.Wait()
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// CompletedJobs returns how many jobs the pool has finished
func (wp *WorkerPool) CompletedJobs() int64 {
	return wp.completed.Get()
}

// SafeCounter provides thread-safe counter operations using lock-free atomics.
// The zero value is ready to use.
type SafeCounter struct {
	value atomic.Int64
}

// NewSafeCounter creates a new thread-safe counter initialized to zero
func NewSafeCounter() *SafeCounter {
	return &SafeCounter{}
}

// Increment atomically increments the counter and returns the new value
func (c *SafeCounter) Increment() int64 {
	return c.value.Add(1)
}

// Add atomically adds delta to the counter and returns the new value
func (c *SafeCounter) Add(delta int64) int64 {
	return c.value.Add(delta)
}

// Get atomically gets the counter value
func (c *SafeCounter) Get() int64 {
	return c.value.Load()
}

// Set atomically sets the counter value
func (c *SafeCounter) Set(value int64) {
	c.value.Store(value)
}
