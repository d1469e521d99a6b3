package jobs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/spaghettifunk/travaso/pipeline/core"
)

// Task is one unit of background work. Run does the work; the optional hooks
// fire on the worker goroutine after it finishes.
type Task struct {
	ID         uuid.UUID
	Run        func() error
	OnComplete func()
	OnFailure  func(error)
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeQueueSize = fmt.Errorf("attempting to create worker pool with a negative queue size")

// Pool is a fixed set of worker goroutines draining a shared task queue. It
// executes whatever the pacing agent routes off the host goroutine and backs
// the transcode package's parallel range dispatch.
type Pool struct {
	numWorkers int
	taskQueue  chan Task
	busy       atomic.Int32
	wg         sync.WaitGroup
}

func NewPool(numWorkers int, queueSize int) (*Pool, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if queueSize < 0 {
		return nil, ErrNegativeQueueSize
	}

	p := &Pool{
		numWorkers: numWorkers,
		taskQueue:  make(chan Task, queueSize),
	}

	p.start()

	return p, nil
}

func (p *Pool) start() {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for task := range p.taskQueue {
				p.busy.Add(1)
				err := task.Run()
				if err != nil {
					if task.OnFailure != nil {
						task.OnFailure(err)
					} else {
						core.LogError("task %s failed: %s", task.ID, err.Error())
					}
				} else if task.OnComplete != nil {
					task.OnComplete()
				}
				p.busy.Add(-1)
			}
		}()
	}
}

// Shutdown drains the queue and stops all workers. No tasks may be submitted
// afterwards.
func (p *Pool) Shutdown() error {
	close(p.taskQueue)
	p.wg.Wait()
	return nil
}

// Submit queues the task for execution, blocking while the queue is full.
func (p *Pool) Submit(t Task) {
	p.taskQueue <- t
}

// SubmitNonBlocking queues the task from a fresh goroutine and returns
// immediately.
func (p *Pool) SubmitNonBlocking(t Task) {
	go p.Submit(t)
}

// AvailableWorkers reports how many workers are not currently running a
// task. The pacing agents consult this to gate the RunOnWorker path.
func (p *Pool) AvailableWorkers() int {
	n := p.numWorkers - int(p.busy.Load())
	if n < 0 {
		return 0
	}
	return n
}

// ParallelFor splits [0, n) into contiguous sub-ranges of at most grain
// indices, runs fn(start, end) for each on the pool, and waits for all of
// them. Sub-ranges are independent and complete in any order; the first
// error wins and is returned after every dispatched sub-range has finished.
// A cancelled ctx stops dispatching further sub-ranges.
func (p *Pool) ParallelFor(ctx context.Context, n, grain int, fn func(start, end int) error) error {
	if n <= 0 {
		return nil
	}
	if grain <= 0 {
		grain = n
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for start := 0; start < n; start += grain {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}

		end := start + grain
		if end > n {
			end = n
		}

		s, e := start, end
		wg.Add(1)
		p.Submit(Task{
			ID: uuid.New(),
			Run: func() error {
				defer wg.Done()
				if err := fn(s, e); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
				return nil
			},
		})
	}

	wg.Wait()

	return firstErr
}
