package worker

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Job represents a unit of work to be processed
type Job interface {
	Process(ctx context.Context) error
	ID() string
}

// Pool runs batches of jobs on a bounded number of goroutines. Jobs write
// their own results, so callers that index results by position keep their
// order no matter which job finishes first.
type Pool struct {
	workerCount int
	onDone      func(id string, done, total int)
}

// NewPool creates a new worker pool. A count of zero or less uses every CPU.
func NewPool(workerCount int) *Pool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	return &Pool{workerCount: workerCount}
}

// OnDone registers a callback invoked as each job succeeds. Calls are
// serialized and done counts up from 1.
func (p *Pool) OnDone(fn func(id string, done, total int)) {
	p.onDone = fn
}

// Run processes jobs and waits for all of them. The first error cancels the
// remaining jobs and is returned.
func (p *Pool) Run(ctx context.Context, jobs []Job) error {
	if len(jobs) == 0 {
		return nil
	}

	if p.workerCount == 1 {
		for i, job := range jobs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := job.Process(ctx); err != nil {
				return err
			}
			if p.onDone != nil {
				p.onDone(job.ID(), i+1, len(jobs))
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workerCount)

	var (
		mu   sync.Mutex
		done int
	)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := job.Process(ctx); err != nil {
				return err
			}
			if p.onDone != nil {
				mu.Lock()
				done++
				p.onDone(job.ID(), done, len(jobs))
				mu.Unlock()
			}
			return nil
		})
	}
	return g.Wait()
}

// Func adapts a function into a Job.
type Func struct {
	Name string
	Fn   func(ctx context.Context) error
}

func (f Func) Process(ctx context.Context) error { return f.Fn(ctx) }
func (f Func) ID() string                        { return f.Name }
