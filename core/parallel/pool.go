// Package parallel provides the bounded worker pool used to dispatch
// per-node training tasks and per-row prediction tasks across a fixed
// number of goroutines (spec §5, component G).
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool is a FIFO-submission, bounded-concurrency task runner. Tasks are
// submitted with Go and run as soon as a worker slot is free; Wait blocks
// until every submitted task has completed and returns the first error
// encountered, if any.
//
// Pool is not safe for reuse after Wait returns; construct a new Pool per
// batch of work.
type Pool struct {
	group *errgroup.Group
	sem   chan struct{}
}

// New creates a Pool bounded to size concurrent tasks. size <= 0 means
// unbounded (limited only by however many tasks are submitted).
func New(ctx context.Context, size int) *Pool {
	group, _ := errgroup.WithContext(ctx)
	p := &Pool{group: group}
	if size > 0 {
		p.sem = make(chan struct{}, size)
	}
	return p
}

// Go submits a task. On a bounded pool it blocks until a worker slot is
// free and then starts task, so tasks start in submission order; on an
// unbounded pool it returns immediately. If a previously submitted task has
// already failed, task still runs; Wait reports only the first error.
func (p *Pool) Go(task func() error) {
	if p.sem != nil {
		p.sem <- struct{}{}
	}
	p.group.Go(func() error {
		if p.sem != nil {
			defer func() { <-p.sem }()
		}
		return task()
	})
}

// Wait drains the pool, returning the first non-nil error returned by any
// task, or nil if every task succeeded.
func (p *Pool) Wait() error {
	return p.group.Wait()
}

// Run is a convenience helper that submits all of the given tasks to a new
// Pool of the given size and waits for them to complete.
func Run(ctx context.Context, size int, tasks []func() error) error {
	p := New(ctx, size)
	for _, task := range tasks {
		p.Go(task)
	}
	return p.Wait()
}
