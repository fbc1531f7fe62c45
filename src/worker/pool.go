package worker

import (
	"context"
	"log"
	"sync"

	"snaptranslate/src/session"
)

// ResultCallback is invoked when a session finishes (from a worker
// goroutine). The event loop should pass a closure that posts back into
// the event loop safely.
type ResultCallback func(res session.Result, err error)

// RunFunc executes one capture-translate session.
type RunFunc func(ctx context.Context) (session.Result, error)

// Pool is a fixed-size session worker pool with a 1-slot input queue
// (strict back-pressure). Sessions serialize in the Manager anyway, so one
// worker is the useful size.
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
}

type job struct {
	ctx context.Context
	run RunFunc
	cb  ResultCallback
}

// New creates a worker pool. Size defaults to 1 when size<=0. Queue is 1 slot.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				log.Printf("Worker: starting session")
				res, err := j.run(j.ctx)
				log.Printf("Worker: session %s finished, err=%v", res.ID, err)
				j.cb(res, err)
			}
		}()
	}
}

// Submit enqueues a session if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, run RunFunc, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, run: run, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
