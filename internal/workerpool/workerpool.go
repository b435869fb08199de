// Package workerpool implements the fixed-size worker pool that the server
// (internal/server) dispatches connection handling through. It is grounded
// on the reference implementation's thread_pool.rs: a fixed set of workers
// pulling jobs off one shared queue,
// each job executed with its panics isolated so one bad job cannot take
// down a worker goroutine. Where the reference signals shutdown by sending
// one Terminate message per worker, Go's idiom for the same thing is a quit
// channel every worker selects on, which all of them observe the instant it
// closes.
package workerpool

import (
	stdErrors "errors"
	"sync"

	"go.uber.org/zap"
)

// Job is a unit of work a Pool executes on one of its workers.
type Job func()

// ErrPoolClosed is returned by Submit once the pool has been closed.
var ErrPoolClosed = stdErrors.New("workerpool: pool is closed")

// Pool is a fixed-size set of worker goroutines draining one shared job
// queue. The queue is unbuffered, so there is no backlog: Submit blocks
// while every worker is busy.
type Pool struct {
	jobs      chan Job
	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	log       *zap.SugaredLogger
}

// New starts a Pool with size workers. size is clamped to at least 1.
func New(size int, log *zap.SugaredLogger) *Pool {
	if size < 1 {
		size = 1
	}

	p := &Pool{
		jobs: make(chan Job),
		quit: make(chan struct{}),
		log:  log,
	}

	p.wg.Add(size)
	for id := range size {
		go p.worker(id)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobs:
			p.runSafely(id, job)
		case <-p.quit:
			return
		}
	}
}

// runSafely executes job, recovering from and logging a panic rather than
// letting it crash the worker goroutine and shrink the pool.
func (p *Pool) runSafely(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorw("worker job panicked", "workerID", id, "panic", r)
		}
	}()
	job()
}

// Submit enqueues job for execution on the next free worker. It blocks
// until a worker accepts the job, and returns ErrPoolClosed if the pool has
// already been closed or is closed while the submission is waiting.
func (p *Pool) Submit(job Job) error {
	select {
	case <-p.quit:
		return ErrPoolClosed
	default:
	}

	select {
	case p.jobs <- job:
		return nil
	case <-p.quit:
		return ErrPoolClosed
	}
}

// Close stops the pool from accepting new jobs and blocks until every
// worker currently executing a job has finished and exited. Jobs still
// sitting in Submit's send when Close runs are abandoned with
// ErrPoolClosed rather than executed. Close is idempotent.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}
