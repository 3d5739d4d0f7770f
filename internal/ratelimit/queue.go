// Package ratelimit paces calls to external providers through a single FIFO
// worker.
package ratelimit

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrClosed is returned for work submitted after Close
var ErrClosed = errors.New("rate limit queue closed")

type task struct {
	ctx  context.Context
	run  func(context.Context) (any, error)
	done chan result
}

type result struct {
	value any
	err   error
}

// Queue runs submitted tasks one at a time in submission order. Consecutive
// task starts are at least delay apart, whether the tasks were queued
// together or submitted one after another.
type Queue struct {
	name    string
	delay   time.Duration
	limiter *rate.Limiter
	tasks   chan *task
	stop    chan struct{}
	stopCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closeMu sync.RWMutex
	closed  bool
}

// NewQueue starts a worker that spaces task starts by delay. A delay of zero
// or less disables pacing.
func NewQueue(name string, delay time.Duration) *Queue {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	stopCtx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		name:    name,
		delay:   delay,
		limiter: rate.NewLimiter(limit, 1),
		tasks:   make(chan *task, 1024),
		stop:    make(chan struct{}),
		stopCtx: stopCtx,
		cancel:  cancel,
	}
	q.wg.Add(1)
	go q.work()
	return q
}

// Delay returns the pause between consecutive tasks
func (q *Queue) Delay() time.Duration {
	return q.delay
}

// Do enqueues fn and blocks until it has run. The value and error returned
// are the ones fn produced for this caller; a failing task does not affect
// tasks behind it.
func Do[T any](ctx context.Context, q *Queue, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	t := &task{
		ctx: ctx,
		run: func(ctx context.Context) (any, error) {
			return fn(ctx)
		},
		done: make(chan result, 1),
	}

	q.closeMu.RLock()
	if q.closed {
		q.closeMu.RUnlock()
		return zero, ErrClosed
	}
	select {
	case q.tasks <- t:
		q.closeMu.RUnlock()
	case <-ctx.Done():
		q.closeMu.RUnlock()
		return zero, ctx.Err()
	}

	select {
	case res := <-t.done:
		if res.err != nil {
			return zero, res.err
		}
		v, _ := res.value.(T)
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (q *Queue) work() {
	defer q.wg.Done()

	for {
		select {
		case <-q.stop:
			q.drainClosed()
			return
		case t := <-q.tasks:
			// the first task after an idle spell runs at once
			if err := q.limiter.Wait(q.stopCtx); err != nil {
				t.done <- result{err: ErrClosed}
				q.drainClosed()
				return
			}
			q.execute(t)
		}
	}
}

func (q *Queue) execute(t *task) {
	// the caller gave up while waiting in line
	if err := t.ctx.Err(); err != nil {
		t.done <- result{err: err}
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] Rate limited task panicked: queue=%s panic=%v", q.name, r)
			t.done <- result{err: errors.New("task panicked")}
		}
	}()

	v, err := t.run(t.ctx)
	t.done <- result{value: v, err: err}
}

func (q *Queue) drainClosed() {
	for {
		select {
		case t := <-q.tasks:
			t.done <- result{err: ErrClosed}
		default:
			return
		}
	}
}

// Close stops the worker. Tasks still waiting fail with ErrClosed.
func (q *Queue) Close() {
	q.closeMu.Lock()
	if q.closed {
		q.closeMu.Unlock()
		return
	}
	q.closed = true
	q.closeMu.Unlock()

	close(q.stop)
	q.cancel()
	q.wg.Wait()
}
