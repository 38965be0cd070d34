package services

import (
	"log/slog"
	"sync"
	"time"

	"github.com/lorrc/service-desk-dashboard/internal/infrastructure/logging"
)

// Scheduler defers recompute work off the interaction path. Tasks are
// scheduled outside the service lock, so a task may run inline.
type Scheduler interface {
	Schedule(task func())
	Shutdown()
}

// ImmediateScheduler runs every task synchronously on the caller's goroutine.
type ImmediateScheduler struct{}

func (ImmediateScheduler) Schedule(task func()) { task() }

func (ImmediateScheduler) Shutdown() {}

// RecomputeQueue runs each scheduled task on its own goroutine once the
// queue has seen no new work for the idle delay, and never later than the
// ceiling after the task was scheduled. Earlier tasks are never cancelled;
// tasks may therefore finish in any order.
type RecomputeQueue struct {
	idle    time.Duration
	ceiling time.Duration
	logger  *slog.Logger

	mu            sync.Mutex
	lastScheduled time.Time
	closed        bool
	done          chan struct{}
	wg            sync.WaitGroup
}

// NewRecomputeQueue creates a queue. A ceiling below the idle delay is
// raised to it.
func NewRecomputeQueue(idle, ceiling time.Duration, logger *slog.Logger) *RecomputeQueue {
	if idle < 0 {
		idle = 0
	}
	if ceiling < idle {
		ceiling = idle
	}
	return &RecomputeQueue{
		idle:    idle,
		ceiling: ceiling,
		logger:  logger.With("component", "recompute_queue"),
		done:    make(chan struct{}),
	}
}

// Schedule queues task. After Shutdown it is dropped.
func (q *RecomputeQueue) Schedule(task func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("recompute scheduled after shutdown; dropping")
		return
	}
	now := time.Now()
	q.lastScheduled = now
	q.wg.Add(1)
	q.mu.Unlock()

	deadline := now.Add(q.ceiling)

	go func() {
		defer q.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.LogPanic(q.logger, r)
			}
		}()

		q.wait(deadline)
		task()
	}()
}

// wait blocks until the queue has been idle long enough, the deadline
// passes or the queue shuts down.
func (q *RecomputeQueue) wait(deadline time.Time) {
	for {
		wait := min(q.untilIdle(), time.Until(deadline))
		if wait <= 0 {
			return
		}
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-q.done:
			timer.Stop()
			return
		}
	}
}

func (q *RecomputeQueue) untilIdle() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	return time.Until(q.lastScheduled.Add(q.idle))
}

// Shutdown flushes pending tasks immediately and waits for them to finish.
func (q *RecomputeQueue) Shutdown() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.done)
	}
	q.mu.Unlock()

	q.wg.Wait()
}
