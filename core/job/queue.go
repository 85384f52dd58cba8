// Package job implements the microtask queue of spec.md §3 "Job queue":
// a FIFO of pending jobs, drained between top-level invocations (§2 "Job
// queues (microtasks) drain between top-level invocations").
package job

import (
	"sync"

	"go.uber.org/zap"
)

// Task is one enqueued unit of deferred work: a function together with
// whatever it closed over (the teacher's convention of capturing state in
// the closure itself rather than a separate args slice, since Go closures
// already do this cheaply). Name is used only for logging/metrics.
type Task struct {
	Name string
	Run  func()
}

// Queue is a plain slice-backed FIFO (spec.md §3 directly; no pack
// library specializes in ordered job scheduling without also imposing a
// keyed-lookup structure the queue doesn't need — see DESIGN.md).
type Queue struct {
	log *zap.Logger

	mu      sync.Mutex
	pending []Task
}

// NewQueue constructs an empty queue.
func NewQueue(log *zap.Logger) *Queue {
	if log == nil {
		log = zap.NewNop()
	}
	return &Queue{log: log}
}

// Enqueue appends t to the end of the FIFO (spec.md's job_enqueue host
// hook calls through to this).
func (q *Queue) Enqueue(t Task) {
	q.mu.Lock()
	q.pending = append(q.pending, t)
	q.mu.Unlock()
	q.log.Debug("job enqueued", zap.String("name", t.Name), zap.Int("pending", q.Len()))
}

// Drain runs jobs FIFO until the queue is empty, including jobs enqueued
// by a job that is itself running — the "drain to quiescence" checkpoint
// spec.md §2 describes between top-level invocations. A panicking task
// does not stop the drain of the remaining queue; it is logged and
// skipped, since a microtask reaction failing must not corrupt sibling
// reactions' scheduling.
func (q *Queue) Drain() {
	for {
		t, ok := q.pop()
		if !ok {
			return
		}
		q.runOne(t)
	}
}

func (q *Queue) pop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return Task{}, false
	}
	t := q.pending[0]
	q.pending = q.pending[1:]
	return t, true
}

func (q *Queue) runOne(t Task) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("job panicked", zap.String("name", t.Name), zap.Any("recover", r))
		}
	}()
	t.Run()
}

// Len reports the number of jobs still pending.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
