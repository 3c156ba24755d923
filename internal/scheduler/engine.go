// Package scheduler wakes the application exactly when a recurrence period
// elapses, so reconciliation does not have to poll. It keeps a min-heap of
// period due instants and emits one rollover event per (base title, period
// key) pair as each deadline passes.
package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var ErrInvalidTrigger = errors.New("scheduler: invalid trigger time")

// RolloverEvent announces that a recurring task's period has elapsed and
// the state should be reconciled.
type RolloverEvent struct {
	BaseTitle string
	PeriodKey string
	TriggerAt time.Time
}

func (e RolloverEvent) dedupeKey() string {
	return e.BaseTitle + "\x00" + e.PeriodKey
}

type rolloverHeap []RolloverEvent

func (h rolloverHeap) Len() int           { return len(h) }
func (h rolloverHeap) Less(i, j int) bool { return h[i].TriggerAt.Before(h[j].TriggerAt) }
func (h rolloverHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *rolloverHeap) Push(x any) {
	*h = append(*h, x.(RolloverEvent))
}

func (h *rolloverHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	*h = old[:n-1]
	return ev
}

type Engine struct {
	mu      sync.Mutex
	queue   rolloverHeap
	pending map[string]bool
	out     chan RolloverEvent
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:   make(rolloverHeap, 0),
		pending: make(map[string]bool),
		out:     make(chan RolloverEvent, bufferSize),
		wakeup:  make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

func (e *Engine) C() <-chan RolloverEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// Schedule queues a rollover wakeup. A pair already queued is not queued
// again, so rescheduling after every reconciliation pass is cheap.
func (e *Engine) Schedule(ev RolloverEvent) error {
	if ev.TriggerAt.IsZero() {
		return ErrInvalidTrigger
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return errors.New("scheduler: engine stopped")
	}
	if e.pending[ev.dedupeKey()] {
		return nil
	}
	e.pending[ev.dedupeKey()] = true
	heap.Push(&e.queue, ev)
	e.signalWakeup()
	return nil
}

// Dropped counts events discarded because the output buffer was full.
func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.TriggerAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			for _, ev := range e.popDue(time.Now()) {
				select {
				case e.out <- ev:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (RolloverEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return RolloverEvent{}, false
	}
	return e.queue[0], true
}

func (e *Engine) popDue(now time.Time) []RolloverEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]RolloverEvent, 0)
	for len(e.queue) > 0 {
		if e.queue[0].TriggerAt.After(now) {
			break
		}
		ev := heap.Pop(&e.queue).(RolloverEvent)
		delete(e.pending, ev.dedupeKey())
		out = append(out, ev)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
