package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jingm4128/mcadence/internal/model"
)

const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces rapid state saves into one write. Each Save resets
// the timer; only the latest state is written. A failed write is not
// retried on its own, the next Save supersedes it.
type Debouncer struct {
	store *Store
	delay time.Duration

	mu      sync.Mutex
	pending *model.AppState
	timer   *time.Timer
	lastErr error
}

func NewDebouncer(store *Store, delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{store: store, delay: delay}
}

// Save schedules a debounced write of st.
func (d *Debouncer) Save(st model.AppState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = &st
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flushPending)
}

// Flush writes any pending state immediately, bypassing the delay. Used
// before operations that cannot wait: reset, import, settings save.
func (d *Debouncer) Flush() error {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.flushPending()
	return d.Err()
}

// SaveImmediate writes st now, cancelling any pending debounced state.
func (d *Debouncer) SaveImmediate(st model.AppState) error {
	d.mu.Lock()
	d.pending = &st
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.flushPending()
	return d.Err()
}

// Err reports the most recent write failure, if any.
func (d *Debouncer) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

func (d *Debouncer) flushPending() {
	d.mu.Lock()
	st := d.pending
	d.pending = nil
	d.mu.Unlock()
	if st == nil {
		return
	}
	err := d.store.SaveState(context.Background(), *st)
	d.mu.Lock()
	d.lastErr = err
	d.mu.Unlock()
}
