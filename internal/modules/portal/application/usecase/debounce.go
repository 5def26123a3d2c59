package usecase

import (
	"sync"
	"time"

	"portalConsole/internal/shared/clock"
)

// DefaultDebounce is the quiet period free-text filter input waits for.
const DefaultDebounce = 1000 * time.Millisecond

// Debouncer runs the most recently triggered func once no trigger has
// arrived for delay.
type Debouncer struct {
	clock clock.Clock
	delay time.Duration

	mu      sync.Mutex
	timer   *clock.Timer
	seq     uint64
	stopped bool
}

func NewDebouncer(c clock.Clock, delay time.Duration) *Debouncer {
	if c == nil {
		c = clock.Real()
	}
	return &Debouncer{clock: c, delay: delay}
}

// Trigger restarts the quiet period with fn as the pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.seq++
	seq := d.seq
	d.timer.Stop()
	d.timer = nil
	if d.delay <= 0 {
		d.mu.Unlock()
		fn()
		return
	}
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.stopped || d.seq != seq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
	d.mu.Unlock()
}

// Cancel drops the pending call, if any. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	pending := d.timer.Stop()
	d.timer = nil
	return pending
}

// Stop cancels the pending call and ignores later triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.timer.Stop()
	d.timer = nil
}
