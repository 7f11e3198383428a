package query

import (
	"sync"
	"time"
)

const DefaultDebounce = 100 * time.Millisecond

// Debouncer emits the last pushed text once no new text arrived for the delay.
type Debouncer struct {
	mu sync.Mutex
	// emitMu orders emits; a timer checks its sequence and emits under it
	emitMu sync.Mutex
	delay  time.Duration
	timer  *time.Timer
	emit   func(string)
	seq    uint64
}

func NewDebouncer(delay time.Duration, emit func(string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, emit: emit}
}

// Push restarts the delay with a new text.
func (d *Debouncer) Push(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.emitMu.Lock()
		defer d.emitMu.Unlock()
		d.mu.Lock()
		current := d.seq
		d.mu.Unlock()
		// a timer that already fired cannot be stopped, drop it here instead
		if current != seq {
			return
		}
		d.emit(text)
	})
}

// Flush emits a text right away. A pending text is dropped, and a timer already
// emitting finishes first.
func (d *Debouncer) Flush(text string) {
	d.Stop()
	d.emitMu.Lock()
	defer d.emitMu.Unlock()
	d.emit(text)
}

func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
