package utils

import "time"

// Pacer enforces a minimum interval between successive calls. Execution is
// strictly sequential, so no locking is needed; the pacer only exists to keep
// per-app lookups under the provider's request rate.
type Pacer struct {
	interval time.Duration
	last     time.Time
}

// NewPacer creates a Pacer with the given minimum interval. A non-positive
// interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait blocks until at least the configured interval has passed since the
// previous call. The first call returns immediately.
func (p *Pacer) Wait() {
	if p.interval <= 0 {
		return
	}
	if !p.last.IsZero() {
		if elapsed := time.Since(p.last); elapsed < p.interval {
			time.Sleep(p.interval - elapsed)
		}
	}
	p.last = time.Now()
}
