package logic

import "time"

// Debouncer filters button panel samples: a new status is accepted only after it
// has been observed continuously for the debounce window.
type Debouncer struct {
	window time.Duration

	// Current stable (debounced) status
	stable ButtonStatus
	// Candidate status during debounce
	pending ButtonStatus
	// Time when pending was first observed
	pendingSince time.Time
	// Whether a candidate is being timed
	hasPending bool
}

// NewDebouncer creates a debouncer with the given window. A window <= 0 passes
// samples straight through.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Process takes a raw sample and returns the debounced status.
func (d *Debouncer) Process(status ButtonStatus, now time.Time) ButtonStatus {
	status &= buttonMask

	if d.window <= 0 {
		d.stable = status
		return d.stable
	}

	if status == d.stable {
		// Back to stable, drop any candidate
		d.hasPending = false
		return d.stable
	}

	if !d.hasPending || d.pending != status {
		d.pending = status
		d.pendingSince = now
		d.hasPending = true
		return d.stable
	}

	if now.Sub(d.pendingSince) >= d.window {
		d.stable = status
		d.hasPending = false
	}
	return d.stable
}

// Stable returns the last accepted status.
func (d *Debouncer) Stable() ButtonStatus {
	return d.stable
}
