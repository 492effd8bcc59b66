package logic

import "sync/atomic"

// Shared is the state exchanged between the tick context and the foreground loop.
//
// Every field has exactly one writer:
//   - threshold is written by the foreground loop and read by the tick;
//   - count, indicator, crossings and toggleFaults are written by the tick and
//     read by the foreground loop.
//
// Each field is a single atomic word, so no lock is needed. Adding a second writer
// to any field would need a compare-and-swap loop or a mutex.
type Shared struct {
	speeds Speeds

	threshold    atomic.Uint32
	count        atomic.Uint32
	indicator    atomic.Bool
	crossings    atomic.Uint64
	toggleFaults atomic.Uint64
}

// NewShared creates the shared state with the threshold set to the given tier of speeds.
func NewShared(speeds Speeds, tier int) *Shared {
	if !speeds.Valid() {
		speeds = DefaultSpeeds
	}
	if tier < 0 || tier >= NumButtons {
		tier = DefaultTier
	}
	s := &Shared{speeds: speeds}
	s.threshold.Store(uint32(speeds[tier]))
	return s
}

// SetThreshold publishes a new threshold to the tick context.
// Foreground only. Values outside the speed table are rejected.
func (s *Shared) SetThreshold(t Threshold) bool {
	if !s.speeds.Contains(t) {
		return false
	}
	if Threshold(s.threshold.Load()) != t {
		s.threshold.Store(uint32(t))
	}
	return true
}

// Threshold returns the threshold currently seen by the tick.
func (s *Shared) Threshold() Threshold {
	return Threshold(s.threshold.Load())
}

// Count returns the display count in [0, CountModulus).
func (s *Shared) Count() uint8 {
	return uint8(s.count.Load())
}

// Indicator returns the current indicator level.
func (s *Shared) Indicator() bool {
	return s.indicator.Load()
}

// Crossings returns the number of threshold crossings since startup.
func (s *Shared) Crossings() uint64 {
	return s.crossings.Load()
}

// ToggleFaults returns how many indicator toggles the output rejected.
func (s *Shared) ToggleFaults() uint64 {
	return s.toggleFaults.Load()
}

// advance is called only from the tick context.
func (s *Shared) advance() {
	s.indicator.Store(!s.indicator.Load())
	s.count.Store((s.count.Load() + 1) % CountModulus)
	s.crossings.Add(1)
}
