package logic

// Toggler drives the indicator output. Toggle is called from the tick context,
// so implementations must not block.
type Toggler interface {
	Toggle() error
}

// Accumulator is the periodic task run once per 1 ms tick.
// It counts elapsed ticks and, when the current threshold is reached, flips the
// indicator and advances the display count.
//
// Tick runs in constant time: no locks, no allocation, no loops.
type Accumulator struct {
	shared  *Shared
	toggler Toggler

	// elapsed is only touched from Tick.
	elapsed uint32
}

// NewAccumulator creates an accumulator writing to shared. toggler may be nil.
func NewAccumulator(shared *Shared, toggler Toggler) *Accumulator {
	return &Accumulator{shared: shared, toggler: toggler}
}

// Tick handles one timer tick.
// The threshold is read on every tick, so a lower threshold applied by the
// foreground loop takes effect against the ticks already accumulated.
func (a *Accumulator) Tick() {
	a.elapsed++
	if a.elapsed < a.shared.threshold.Load() {
		return
	}
	a.elapsed = 0
	a.shared.advance()
	if a.toggler != nil {
		if err := a.toggler.Toggle(); err != nil {
			a.shared.toggleFaults.Add(1)
		}
	}
}
