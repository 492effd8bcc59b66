package timer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// HostTimer delivers ticks from a time.Ticker.
// When a wake-up arrives late, every tick owed since the previous wake-up is
// delivered back to back, so the tick count always tracks elapsed time.
type HostTimer struct {
	period    time.Duration
	now       func() time.Time
	newTicker func(time.Duration) (<-chan time.Time, func())

	mu   sync.Mutex // guards task and jitter
	task PeriodicTask
	jit  *jitterWindow

	ticks   atomic.Uint64
	wakeups atomic.Uint64
}

var _ Timer = (*HostTimer)(nil)

// NewHostTimer creates a timer with the given period. A period <= 0 uses DefaultPeriod.
func NewHostTimer(period time.Duration) *HostTimer {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &HostTimer{
		period:    period,
		now:       time.Now,
		newTicker: stdTicker,
		jit:       newJitterWindow(jitterWindowSize),
	}
}

func stdTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Period returns the tick period.
func (h *HostTimer) Period() time.Duration {
	return h.period
}

// Register installs the periodic task.
func (h *HostTimer) Register(task PeriodicTask) {
	h.mu.Lock()
	h.task = task
	h.mu.Unlock()
}

// Run delivers ticks until ctx is cancelled.
func (h *HostTimer) Run(ctx context.Context) error {
	h.mu.Lock()
	task := h.task
	h.mu.Unlock()
	if task == nil {
		return ErrNoTask
	}

	ticks, stop := h.newTicker(h.period)
	defer stop()

	h.loop(ctx, task, ticks, h.now())
	return nil
}

func (h *HostTimer) loop(ctx context.Context, task PeriodicTask, ticks <-chan time.Time, start time.Time) {
	var delivered uint64
	last := start
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticks:
			due := uint64(t.Sub(start) / h.period)
			burst := 0
			for delivered < due {
				task.Tick()
				delivered++
				burst++
			}
			h.ticks.Store(delivered)
			h.wakeups.Add(1)

			h.mu.Lock()
			h.jit.add(t.Sub(last)-h.period, burst)
			h.mu.Unlock()
			last = t
		}
	}
}

// Ticks returns the number of ticks delivered so far.
func (h *HostTimer) Ticks() uint64 {
	return h.ticks.Load()
}

// Stats summarises wake-up jitter and catch-up bursts.
func (h *HostTimer) Stats() Stats {
	h.mu.Lock()
	samples := h.jit.samples()
	bursts := h.jit.bursts
	maxBurst := h.jit.maxBurst
	h.mu.Unlock()

	s := summarize(samples)
	s.Period = h.period
	s.Ticks = h.ticks.Load()
	s.Wakeups = h.wakeups.Load()
	s.CatchUpBursts = bursts
	s.MaxBurst = maxBurst
	return s
}
