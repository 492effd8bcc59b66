package timer

import (
	"context"
	"sync"
)

// Sim is a simulated tick source. Nothing happens until Advance is called.
type Sim struct {
	mu    sync.Mutex
	task  PeriodicTask
	ticks uint64
}

var _ Timer = (*Sim)(nil)

// NewSim creates a simulated timer.
func NewSim() *Sim {
	return &Sim{}
}

// Register installs the periodic task.
func (s *Sim) Register(task PeriodicTask) {
	s.mu.Lock()
	s.task = task
	s.mu.Unlock()
}

// Run blocks until ctx is cancelled; ticks only come from Advance.
func (s *Sim) Run(ctx context.Context) error {
	s.mu.Lock()
	task := s.task
	s.mu.Unlock()
	if task == nil {
		return ErrNoTask
	}
	<-ctx.Done()
	return nil
}

// Advance delivers n ticks in order and returns once all have run.
// Concurrent calls are serialized, so ticks never overlap.
func (s *Sim) Advance(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task == nil {
		return
	}
	for i := 0; i < n; i++ {
		s.task.Tick()
		s.ticks++
	}
}

// Ticks returns the number of ticks delivered so far.
func (s *Sim) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}
