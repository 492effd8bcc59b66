// Package timer delivers the fixed-period tick that drives the accumulator.
//
// A Timer owns the tick context: ticks are delivered from a single goroutine,
// strictly in order, and each Tick call runs to completion before the next one.
// HostTimer drives ticks from the OS clock; Sim lets tests advance time by hand.
package timer

import (
	"context"
	"errors"
	"time"
)

// DefaultPeriod is the tick period.
const DefaultPeriod = time.Millisecond

// ErrNoTask is returned by Run when no task has been registered.
var ErrNoTask = errors.New("timer: no task registered")

// PeriodicTask is invoked once per tick. Tick must not block.
type PeriodicTask interface {
	Tick()
}

// TaskFunc adapts a function to PeriodicTask.
type TaskFunc func()

// Tick calls f.
func (f TaskFunc) Tick() { f() }

// Timer is a source of periodic ticks.
type Timer interface {
	// Register installs the task invoked on every tick. Call before Run.
	Register(task PeriodicTask)

	// Run delivers ticks until ctx is cancelled.
	Run(ctx context.Context) error
}
