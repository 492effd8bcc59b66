package gpio

import (
	"errors"
	"sync/atomic"

	"github.com/sweeney/tick-counter/internal/logic"
)

// FakePanel is a test double that returns scripted button samples.
type FakePanel struct {
	// Samples contains scripted button samples to return.
	// Each call to Read() consumes the next sample.
	Samples []logic.ButtonStatus

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakePanel creates a FakePanel with the given samples.
func NewFakePanel(samples []logic.ButtonStatus) *FakePanel {
	return &FakePanel{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakePanel) Read() (logic.ButtonStatus, error) {
	if f.ReadError != nil {
		return logic.ButtonNone, f.ReadError
	}

	if len(f.Samples) == 0 {
		return logic.ButtonNone, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the panel as closed.
func (f *FakePanel) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the panel to the beginning of samples.
func (f *FakePanel) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeIndicator counts toggles. Toggle may run on the tick goroutine while a
// test reads from another, so its state is atomic.
type FakeIndicator struct {
	toggles atomic.Uint64
	level   atomic.Bool
	closed  atomic.Bool

	// ToggleError, if set, is returned by every Toggle (after counting it).
	ToggleError error
}

// NewFakeIndicator creates a FakeIndicator.
func NewFakeIndicator() *FakeIndicator {
	return &FakeIndicator{}
}

// Toggle flips the recorded level.
func (f *FakeIndicator) Toggle() error {
	f.toggles.Add(1)
	f.level.Store(!f.level.Load())
	return f.ToggleError
}

// Toggles returns how many times Toggle was called.
func (f *FakeIndicator) Toggles() uint64 {
	return f.toggles.Load()
}

// Level returns the current output level.
func (f *FakeIndicator) Level() bool {
	return f.level.Load()
}

// Close drives the level low and marks the indicator closed.
func (f *FakeIndicator) Close() error {
	f.level.Store(false)
	f.closed.Store(true)
	return nil
}

// Closed reports whether Close was called.
func (f *FakeIndicator) Closed() bool {
	return f.closed.Load()
}
