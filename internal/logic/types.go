// Package logic contains the pure timing and rate-control logic for tick-counter.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters, and ticks are delivered
// by whoever owns the timer.
package logic

import "time"

// Threshold is the number of 1 ms ticks that must accumulate before the
// indicator flips and the display count advances.
type Threshold uint32

// Milliseconds returns the threshold as a duration, assuming a 1 ms tick.
func (t Threshold) Milliseconds() time.Duration {
	return time.Duration(t) * time.Millisecond
}

// ButtonStatus is one sample of the four-button panel.
// Bit i is set while button i is held down.
type ButtonStatus uint8

const (
	// ButtonNone means no button is pressed.
	ButtonNone ButtonStatus = 0

	// NumButtons is the number of buttons on the panel (and tiers in the speed table).
	NumButtons = 4

	buttonMask ButtonStatus = 1<<NumButtons - 1
)

// Button returns the status with only button i pressed.
func Button(i int) ButtonStatus {
	if i < 0 || i >= NumButtons {
		return ButtonNone
	}
	return 1 << uint(i)
}

// Pressed reports whether button i is held in this sample.
func (b ButtonStatus) Pressed(i int) bool {
	return i >= 0 && i < NumButtons && b&(1<<uint(i)) != 0
}

// Lowest returns the lowest pressed button index, or -1 if none is pressed.
func (b ButtonStatus) Lowest() int {
	b &= buttonMask
	for i := 0; i < NumButtons; i++ {
		if b&(1<<uint(i)) != 0 {
			return i
		}
	}
	return -1
}

// CountModulus is the display count wrap point: the count always fits one hex digit.
const CountModulus = 16

// EventType represents an observable change in the counter.
type EventType string

const (
	EventCount EventType = "COUNT"
	EventRate  EventType = "RATE"
)

// Event represents a change to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Count     uint8
	Threshold Threshold
	Tier      int
	Indicator bool
}

// Input is a single foreground sample of the shared state.
type Input struct {
	Count     uint8
	Threshold Threshold
	Tier      int
	Indicator bool
	Time      time.Time
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Count int
	Rate  int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
