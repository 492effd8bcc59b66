package logic

import "time"

// Watcher turns foreground samples of the shared state into change events.
// The first sample establishes a baseline and emits nothing.
type Watcher struct {
	baselined     bool
	last          Input
	startTime     time.Time
	eventCounts   EventCounts
	lastHeartbeat time.Time
}

// NewWatcher creates a watcher. The startTime is used for calculating uptime
// in heartbeat events.
func NewWatcher(startTime time.Time) *Watcher {
	return &Watcher{
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Process takes a new sample and returns any events that should be emitted.
// When both change in one sample, COUNT is emitted before RATE.
func (w *Watcher) Process(input Input) []Event {
	if !w.baselined {
		w.baselined = true
		w.last = input
		return nil
	}

	var events []Event

	if input.Count != w.last.Count {
		events = append(events, w.event(EventCount, input))
		w.eventCounts.Count++
	}

	if input.Threshold != w.last.Threshold || input.Tier != w.last.Tier {
		events = append(events, w.event(EventRate, input))
		w.eventCounts.Rate++
	}

	w.last = input
	return events
}

func (w *Watcher) event(typ EventType, input Input) Event {
	return Event{
		Timestamp: input.Time,
		Type:      typ,
		Count:     input.Count,
		Threshold: input.Threshold,
		Tier:      input.Tier,
		Indicator: input.Indicator,
	}
}

// IsBaselined returns whether the first sample has been seen.
func (w *Watcher) IsBaselined() bool {
	return w.baselined
}

// Last returns the most recent sample.
func (w *Watcher) Last() Input {
	return w.last
}

// EventCountsSnapshot returns a copy of the event counters.
func (w *Watcher) EventCountsSnapshot() EventCounts {
	return w.eventCounts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if not yet baselined, if the
// interval has not elapsed, or if interval is <= 0 (disabled).
func (w *Watcher) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if !w.baselined {
		return nil
	}

	if now.Sub(w.lastHeartbeat) < interval {
		return nil
	}

	w.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(w.startTime),
		Counts:    w.eventCounts,
	}
}
