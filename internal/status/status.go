// Package status provides a thread-safe status tracker for the tick-counter daemon.
// It is written by the foreground loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/tick-counter/internal/logic"
	"github.com/sweeney/tick-counter/internal/timer"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PeriodUs    int64
	PollMs      int64
	DebounceMs  int64
	HeartbeatMs int64
	Speeds      logic.Speeds
	Panel       string
	Display     string
	Broker      string // empty = MQTT disabled
	HTTPAddr    string
}

// Counter is the sampled state of the periodic accumulator.
type Counter struct {
	Count        uint8
	Indicator    bool
	Threshold    logic.Threshold
	Tier         int
	Crossings    uint64
	ToggleFaults uint64
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and stays valid after the lock is released.
type Snapshot struct {
	Counter       Counter
	Baselined     bool
	Counts        logic.EventCounts
	Timer         timer.Stats
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu     sync.RWMutex
	snap   Snapshot
	now    func() time.Time
	timers func() timer.Stats
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Update records the latest counter sample, baseline status and event counts.
// Called from runLoop on every poll.
func (t *Tracker) Update(c Counter, baselined bool, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Counter = c
	t.snap.Baselined = baselined
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetTimerStats records the latest tick timing figures.
func (t *Tracker) SetTimerStats(s timer.Stats) {
	t.mu.Lock()
	t.snap.Timer = s
	t.mu.Unlock()
}

// SetTimerSource registers a function that reports tick timing. When set,
// Snapshot calls it on every read in place of the last SetTimerStats value,
// so the figures are only computed when someone asks for them.
func (t *Tracker) SetTimerSource(src func() timer.Stats) {
	t.mu.Lock()
	t.timers = src
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	src := t.timers
	t.mu.RUnlock()
	if src != nil {
		s.Timer = src()
	}
	s.Now = t.now()
	return s
}
