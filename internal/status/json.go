package status

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/tick-counter/internal/display"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Counter       CounterJSON  `json:"counter"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Timer         TimerJSON    `json:"timer"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// CounterJSON is the JSON representation of the counter sample.
type CounterJSON struct {
	Count        uint8  `json:"count"`
	Digit        string `json:"digit"`
	Segments     string `json:"segments"`
	Indicator    string `json:"indicator"`
	ThresholdMs  uint32 `json:"threshold_ms"`
	Tier         int    `json:"tier"`
	Crossings    uint64 `json:"crossings"`
	ToggleFaults uint64 `json:"toggle_faults"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Count int `json:"count"`
	Rate  int `json:"rate"`
}

// TimerJSON is the JSON representation of tick timing figures.
type TimerJSON struct {
	PeriodUs       int64   `json:"period_us"`
	Ticks          uint64  `json:"ticks"`
	Wakeups        uint64  `json:"wakeups"`
	CatchUpBursts  uint64  `json:"catch_up_bursts"`
	MaxBurst       int     `json:"max_burst"`
	JitterMeanMs   float64 `json:"jitter_mean_ms"`
	JitterStdDevMs float64 `json:"jitter_stddev_ms"`
	JitterMaxMs    float64 `json:"jitter_max_ms"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PeriodUs    int64  `json:"period_us"`
	PollMs      int64  `json:"poll_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Speeds      string `json:"speeds"`
	Panel       string `json:"panel"`
	Display     string `json:"display"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

// OnOff renders an indicator level the way events and the status page show it.
func OnOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func buildInner(snap Snapshot) StatusInner {
	c := snap.Counter
	return StatusInner{
		Counter: CounterJSON{
			Count:        c.Count,
			Digit:        fmt.Sprintf("%X", c.Count),
			Segments:     display.Pattern(c.Count),
			Indicator:    OnOff(c.Indicator),
			ThresholdMs:  uint32(c.Threshold),
			Tier:         c.Tier,
			Crossings:    c.Crossings,
			ToggleFaults: c.ToggleFaults,
		},
		Ready:         snap.Baselined,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Count: snap.Counts.Count,
			Rate:  snap.Counts.Rate,
		},
		Timer: TimerJSON{
			PeriodUs:       snap.Timer.Period.Microseconds(),
			Ticks:          snap.Timer.Ticks,
			Wakeups:        snap.Timer.Wakeups,
			CatchUpBursts:  snap.Timer.CatchUpBursts,
			MaxBurst:       snap.Timer.MaxBurst,
			JitterMeanMs:   snap.Timer.JitterMeanMs,
			JitterStdDevMs: snap.Timer.JitterStdDevMs,
			JitterMaxMs:    snap.Timer.JitterMaxMs,
		},
		Config: ConfigJSON{
			PeriodUs:    snap.Config.PeriodUs,
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Speeds:      snap.Config.Speeds.String(),
			Panel:       snap.Config.Panel,
			Display:     snap.Config.Display,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
