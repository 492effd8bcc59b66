// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/tick-counter/internal/logic"
)

// Topic is the MQTT topic for counter events.
const Topic = "timers/tick-counter/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "timers/tick-counter/system"

// ClientID identifies this daemon to the broker.
const ClientID = "tick-counter"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a counter event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Client is a Publisher that can also report its connection state.
type Client interface {
	Publisher
	ConnectionStatus
}

var (
	_ Client = (*RealPublisher)(nil)
	_ Client = (*FakePublisher)(nil)
)

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Counter CounterPayload `json:"counter"`
}

// CounterPayload contains the counter event details.
type CounterPayload struct {
	Timestamp   string `json:"timestamp"`
	Event       string `json:"event"`
	Count       uint8  `json:"count"`
	ThresholdMs uint32 `json:"threshold_ms"`
	Tier        int    `json:"tier"`
	Indicator   string `json:"indicator"`
}

// FormatPayload creates the JSON payload for a counter event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Counter: CounterPayload{
			Timestamp:   event.Timestamp.UTC().Format(time.RFC3339),
			Event:       string(event.Type),
			Count:       event.Count,
			ThresholdMs: uint32(event.Threshold),
			Tier:        event.Tier,
			Indicator:   onOff(event.Indicator),
		},
	}
	return json.Marshal(payload)
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// willPayload is the last-will message the broker publishes if we vanish.
func willPayload(now time.Time) []byte {
	data, _ := FormatSystemPayload(SystemEvent{Timestamp: now, Event: "OFFLINE", Reason: "LWT"})
	return data
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

var _ Client = Nop{}

func (Nop) Publish(logic.Event) error       { return nil }
func (Nop) PublishSystem(SystemEvent) error { return nil }
func (Nop) Close() error                    { return nil }
func (Nop) IsConnected() bool               { return false }
