package mqtt

import (
	"sync"

	"github.com/sweeney/tick-counter/internal/logic"
)

// FakeMessage is one message as it would have gone to the broker.
type FakeMessage struct {
	Topic    string
	Payload  []byte
	Retained bool
}

// FakePublisher records published events for test assertions.
// Fields may be read directly once the code under test has stopped publishing.
type FakePublisher struct {
	mu sync.Mutex

	// Events contains all counter events that were published.
	Events []logic.Event

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// Messages contains every payload in publish order, across both topics.
	Messages []FakeMessage

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the counter event.
func (f *FakePublisher) Publish(event logic.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Messages = append(f.Messages, FakeMessage{Topic: Topic, Payload: payload})
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.Messages = append(f.Messages, FakeMessage{Topic: TopicSystem, Payload: payload, Retained: event.Retained})
	return nil
}

// SystemEventNames returns the Event field of every system event, in order.
func (f *FakePublisher) SystemEventNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.SystemEvents))
	for i, e := range f.SystemEvents {
		names[i] = e.Event
	}
	return names
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Reset clears recorded events and injected errors.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = nil
	f.SystemEvents = nil
	f.Messages = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
