package mqtt

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/tick-counter/internal/logic"
)

const (
	outboxSize     = 64
	bufferCapacity = 256
	publishTimeout = 5 * time.Second
	drainTimeout   = 6 * time.Second
)

var (
	// ErrClosed is returned when publishing after Close.
	ErrClosed = errors.New("mqtt: publisher closed")

	// ErrOutboxFull is returned when the worker has fallen behind and the message was dropped.
	ErrOutboxFull = errors.New("mqtt: outbox full")
)

// RealPublisher publishes to an actual MQTT broker.
//
// Publish and PublishSystem never block: messages go to an outbox drained by a
// worker goroutine, which waits for the broker and buffers messages while the
// connection is down, replaying them after reconnecting.
type RealPublisher struct {
	client paho.Client

	mu     sync.Mutex // guards closed and sends on outbox
	closed bool
	outbox chan bufferedMsg

	reconnected chan struct{}
	done        chan struct{}
	overflow    atomic.Bool
	dropped     atomic.Uint64

	// buf is only touched by the worker.
	buf *ringBuffer
}

// NewRealPublisher creates a publisher for the given broker and starts
// connecting in the background. It does not wait for the connection.
func NewRealPublisher(broker string) *RealPublisher {
	p := newPublisher()

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(TopicSystem, string(willPayload(time.Now())), 1, true).
		SetOnConnectHandler(func(paho.Client) { p.onConnect() }).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	p.start()
	return p
}

func newPublisher() *RealPublisher {
	return &RealPublisher{
		outbox:      make(chan bufferedMsg, outboxSize),
		reconnected: make(chan struct{}, 1),
		done:        make(chan struct{}),
		buf:         newRingBuffer(bufferCapacity),
	}
}

func (p *RealPublisher) start() {
	go p.run()
}

func (p *RealPublisher) onConnect() {
	log.Printf("mqtt: connected")
	select {
	case p.reconnected <- struct{}{}:
	default:
	}
}

// Publish queues a counter event.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained
	return p.enqueue(bufferedMsg{topic: Topic, payload: payload})
}

// PublishSystem queues a system lifecycle event.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 (at-least-once) for lifecycle events
	return p.enqueue(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

func (p *RealPublisher) enqueue(msg bufferedMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.outbox <- msg:
		p.overflow.Store(false)
		return nil
	default:
		p.dropped.Add(1)
		if !p.overflow.Swap(true) {
			log.Printf("mqtt: outbox full (%d messages), dropping", outboxSize)
		}
		return ErrOutboxFull
	}
}

func (p *RealPublisher) run() {
	defer close(p.done)
	for {
		select {
		case msg, ok := <-p.outbox:
			if !ok {
				p.flush()
				return
			}
			p.deliver(msg)
		case <-p.reconnected:
			p.flush()
		}
	}
}

func (p *RealPublisher) deliver(msg bufferedMsg) {
	if !p.client.IsConnectionOpen() {
		p.buf.push(msg)
		return
	}
	if !p.flush() {
		p.buf.push(msg)
		return
	}
	if err := p.send(msg); err != nil {
		log.Printf("mqtt: publish to %s: %v", msg.topic, err)
		p.buf.push(msg)
	}
}

// flush replays buffered messages in order. It stops at the first failure,
// keeping the rest buffered, and reports whether the buffer was emptied.
func (p *RealPublisher) flush() bool {
	if p.buf.len() == 0 {
		return true
	}
	if !p.client.IsConnectionOpen() {
		return false
	}
	msgs := p.buf.drainAll()
	log.Printf("mqtt: replaying %d buffered messages", len(msgs))
	for i, m := range msgs {
		if err := p.send(m); err != nil {
			log.Printf("mqtt: replay to %s: %v", m.topic, err)
			p.buf.requeue(msgs[i:])
			return false
		}
	}
	return true
}

func (p *RealPublisher) send(msg bufferedMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Dropped returns how many messages were rejected because the outbox was full.
func (p *RealPublisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Close stops accepting messages, gives the worker a bounded time to deliver
// what is queued, then disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.outbox)
	p.mu.Unlock()

	var err error
	select {
	case <-p.done:
	case <-time.After(drainTimeout):
		err = fmt.Errorf("mqtt: timed out delivering queued messages")
	}
	p.client.Disconnect(1000) // 1 second timeout
	return err
}
