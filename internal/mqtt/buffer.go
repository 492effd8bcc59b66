package mqtt

import "log"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO that holds messages while the broker is
// unreachable. When full, the oldest message is dropped.
// Not safe for concurrent use; RealPublisher only touches it from its worker.
type ringBuffer struct {
	buf      []bufferedMsg
	head     int // next write position
	count    int
	dropped  uint64
	overflow bool // true if any message was dropped since last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &ringBuffer{buf: make([]bufferedMsg, capacity)}
}

func (r *ringBuffer) push(msg bufferedMsg) {
	if r.count == len(r.buf) {
		if !r.overflow {
			log.Printf("mqtt: replay buffer full (%d messages), dropping oldest", len(r.buf))
			r.overflow = true
		}
		r.dropped++
		// head already points at the oldest entry
		r.buf[r.head] = msg
		r.head = (r.head + 1) % len(r.buf)
		return
	}
	r.buf[r.head] = msg
	r.head = (r.head + 1) % len(r.buf)
	r.count++
}

// requeue pushes msgs back in order, e.g. the unsent tail of a failed replay.
func (r *ringBuffer) requeue(msgs []bufferedMsg) {
	for _, m := range msgs {
		r.push(m)
	}
}

// drainAll returns the buffered messages oldest first and empties the buffer.
func (r *ringBuffer) drainAll() []bufferedMsg {
	if r.count == 0 {
		return nil
	}

	result := make([]bufferedMsg, r.count)
	start := (r.head - r.count + len(r.buf)) % len(r.buf)
	for i := range result {
		result[i] = r.buf[(start+i)%len(r.buf)]
	}

	r.count = 0
	r.head = 0
	r.overflow = false
	return result
}

func (r *ringBuffer) len() int {
	return r.count
}
