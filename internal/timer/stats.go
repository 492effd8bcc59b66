package timer

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const jitterWindowSize = 1024

// Stats describes how well the host clock kept the tick period.
// Jitter is the difference between the observed wake-up interval and the period.
type Stats struct {
	Period         time.Duration
	Ticks          uint64
	Wakeups        uint64
	CatchUpBursts  uint64 // wake-ups that delivered more than one tick
	MaxBurst       int
	JitterMeanMs   float64
	JitterStdDevMs float64
	JitterMaxMs    float64 // largest absolute deviation in the window
}

// jitterWindow keeps the most recent jitter samples in milliseconds.
// Not safe for concurrent use; HostTimer guards it.
type jitterWindow struct {
	buf      []float64
	head     int
	count    int
	bursts   uint64
	maxBurst int
}

func newJitterWindow(size int) *jitterWindow {
	return &jitterWindow{buf: make([]float64, size)}
}

func (w *jitterWindow) add(jitter time.Duration, burst int) {
	w.buf[w.head] = float64(jitter) / float64(time.Millisecond)
	w.head = (w.head + 1) % len(w.buf)
	if w.count < len(w.buf) {
		w.count++
	}
	if burst > 1 {
		w.bursts++
	}
	if burst > w.maxBurst {
		w.maxBurst = burst
	}
}

func (w *jitterWindow) samples() []float64 {
	out := make([]float64, w.count)
	start := (w.head - w.count + len(w.buf)) % len(w.buf)
	for i := range out {
		out[i] = w.buf[(start+i)%len(w.buf)]
	}
	return out
}

func summarize(samples []float64) Stats {
	var s Stats
	switch len(samples) {
	case 0:
		return s
	case 1:
		s.JitterMeanMs = samples[0]
	default:
		s.JitterMeanMs, s.JitterStdDevMs = stat.MeanStdDev(samples, nil)
	}
	s.JitterMaxMs = math.Max(math.Abs(floats.Max(samples)), math.Abs(floats.Min(samples)))
	return s
}
