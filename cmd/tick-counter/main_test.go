package main

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/tick-counter/internal/display"
	"github.com/sweeney/tick-counter/internal/gpio"
	"github.com/sweeney/tick-counter/internal/logic"
	"github.com/sweeney/tick-counter/internal/mqtt"
	"github.com/sweeney/tick-counter/internal/status"
	"github.com/sweeney/tick-counter/internal/timer"
)

// TestEnvVarNames verifies the env var constants match what pi-helper writes
// to /run/pi-helper.env.
func TestEnvVarNames(t *testing.T) {
	want := map[string]string{
		"NETWORK_TYPE":        envNetworkType,
		"NETWORK_IP":          envNetworkIP,
		"NETWORK_STATUS":      envNetworkStatus,
		"NETWORK_GATEWAY":     envNetworkGateway,
		"NETWORK_WIFI_STATUS": envNetworkWifiStatus,
		"NETWORK_WIFI_SSID":   envNetworkWifiSSID,
	}
	for canonical, got := range want {
		if got != canonical {
			t.Errorf("env var constant: got %q, want %q", got, canonical)
		}
	}
}

func TestReadNetworkInfoAllSet(t *testing.T) {
	t.Setenv(envNetworkType, "wifi")
	t.Setenv(envNetworkIP, "192.168.1.100")
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkGateway, "192.168.1.1")
	t.Setenv(envNetworkWifiStatus, "connected")
	t.Setenv(envNetworkWifiSSID, "MyNetwork")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo")
	}

	want := status.NetworkInfo{
		Type:       "wifi",
		IP:         "192.168.1.100",
		Status:     "connected",
		Gateway:    "192.168.1.1",
		WifiStatus: "connected",
		SSID:       "MyNetwork",
	}
	if *info != want {
		t.Errorf("got %+v, want %+v", *info, want)
	}
}

func TestReadNetworkInfoNoneSet(t *testing.T) {
	t.Setenv(envNetworkStatus, "")
	if info := readNetworkInfo(); info != nil {
		t.Errorf("expected nil when NETWORK_STATUS is unset, got %+v", info)
	}
}

func TestReadNetworkInfoPartial(t *testing.T) {
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkIP, "")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo when NETWORK_STATUS is set")
	}
	if info.Status != "connected" {
		t.Errorf("Status: got %q, want %q", info.Status, "connected")
	}
	if info.IP != "" {
		t.Errorf("IP: got %q, want empty", info.IP)
	}
}

func TestCopyPins(t *testing.T) {
	var dst [logic.NumButtons]int
	if err := copyPins(dst[:], []int{1, 2, 3, 4}, "pins-buttons"); err != nil {
		t.Fatalf("copyPins: %v", err)
	}
	if dst != [logic.NumButtons]int{1, 2, 3, 4} {
		t.Errorf("got %v", dst)
	}

	err := copyPins(dst[:], []int{1, 2}, "pins-buttons")
	if err == nil || !strings.Contains(err.Error(), "want 4 pins, got 2") {
		t.Errorf("expected length error, got %v", err)
	}
}

func TestOpenRenderer(t *testing.T) {
	r, err := openRenderer(options{display: "none"})
	if err != nil {
		t.Fatalf("none: %v", err)
	}
	if _, ok := r.(display.Nop); !ok {
		t.Errorf("none: got %T", r)
	}

	r, err = openRenderer(options{display: "terminal"})
	if err != nil {
		t.Fatalf("terminal: %v", err)
	}
	if _, ok := r.(*display.TerminalRenderer); !ok {
		t.Errorf("terminal: got %T", r)
	}

	if _, err := openRenderer(options{display: "lcd"}); err == nil {
		t.Error("expected error for unknown display")
	}
	if _, err := openRenderer(options{display: "segments", segmentPins: []int{1}}); err == nil {
		t.Error("expected error for short segment pin list")
	}
}

func TestOpenPanelUnknown(t *testing.T) {
	if _, err := openPanel(options{panel: "serial"}); err == nil {
		t.Error("expected error for unknown panel")
	}
	if _, err := openPanel(options{panel: "gpio", buttonPins: []int{5, 6}}); err == nil {
		t.Error("expected error for short button pin list")
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	if err := run(options{speeds: "1000,0,500,100"}); err == nil {
		t.Error("expected error for zero threshold")
	}
	if err := run(options{speeds: "2000,1000,500,100", defaultTier: 4}); err == nil {
		t.Error("expected error for out-of-range default tier")
	}
}

func TestDescribeButtons(t *testing.T) {
	sel := logic.NewRateSelector(logic.DefaultSpeeds, 0)

	got := describeButtons(logic.Button(1)|logic.Button(3), sel)
	want := "B0: UP, B1: DOWN, B2: UP, B3: DOWN (tier 1, 1000ms)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = describeButtons(logic.ButtonNone, sel)
	if !strings.HasSuffix(got, "(tier 1, 1000ms)") {
		t.Errorf("no button should keep the previous tier, got %q", got)
	}
}

// --- runLoop tests ---

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use (only called from runLoop's goroutine).
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

// repeat returns n copies of sample.
func repeat(sample logic.ButtonStatus, n int) []logic.ButtonStatus {
	out := make([]logic.ButtonStatus, n)
	for i := range out {
		out[i] = sample
	}
	return out
}

// hookPanel runs onRead on the loop goroutine before every sample, so tests can
// advance simulated ticks at a fixed point of each iteration.
type hookPanel struct {
	inner  gpio.Panel
	calls  int
	onRead func(call int)
}

func (p *hookPanel) Read() (logic.ButtonStatus, error) {
	if p.onRead != nil {
		p.onRead(p.calls)
	}
	p.calls++
	return p.inner.Read()
}

func (p *hookPanel) Close() error { return p.inner.Close() }

// faultPanel returns errors for a range of Read() calls.
// The fault range is fixed at construction.
type faultPanel struct {
	inner      *gpio.FakePanel
	call       int
	faultStart int // first call index that returns error (inclusive)
	faultEnd   int // last call index that returns error (exclusive)
}

func (p *faultPanel) Read() (logic.ButtonStatus, error) {
	i := p.call
	p.call++
	if i >= p.faultStart && i < p.faultEnd {
		return logic.ButtonNone, errors.New("gpio fault")
	}
	return p.inner.Read()
}

func (p *faultPanel) Close() error { return p.inner.Close() }

// countingStats reports fixed timer figures and counts how often it is read.
type countingStats struct {
	stats timer.Stats
	calls int
}

func (c *countingStats) Stats() timer.Stats {
	c.calls++
	return c.stats
}

type harness struct {
	panel     gpio.Panel
	renderer  *display.FakeRenderer
	shared    *logic.Shared
	selector  *logic.RateSelector
	pub       *mqtt.FakePublisher
	tracker   *status.Tracker
	timer     *countingStats
	debounce  time.Duration
	heartbeat time.Duration
	clock     func() time.Time
}

func newHarness(panel gpio.Panel) *harness {
	return &harness{
		panel:    panel,
		renderer: display.NewFakeRenderer(),
		shared:   logic.NewShared(logic.DefaultSpeeds, 0),
		selector: logic.NewRateSelector(logic.DefaultSpeeds, 0),
		pub:      mqtt.NewFakePublisher(),
		clock:    fakeClock(epoch, 10*time.Millisecond),
	}
}

// run drives runLoop with nTicks polls followed by signal.
func (h *harness) run(t *testing.T, nTicks int, signal os.Signal) {
	t.Helper()
	d := loopDeps{
		panel:     h.panel,
		renderer:  h.renderer,
		shared:    h.shared,
		selector:  h.selector,
		publisher: h.pub,
	}
	if h.tracker != nil {
		if h.timer == nil {
			h.timer = &countingStats{stats: timer.Stats{Period: time.Millisecond, Ticks: 42}}
		}
		h.tracker.SetTimerSource(h.timer.Stats)
		d.tracker = h.tracker
	}

	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(d, h.debounce, h.heartbeat, h.clock, tick, sig)
	}()

	for i := 0; i < nTicks; i++ {
		tick <- time.Time{}
	}
	sig <- signal

	if err := <-errCh; err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}
}

func TestRunLoopNoEventsAtBaseline(t *testing.T) {
	h := newHarness(gpio.NewFakePanel(repeat(logic.ButtonNone, 4)))
	h.run(t, 4, syscall.SIGTERM)

	if len(h.pub.Events) != 0 {
		t.Errorf("expected 0 counter events, got %d", len(h.pub.Events))
	}
	if got := h.pub.SystemEventNames(); len(got) != 1 || got[0] != "SHUTDOWN" {
		t.Errorf("system events: got %v, want [SHUTDOWN]", got)
	}
	if h.pub.SystemEvents[0].Reason != "SIGTERM" {
		t.Errorf("reason: got %q, want SIGTERM", h.pub.SystemEvents[0].Reason)
	}
	if len(h.renderer.Frames) != 4 {
		t.Errorf("expected one frame per poll, got %d", len(h.renderer.Frames))
	}
}

func TestRunLoopButtonSelectsRate(t *testing.T) {
	// baseline, button 2 held past the debounce window, then released
	samples := append(repeat(logic.ButtonNone, 2), repeat(logic.Button(2), 4)...)
	samples = append(samples, repeat(logic.ButtonNone, 3)...)
	h := newHarness(gpio.NewFakePanel(samples))
	h.debounce = 20 * time.Millisecond

	h.run(t, len(samples), syscall.SIGTERM)

	if got := h.shared.Threshold(); got != 500 {
		t.Errorf("threshold: got %d, want 500", got)
	}
	if h.selector.Tier() != 2 {
		t.Errorf("tier: got %d, want 2", h.selector.Tier())
	}
	if len(h.pub.Events) != 1 {
		t.Fatalf("expected 1 RATE event, got %d: %+v", len(h.pub.Events), h.pub.Events)
	}
	ev := h.pub.Events[0]
	if ev.Type != logic.EventRate || ev.Threshold != 500 || ev.Tier != 2 {
		t.Errorf("event: got %+v", ev)
	}
}

func TestRunLoopBounceRejection(t *testing.T) {
	// a single-sample press is shorter than the debounce window
	samples := append(repeat(logic.ButtonNone, 2), logic.Button(3))
	samples = append(samples, repeat(logic.ButtonNone, 4)...)
	h := newHarness(gpio.NewFakePanel(samples))
	h.debounce = 30 * time.Millisecond

	h.run(t, len(samples), syscall.SIGTERM)

	if got := h.shared.Threshold(); got != 2000 {
		t.Errorf("threshold: got %d, want 2000 (bounce rejected)", got)
	}
	if len(h.pub.Events) != 0 {
		t.Errorf("expected 0 events, got %d", len(h.pub.Events))
	}
}

func TestRunLoopRendersCount(t *testing.T) {
	// 1000 simulated ticks before each poll at the 2000 ms threshold
	sim := timer.NewSim()
	shared := logic.NewShared(logic.DefaultSpeeds, 0)
	sim.Register(logic.NewAccumulator(shared, nil))

	panel := &hookPanel{
		inner:  gpio.NewFakePanel(repeat(logic.ButtonNone, 1)),
		onRead: func(int) { sim.Advance(1000) },
	}
	h := newHarness(panel)
	h.shared = shared

	h.run(t, 4, syscall.SIGINT)

	want := []uint8{0, 1, 1, 2}
	if len(h.renderer.Frames) != len(want) {
		t.Fatalf("frames: got %v, want %v", h.renderer.Frames, want)
	}
	for i := range want {
		if h.renderer.Frames[i] != want[i] {
			t.Errorf("frame %d: got %d, want %d", i, h.renderer.Frames[i], want[i])
		}
	}

	// count changes after the baseline poll become COUNT events
	if len(h.pub.Events) != 2 {
		t.Fatalf("expected 2 COUNT events, got %d", len(h.pub.Events))
	}
	for i, ev := range h.pub.Events {
		if ev.Type != logic.EventCount || ev.Count != uint8(i+1) {
			t.Errorf("event %d: got %+v", i, ev)
		}
	}
	if h.pub.SystemEvents[0].Reason != "SIGINT" {
		t.Errorf("reason: got %q, want SIGINT", h.pub.SystemEvents[0].Reason)
	}
}

func TestRunLoopPanelReadError(t *testing.T) {
	// the held button is not lost while reads fail
	inner := gpio.NewFakePanel([]logic.ButtonStatus{logic.Button(1)})
	panel := &faultPanel{inner: inner, faultStart: 1, faultEnd: 4}
	h := newHarness(panel)

	h.run(t, 5, syscall.SIGTERM)

	if got := h.shared.Threshold(); got != 1000 {
		t.Errorf("threshold: got %d, want 1000", got)
	}
	if len(h.renderer.Frames) != 5 {
		t.Errorf("expected rendering to continue through read errors, got %d frames", len(h.renderer.Frames))
	}
	if got := h.pub.SystemEventNames(); len(got) != 1 || got[0] != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN after panel errors, got %v", got)
	}
}

func TestRunLoopRenderError(t *testing.T) {
	h := newHarness(gpio.NewFakePanel([]logic.ButtonStatus{logic.Button(3)}))
	h.renderer.RenderError = errors.New("spi write failed")

	h.run(t, 3, syscall.SIGTERM)

	if got := h.shared.Threshold(); got != 100 {
		t.Errorf("threshold: got %d, want 100", got)
	}
	if got := h.pub.SystemEventNames(); len(got) != 1 || got[0] != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN after render errors, got %v", got)
	}
}

func TestRunLoopPublishErrorDoesNotStop(t *testing.T) {
	samples := append(repeat(logic.ButtonNone, 2), repeat(logic.Button(0)|logic.Button(3), 2)...)
	h := newHarness(gpio.NewFakePanel(append([]logic.ButtonStatus{logic.Button(2)}, samples...)))
	h.pub.PublishError = errors.New("broker down")

	h.run(t, 5, syscall.SIGTERM)

	// lowest pressed button wins
	if got := h.shared.Threshold(); got != 2000 {
		t.Errorf("threshold: got %d, want 2000", got)
	}
	if len(h.pub.SystemEvents) != 1 {
		t.Errorf("expected SHUTDOWN to be published, got %d system events", len(h.pub.SystemEvents))
	}
}

func TestRunLoopHeartbeat(t *testing.T) {
	// clock calls: t0 = start, then one per poll at 5 minute steps.
	// The first poll baselines; by the third poll 15 minutes have elapsed.
	h := newHarness(gpio.NewFakePanel(repeat(logic.ButtonNone, 1)))
	h.clock = fakeClock(epoch, 5*time.Minute)
	h.heartbeat = 15 * time.Minute
	h.tracker = status.NewTracker(epoch, status.Config{})

	h.run(t, 4, syscall.SIGTERM)

	names := h.pub.SystemEventNames()
	if len(names) != 2 || names[0] != "HEARTBEAT" || names[1] != "SHUTDOWN" {
		t.Fatalf("system events: got %v, want [HEARTBEAT SHUTDOWN]", names)
	}

	hb := h.pub.SystemEvents[0]
	if !hb.Timestamp.Equal(epoch.Add(15 * time.Minute)) {
		t.Errorf("heartbeat timestamp: got %v", hb.Timestamp)
	}
	var parsed status.StatusJSON
	if err := json.Unmarshal(hb.RawPayload, &parsed); err != nil {
		t.Fatalf("heartbeat payload: %v", err)
	}
	if parsed.Status.Event != "HEARTBEAT" {
		t.Errorf("payload event: got %q", parsed.Status.Event)
	}
	if !parsed.Status.Ready {
		t.Error("expected ready in heartbeat payload")
	}
	if parsed.Status.Counter.ThresholdMs != 2000 {
		t.Errorf("payload threshold: got %d, want 2000", parsed.Status.Counter.ThresholdMs)
	}
	if parsed.Status.Timer.Ticks != 42 {
		t.Errorf("payload timer ticks: got %d, want 42", parsed.Status.Timer.Ticks)
	}
}

func TestRunLoopHeartbeatDisabled(t *testing.T) {
	h := newHarness(gpio.NewFakePanel(repeat(logic.ButtonNone, 1)))
	h.clock = fakeClock(epoch, time.Hour)

	h.run(t, 4, syscall.SIGTERM)

	if got := h.pub.SystemEventNames(); len(got) != 1 {
		t.Errorf("expected only SHUTDOWN with heartbeat disabled, got %v", got)
	}
}

func TestRunLoopShutdownPayload(t *testing.T) {
	h := newHarness(gpio.NewFakePanel([]logic.ButtonStatus{logic.Button(1)}))
	h.tracker = status.NewTracker(epoch, status.Config{Broker: "tcp://localhost:1883"})
	h.pub.Connected = true

	h.run(t, 2, syscall.SIGINT)

	ev := h.pub.SystemEvents[len(h.pub.SystemEvents)-1]
	if !ev.Retained {
		t.Error("SHUTDOWN should be retained")
	}
	var parsed status.StatusJSON
	if err := json.Unmarshal(ev.RawPayload, &parsed); err != nil {
		t.Fatalf("shutdown payload: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" || parsed.Status.Reason != "SIGINT" {
		t.Errorf("payload: event %q reason %q", parsed.Status.Event, parsed.Status.Reason)
	}
	if !parsed.Status.MQTT.Connected {
		t.Error("expected MQTT connected in shutdown payload")
	}
	if parsed.Status.Counter.Tier != 1 {
		t.Errorf("payload tier: got %d, want 1", parsed.Status.Counter.Tier)
	}

	snap := h.tracker.Snapshot()
	if snap.Counter.Threshold != 1000 {
		t.Errorf("tracker threshold: got %d, want 1000", snap.Counter.Threshold)
	}
}

func TestRunLoopReadsTimerStatsOnlyForSnapshots(t *testing.T) {
	h := newHarness(gpio.NewFakePanel(repeat(logic.ButtonNone, 1)))
	h.tracker = status.NewTracker(epoch, status.Config{})

	h.run(t, 50, syscall.SIGTERM)

	// Heartbeat is off, so the SHUTDOWN payload is the only snapshot taken.
	if h.timer.calls != 1 {
		t.Errorf("timer stats reads over 50 polls: got %d, want 1", h.timer.calls)
	}
	snap := h.tracker.Snapshot()
	if snap.Timer.Ticks != 42 {
		t.Errorf("snapshot timer ticks: got %d, want 42", snap.Timer.Ticks)
	}
	if h.timer.calls != 2 {
		t.Errorf("timer stats reads after snapshot: got %d, want 2", h.timer.calls)
	}
}
