// Command tick-counter runs a 1 ms periodic tick that flips an indicator and
// advances a hex display count at a rate picked from a four-button panel.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeney/tick-counter/internal/display"
	"github.com/sweeney/tick-counter/internal/gpio"
	"github.com/sweeney/tick-counter/internal/logic"
	"github.com/sweeney/tick-counter/internal/mqtt"
	"github.com/sweeney/tick-counter/internal/status"
	"github.com/sweeney/tick-counter/internal/timer"
	"github.com/sweeney/tick-counter/internal/web"
)

type options struct {
	period      time.Duration
	poll        time.Duration
	debounce    time.Duration
	heartbeat   time.Duration
	speeds      string
	defaultTier int

	panel   string
	display string
	chip    string

	buttonPins        []int
	pinLED            int
	segmentPins       []int
	segmentsActiveLow bool
	spiPort           string
	spiDigits         int

	broker   string
	httpAddr string
}

var (
	opts options

	rootCmd = &cobra.Command{
		Use:          "tick-counter",
		Short:        "Count threshold crossings of a 1 ms tick on a seven-segment display",
		Long:         "Run a 1 ms periodic tick that toggles an indicator and advances a hex display count each time the threshold selected on the button panel elapses.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	buttonsCmd = &cobra.Command{
		Use:   "buttons",
		Short: "Print the current button panel state and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printButtons(opts)
		},
	}
)

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&opts.panel, "panel", "gpio", "button panel source (gpio, tty)")
	f.StringVar(&opts.chip, "chip", gpio.DefaultChip, "GPIO character device")
	f.IntSliceVar(&opts.buttonPins, "pins-buttons", append([]int(nil), gpio.DefaultButtonPins[:]...), "BCM pins for buttons 0-3")
	f.StringVar(&opts.speeds, "speeds", logic.DefaultSpeeds.String(), "thresholds in ms for buttons 0-3")
	f.IntVar(&opts.defaultTier, "default-tier", logic.DefaultTier, "button whose threshold is used at startup")

	r := rootCmd.Flags()
	r.DurationVar(&opts.period, "period", timer.DefaultPeriod, "tick period")
	r.DurationVar(&opts.poll, "poll", 10*time.Millisecond, "foreground loop interval")
	r.DurationVar(&opts.debounce, "debounce", 30*time.Millisecond, "button debounce window (0 to disable)")
	r.DurationVar(&opts.heartbeat, "heartbeat", 15*time.Minute, "heartbeat interval (0 to disable)")
	r.StringVar(&opts.display, "display", "terminal", "display output (terminal, segments, max7219, none)")
	r.IntVar(&opts.pinLED, "pin-led", gpio.DefaultPinLED, "BCM pin for the indicator LED (-1 to disable)")
	r.IntSliceVar(&opts.segmentPins, "pins-segments", append([]int(nil), display.DefaultSegmentPins[:]...), "BCM pins for segments a-g")
	r.BoolVar(&opts.segmentsActiveLow, "segments-active-low", false, "drive segment lines low to light them (common anode)")
	r.StringVar(&opts.spiPort, "spi-port", "", "SPI port for the max7219 display (empty for the first)")
	r.IntVar(&opts.spiDigits, "spi-digits", display.DefaultMAX7219Digits, "digits on the max7219 module")
	r.StringVar(&opts.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address (empty to disable)")
	r.StringVar(&opts.httpAddr, "http", ":8080", "HTTP status address (empty to disable)")

	rootCmd.AddCommand(buttonsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(o options) error {
	speeds, err := logic.ParseSpeeds(o.speeds)
	if err != nil {
		return err
	}
	if o.defaultTier < 0 || o.defaultTier >= logic.NumButtons {
		return fmt.Errorf("default-tier: want 0-%d, got %d", logic.NumButtons-1, o.defaultTier)
	}

	panel, err := openPanel(o)
	if err != nil {
		return err
	}
	defer panel.Close()

	// The indicator is only driven alongside real buttons; bench runs have no LED.
	var toggler logic.Toggler
	if o.panel == "gpio" && o.pinLED >= 0 {
		led, err := gpio.NewRealIndicator(o.chip, o.pinLED)
		if err != nil {
			return fmt.Errorf("init indicator: %w", err)
		}
		defer led.Close()
		toggler = led
	}

	renderer, err := openRenderer(o)
	if err != nil {
		return err
	}
	defer renderer.Close()

	var publisher mqtt.Client = mqtt.Nop{}
	if o.broker != "" {
		publisher = mqtt.NewRealPublisher(o.broker)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PeriodUs:    o.period.Microseconds(),
		PollMs:      o.poll.Milliseconds(),
		DebounceMs:  o.debounce.Milliseconds(),
		HeartbeatMs: o.heartbeat.Milliseconds(),
		Speeds:      speeds,
		Panel:       o.panel,
		Display:     o.display,
		Broker:      o.broker,
		HTTPAddr:    o.httpAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	shared := logic.NewShared(speeds, o.defaultTier)
	ticker := timer.NewHostTimer(o.period)
	ticker.Register(logic.NewAccumulator(shared, toggler))
	tracker.SetTimerSource(ticker.Stats)

	ctx, cancel := context.WithCancel(context.Background())
	timerDone := make(chan error, 1)
	go func() {
		timerDone <- ticker.Run(ctx)
	}()
	// Stop ticking before the indicator is released.
	defer func() {
		cancel()
		if err := <-timerDone; err != nil {
			log.Printf("timer: %v", err)
		}
	}()

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	// Start HTTP status server
	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	log.Printf("started: period=%v poll=%v debounce=%v speeds=%s panel=%s display=%s broker=%q heartbeat=%v",
		o.period, o.poll, o.debounce, speeds, o.panel, o.display, o.broker, o.heartbeat)

	poll := time.NewTicker(o.poll)
	defer poll.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	deps := loopDeps{
		panel:     panel,
		renderer:  renderer,
		shared:    shared,
		selector:  logic.NewRateSelector(speeds, o.defaultTier),
		publisher: publisher,
		tracker:   tracker,
	}
	return runLoop(deps, o.debounce, o.heartbeat, time.Now, poll.C, sigCh)
}

func openPanel(o options) (gpio.Panel, error) {
	switch o.panel {
	case "gpio":
		var pins [logic.NumButtons]int
		if err := copyPins(pins[:], o.buttonPins, "pins-buttons"); err != nil {
			return nil, err
		}
		p, err := gpio.NewRealPanel(o.chip, pins)
		if err != nil {
			return nil, fmt.Errorf("init gpio: %w", err)
		}
		return p, nil
	case "tty":
		p, err := gpio.NewTTYPanel(gpio.DefaultKeyHold)
		if err != nil {
			return nil, fmt.Errorf("init tty: %w", err)
		}
		log.Printf("tty panel: press 1-4 to pick a rate")
		return p, nil
	default:
		return nil, fmt.Errorf("panel: unknown source %q", o.panel)
	}
}

func openRenderer(o options) (display.Renderer, error) {
	switch o.display {
	case "terminal":
		return display.NewTerminalRenderer(os.Stdout), nil
	case "segments":
		var pins [display.NumSegments]int
		if err := copyPins(pins[:], o.segmentPins, "pins-segments"); err != nil {
			return nil, err
		}
		r, err := display.NewSegmentRenderer(o.chip, pins, o.segmentsActiveLow)
		if err != nil {
			return nil, fmt.Errorf("init segments: %w", err)
		}
		return r, nil
	case "max7219":
		r, err := display.NewMAX7219Renderer(o.spiPort, o.spiDigits)
		if err != nil {
			return nil, fmt.Errorf("init max7219: %w", err)
		}
		return r, nil
	case "none":
		return display.Nop{}, nil
	default:
		return nil, fmt.Errorf("display: unknown output %q", o.display)
	}
}

func copyPins(dst, src []int, flag string) error {
	if len(src) != len(dst) {
		return fmt.Errorf("%s: want %d pins, got %d", flag, len(dst), len(src))
	}
	copy(dst, src)
	return nil
}

// printButtons reads the panel once and shows which buttons are held and the
// rate they would select.
func printButtons(o options) error {
	speeds, err := logic.ParseSpeeds(o.speeds)
	if err != nil {
		return err
	}
	panel, err := openPanel(o)
	if err != nil {
		return err
	}
	defer panel.Close()

	b, err := panel.Read()
	if err != nil {
		return fmt.Errorf("read panel: %w", err)
	}
	fmt.Println(describeButtons(b, logic.NewRateSelector(speeds, o.defaultTier)))
	return nil
}

func describeButtons(b logic.ButtonStatus, sel *logic.RateSelector) string {
	parts := make([]string, logic.NumButtons)
	for i := range parts {
		state := "UP"
		if b.Pressed(i) {
			state = "DOWN"
		}
		parts[i] = fmt.Sprintf("B%d: %s", i, state)
	}
	th := sel.Select(b)
	return fmt.Sprintf("%s (tier %d, %dms)", strings.Join(parts, ", "), sel.Tier(), th)
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
