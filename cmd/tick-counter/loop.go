package main

import (
	"errors"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/tick-counter/internal/display"
	"github.com/sweeney/tick-counter/internal/gpio"
	"github.com/sweeney/tick-counter/internal/logic"
	"github.com/sweeney/tick-counter/internal/mqtt"
	"github.com/sweeney/tick-counter/internal/status"
)

// loopDeps are the collaborators of the foreground loop. tracker may be nil.
type loopDeps struct {
	panel     gpio.Panel
	renderer  display.Renderer
	shared    *logic.Shared
	selector  *logic.RateSelector
	publisher mqtt.Client
	tracker   *status.Tracker
}

// runLoop is the foreground loop. On every poll tick it samples the panel,
// publishes the selected threshold to the tick context and renders the count.
// It returns after publishing SHUTDOWN when a signal arrives.
func runLoop(d loopDeps, debounce, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	debouncer := logic.NewDebouncer(debounce)
	watcher := logic.NewWatcher(startTime)

	var panelFailing, renderFailing bool

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if d.tracker != nil {
				refreshTracker(d, watcher)
				snap := d.tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := d.publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()

			// A failed read leaves the selection as it was.
			raw, err := d.panel.Read()
			if err != nil {
				if !panelFailing {
					log.Printf("panel read error: %v", err)
					panelFailing = true
				}
			} else {
				if panelFailing {
					log.Printf("panel read recovered")
					panelFailing = false
				}
				th := d.selector.Select(debouncer.Process(raw, t))
				if !d.shared.SetThreshold(th) {
					log.Printf("threshold %dms not in speed table, ignored", th)
				}
			}

			count := d.shared.Count()
			if err := d.renderer.Render(count); err != nil {
				if !renderFailing {
					log.Printf("render error: %v", err)
					renderFailing = true
				}
			} else if renderFailing {
				log.Printf("render recovered")
				renderFailing = false
			}

			events := watcher.Process(logic.Input{
				Count:     count,
				Threshold: d.shared.Threshold(),
				Tier:      d.selector.Tier(),
				Indicator: d.shared.Indicator(),
				Time:      t,
			})

			for _, event := range events {
				if event.Type == logic.EventRate {
					log.Printf("event: %s (button %d, %dms)", event.Type, event.Tier, event.Threshold)
				}
				// the publisher logs once when its outbox first overflows
				if err := d.publisher.Publish(event); err != nil && !errors.Is(err, mqtt.ErrOutboxFull) {
					log.Printf("publish error: %v", err)
				}
			}

			if !watcher.IsBaselined() {
				continue
			}

			if hbData := watcher.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v count_events=%d rate_events=%d crossings=%d",
					hbData.Uptime, hbData.Counts.Count, hbData.Counts.Rate, d.shared.Crossings())

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if d.tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						d.tracker.SetNetwork(net)
					}
					refreshTracker(d, watcher)
					snap := d.tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := d.publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			if d.tracker != nil {
				refreshTracker(d, watcher)
			}
		}
	}
}

// refreshTracker copies the current counter and connection state into the
// tracker. Timer figures are pulled by the tracker itself on Snapshot.
func refreshTracker(d loopDeps, w *logic.Watcher) {
	d.tracker.Update(status.Counter{
		Count:        d.shared.Count(),
		Indicator:    d.shared.Indicator(),
		Threshold:    d.shared.Threshold(),
		Tier:         d.selector.Tier(),
		Crossings:    d.shared.Crossings(),
		ToggleFaults: d.shared.ToggleFaults(),
	}, w.IsBaselined(), w.EventCountsSnapshot())
	d.tracker.SetMQTTConnected(d.publisher.IsConnected())
}
