package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/tick-counter/internal/display"
	"github.com/sweeney/tick-counter/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"hex":      func(v uint8) string { return fmt.Sprintf("%X", v) },
	"segments": display.Pattern,
	"onOff":    status.OnOff,
	"ms":       func(v float64) string { return fmt.Sprintf("%.3fms", v) },
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Tick Counter</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.digit { font-size: 3em; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Tick Counter</h1>

<h2>Counter</h2>
<table>
<tr><th>Display</th><td id="digit" class="digit">{{hex .Counter.Count}}</td></tr>
<tr><th>Segments</th><td id="segments">{{segments .Counter.Count}}</td></tr>
<tr><th>Indicator</th><td id="indicator" class="{{if .Counter.Indicator}}on{{else}}off{{end}}">{{onOff .Counter.Indicator}}</td></tr>
<tr><th>Rate</th><td id="rate">{{.Counter.Threshold}}ms (button {{.Counter.Tier}})</td></tr>
<tr><th>Crossings</th><td id="crossings">{{.Counter.Crossings}}</td></tr>
{{if .Counter.ToggleFaults}}<tr><th>Toggle faults</th><td>{{.Counter.ToggleFaults}}</td></tr>{{end}}
<tr><th>Ready</th><td>{{if .Baselined}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Timer</h2>
<table>
<tr><th>Period</th><td>{{.Timer.Period}}</td></tr>
<tr><th>Ticks</th><td>{{.Timer.Ticks}}</td></tr>
<tr><th>Wake-ups</th><td>{{.Timer.Wakeups}}</td></tr>
<tr><th>Catch-up bursts</th><td>{{.Timer.CatchUpBursts}} (max {{.Timer.MaxBurst}})</td></tr>
<tr><th>Jitter</th><td>{{ms .Timer.JitterMeanMs}} &plusmn; {{ms .Timer.JitterStdDevMs}}, max {{ms .Timer.JitterMaxMs}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td>{{if .Config.Broker}}<span class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</span>{{else}}disabled{{end}}</td></tr>
{{if .Config.Broker}}<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>{{end}}
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>COUNT</th><td>{{.Counts.Count}}</td></tr>
<tr><th>RATE</th><td>{{.Counts.Rate}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Speeds</th><td>{{.Config.Speeds}}</td></tr>
<tr><th>Panel</th><td>{{.Config.Panel}}</td></tr>
<tr><th>Display</th><td>{{.Config.Display}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var digit = document.getElementById("digit");
  var segments = document.getElementById("segments");
  var indicator = document.getElementById("indicator");
  var rate = document.getElementById("rate");
  var crossings = document.getElementById("crossings");

  function refresh() {
    fetch("/index.json").then(function(r) { return r.json(); }).then(function(j) {
      var c = j.status.counter;
      digit.textContent = c.digit;
      segments.textContent = c.segments;
      indicator.textContent = c.indicator;
      indicator.className = c.indicator === "ON" ? "on" : "off";
      rate.textContent = c.threshold_ms + "ms (button " + c.tier + ")";
      crossings.textContent = c.crossings;
    }).catch(function() {});
  }
  setInterval(refresh, 250);
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
