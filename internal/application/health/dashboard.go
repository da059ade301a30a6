package health

import (
	"bytes"
	"encoding/json"
	"html/template"
	"sort"
)

type depRow struct {
	Name   string
	Status string
	PingMs string
	OK     bool
}

type dashboardView struct {
	Health      CollectResult
	Deps        []depRow
	Healthy     bool
	LastMethod  string
	LastPath    string
	InitialJSON template.JS
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>HindTrade · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    :root { --saffron: #F28C28; --navy: #0B2545; --green: #138808; --bg: #F7F7F2; --muted: #64748b; }
    * { box-sizing: border-box; }
    body { background: var(--bg); color: var(--navy); font-family: system-ui, sans-serif; margin: 0; padding: 40px 20px; }
    .container { max-width: 1000px; margin: 0 auto; }
    h1 { font-size: clamp(28px, 5vw, 48px); font-weight: 900; letter-spacing: -2px; margin: 0 0 8px; }
    h1.issue { color: #B91C1C; }
    .subtext { color: var(--muted); font-weight: 700; margin-bottom: 30px; }
    .card { background: #fff; border-radius: 24px; box-shadow: 0 20px 60px -20px rgba(11,37,69,0.15); overflow: hidden; }
    .grid { display: grid; grid-template-columns: repeat(3, 1fr); }
    .col { padding: 32px; border-right: 1px solid rgba(0,0,0,0.05); }
    .col:last-child { border-right: none; }
    .label { text-transform: uppercase; font-size: 11px; font-weight: 900; letter-spacing: 2px; color: #94a3b8; margin-bottom: 18px; }
    .big { font-size: 36px; font-weight: 900; margin-bottom: 10px; }
    .row { display: flex; justify-content: space-between; padding: 7px 0; border-bottom: 1px solid rgba(0,0,0,0.04); font-size: 14px; font-weight: 700; }
    .row:last-child { border-bottom: none; }
    .pill { padding: 4px 10px; border-radius: 8px; font-size: 11px; font-weight: 900; }
    .ok { background: rgba(19,136,8,0.1); color: var(--green); }
    .err { background: rgba(239,68,68,0.1); color: #EF4444; }
    .footer { background: rgba(11,37,69,0.03); padding: 16px 32px; display: flex; justify-content: space-between; font-family: monospace; font-size: 13px; }
    @media (max-width: 800px) { .grid { grid-template-columns: 1fr; } .col { border-right: none; } }
  </style>
</head>
<body>
  <div class="container">
    <h1 id="headline" class="{{if not .Healthy}}issue{{end}}">{{if .Healthy}}All Systems Operational{{else}}System Issues Detected{{end}}</h1>
    <p class="subtext">HindTrade API · <a href="/health/json">/health/json</a> · <a href="/health/errors">/health/errors</a></p>
    <div class="card">
      <div class="grid">
        <div class="col">
          <div class="label">Traffic</div>
          <div class="big" id="total-req">{{.Health.Traffic.TotalRequests}}</div>
          <div class="row"><span>Successful</span><span>{{.Health.Traffic.SuccessCount}}</span></div>
          <div class="row"><span>Failed</span><span>{{.Health.Traffic.FailedCount}}</span></div>
          <div class="row"><span>Success Rate</span><span>{{.Health.Traffic.SuccessRate}}%</span></div>
          <div class="row"><span>Avg Latency</span><span>{{.Health.Traffic.AvgResponseTime}}ms</span></div>
        </div>
        <div class="col">
          <div class="label">Runtime</div>
          <div class="big">{{.Health.Runtime.UptimeSeconds}}s</div>
          <div class="row"><span>Heap Used</span><span>{{.Health.Runtime.Memory.HeapUsed}} MB</span></div>
          <div class="row"><span>Goroutines</span><span>{{.Health.Runtime.Goroutines}}</span></div>
          <div class="row"><span>Go</span><span>{{.Health.Runtime.GoVersion}}</span></div>
          <div class="row"><span>Platform</span><span>{{.Health.Runtime.Platform}}</span></div>
        </div>
        <div class="col">
          <div class="label">Connectivity</div>
          {{range .Deps}}<div class="row"><span>{{.Name}}</span><span class="pill {{if .OK}}ok{{else}}err{{end}}">{{.Status}} · {{.PingMs}} ms</span></div>
          {{end}}
        </div>
      </div>
      <div class="footer"><span>LAST INBOUND {{.LastMethod}}</span><span>{{.LastPath}}</span></div>
    </div>
  </div>
  <script>
    const initial = {{.InitialJSON}};
    async function tick() {
      try {
        const d = await (await fetch('/health/json')).json();
        document.getElementById('total-req').innerText = d.traffic.totalRequests;
        const hl = document.getElementById('headline');
        hl.innerText = d.status === 'ok' ? 'All Systems Operational' : 'System Issues Detected';
        hl.className = d.status === 'ok' ? '' : 'issue';
      } catch (e) {}
    }
    if (initial && initial.status) { setInterval(tick, 15000); }
  </script>
</body>
</html>`))

// RenderDashboardHTML returns the HTML status page for GET /.
func RenderDashboardHTML(h CollectResult) (string, error) {
	view := dashboardView{Health: h, Healthy: h.Status == "ok", LastMethod: "-", LastPath: "-"}
	for name, d := range h.Dependencies {
		ping := "?"
		if d.PingMs != nil {
			b, _ := json.Marshal(*d.PingMs)
			ping = string(b)
		}
		view.Deps = append(view.Deps, depRow{
			Name:   name,
			Status: d.Status,
			PingMs: ping,
			OK:     d.Status == "connected" || d.Status == "reachable",
		})
	}
	sort.Slice(view.Deps, func(i, j int) bool { return view.Deps[i].Name < view.Deps[j].Name })
	if m, ok := h.Traffic.LastRequest.(map[string]interface{}); ok {
		if v, ok := m["method"].(string); ok {
			view.LastMethod = v
		}
		if v, ok := m["path"].(string); ok {
			view.LastPath = v
		}
	}
	b, err := json.Marshal(h)
	if err != nil {
		return "", err
	}
	view.InitialJSON = template.JS(b)

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
