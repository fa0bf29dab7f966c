// Package web renders the dashboard as an HTML page with go-echarts charts.
package web

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"sync"

	"github.com/okian/pulseboard/internal/adapters/view"
	"github.com/okian/pulseboard/internal/app"
	"github.com/okian/pulseboard/internal/domain/types"
	"github.com/okian/pulseboard/pkg/logger"
)

const maxAlerts = 10

// View keeps the dashboard state in memory and renders it on request.
type View struct {
	mu sync.RWMutex

	texts  map[types.Slot]string
	charts map[types.ChartSlot]*chart
	live   map[types.ChartSlot]int
	users  []types.UserCard
	busy   int
	notice *types.Notice
	target string
	alerts []string
	title  string
	opener view.Opener
	logger logger.Logger
}

// Option applies a configuration option to the View.
type Option func(*View)

// WithOpener sets the function called when the dashboard navigates away.
func WithOpener(o view.Opener) Option {
	return func(v *View) {
		v.opener = o
	}
}

// WithTitle sets the page title.
func WithTitle(t string) Option {
	return func(v *View) {
		if t != "" {
			v.title = t
		}
	}
}

// WithLogger sets a custom logger for the view.
func WithLogger(l logger.Logger) Option {
	return func(v *View) {
		if l != nil {
			v.logger = l
		}
	}
}

// New creates an empty web View.
func New(opts ...Option) *View {
	v := &View{
		texts:  make(map[types.Slot]string),
		charts: make(map[types.ChartSlot]*chart),
		live:   make(map[types.ChartSlot]int),
		title:  "Health Dashboard",
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = logger.Named("web_view")
	}
	return v
}

// SetText sets a text slot.
func (v *View) SetText(slot types.Slot, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.texts[slot] = value
}

// NewChart builds a chart instance and binds it to slot.
func (v *View) NewChart(slot types.ChartSlot, spec types.ChartSpec) app.Chart {
	c := &chart{view: v, slot: slot, spec: spec, renderer: buildRenderer(spec)}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.charts[slot] = c
	v.live[slot]++
	return c
}

func (v *View) release(c *chart) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.live[c.slot] > 0 {
		v.live[c.slot]--
	}
	if v.charts[c.slot] == c {
		delete(v.charts, c.slot)
	}
}

// LiveCharts reports how many undestroyed instances slot currently holds.
func (v *View) LiveCharts(slot types.ChartSlot) int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.live[slot]
}

// ClearUsers empties the roster.
func (v *View) ClearUsers() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.users = nil
}

// AppendUserCard adds a card at the end of the roster.
func (v *View) AppendUserCard(card types.UserCard) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.users = append(v.users, card)
}

// SetBusy marks a cycle as started or finished. The loading marker stays
// on until every started cycle has finished.
func (v *View) SetBusy(busy bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if busy {
		v.busy++
		return
	}
	if v.busy > 0 {
		v.busy--
	}
}

// ReplaceContent swaps the whole page for n.
func (v *View) ReplaceContent(n types.Notice) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notice = &n
}

// Navigate records target and hands it to the opener, if any.
func (v *View) Navigate(target string) {
	v.mu.Lock()
	v.target = target
	opener := v.opener
	v.mu.Unlock()

	v.logger.Info(context.Background(), "dashboard navigated", logger.String("target", target))
	if opener != nil {
		opener(target)
	}
}

// Alert queues a message shown on the next render. Only the latest
// alerts are kept.
func (v *View) Alert(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alerts = append(v.alerts, msg)
	if len(v.alerts) > maxAlerts {
		v.alerts = v.alerts[len(v.alerts)-maxAlerts:]
	}
}

// ChartState describes a chart slot in a State snapshot.
type ChartState struct {
	Spec types.ChartSpec `json:"spec"`
	Live int             `json:"live"`
}

// State is a point-in-time copy of the view.
type State struct {
	Title     string                `json:"title"`
	Texts     map[string]string     `json:"texts"`
	Charts    map[string]ChartState `json:"charts"`
	Users     []types.UserCard      `json:"users"`
	Busy      bool                  `json:"busy"`
	Notice    *types.Notice         `json:"notice,omitempty"`
	Navigated string                `json:"navigated,omitempty"`
	Alerts    []string              `json:"alerts,omitempty"`
}

// State returns a copy of the current view state.
func (v *View) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s := State{
		Title:     v.title,
		Texts:     make(map[string]string, len(v.texts)),
		Charts:    make(map[string]ChartState, len(v.charts)),
		Users:     append([]types.UserCard(nil), v.users...),
		Busy:      v.busy > 0,
		Navigated: v.target,
		Alerts:    append([]string(nil), v.alerts...),
	}
	for slot, text := range v.texts {
		s.Texts[string(slot)] = text
	}
	for slot, c := range v.charts {
		s.Charts[string(slot)] = ChartState{Spec: c.spec, Live: v.live[slot]}
	}
	if v.notice != nil {
		n := *v.notice
		s.Notice = &n
	}
	return s
}

// Notice returns the replacement notice, if content was replaced.
func (v *View) Notice() (types.Notice, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.notice == nil {
		return types.Notice{}, false
	}
	return *v.notice, true
}

// Navigated returns the navigation target, if the dashboard left.
func (v *View) Navigated() (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.target, v.target != ""
}

type pageCard struct {
	types.UserCard
	Populated bool
}

type pageData struct {
	Title   string
	Welcome string
	Stats   []pageStat
	Charts  []template.HTML
	Users   []pageCard
	Busy    bool
	Alerts  []string
	Notice  *types.Notice
}

type pageStat struct {
	ID    string
	Label string
	Value string
}

var statLabels = map[types.Slot]string{
	types.SlotTotalUsers:        "Total Users",
	types.SlotSuccessLogins:     "Successful Logins",
	types.SlotAvgHeartRate:      "Average Heart Rate",
	types.SlotTotalLogs:         "Total Logs",
	types.SlotMinHeartRate:      "Min Heart Rate",
	types.SlotAvgHeartRateLarge: "Avg Heart Rate",
	types.SlotMaxHeartRate:      "Max Heart Rate",
}

// Render writes the dashboard page. Pending alerts are shown once.
func (v *View) Render(w io.Writer) error {
	v.mu.Lock()
	data := pageData{
		Title:   v.title,
		Welcome: v.texts[types.SlotWelcome],
		Busy:    v.busy > 0,
		Alerts:  v.alerts,
	}
	v.alerts = nil
	if v.notice != nil {
		n := *v.notice
		data.Notice = &n
	}
	for _, slot := range types.TextSlots {
		if slot == types.SlotWelcome {
			continue
		}
		value, ok := v.texts[slot]
		if !ok {
			value = "-"
		}
		data.Stats = append(data.Stats, pageStat{ID: string(slot), Label: statLabels[slot], Value: value})
	}
	for _, card := range v.users {
		data.Users = append(data.Users, pageCard{UserCard: card, Populated: card.Detail != nil})
	}
	live := make([]*chart, 0, len(v.charts))
	for _, slot := range []types.ChartSlot{types.ChartLogins, types.ChartHeartRate} {
		if c, ok := v.charts[slot]; ok {
			live = append(live, c)
		}
	}
	v.mu.Unlock()

	for _, c := range live {
		snippet, err := c.html()
		if err != nil {
			return fmt.Errorf("render %s: %w", c.slot, err)
		}
		data.Charts = append(data.Charts, template.HTML(snippet)) //nolint:gosec // generated by go-echarts
	}

	return pageTemplate.Execute(w, data)
}

var pageTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: sans-serif; margin: 2em; background: #f5f6fa; }
    .stats { display: flex; flex-wrap: wrap; gap: 1em; }
    .stat { background: #fff; padding: 1em; border-radius: 8px; min-width: 10em; }
    .stat .value { font-size: 1.6em; font-weight: bold; }
    .charts { display: flex; flex-wrap: wrap; gap: 1em; margin-top: 1em; }
    .users { display: flex; flex-wrap: wrap; gap: 1em; margin-top: 1em; }
    .user-card { background: #fff; padding: 1em; border-radius: 8px; min-width: 12em; }
    .alert { background: #f8d7da; color: #842029; padding: 0.8em; border-radius: 6px; }
    .busy { color: #667eea; }
  </style>
</head>
<body>
{{- if .Notice}}
  <div class="notice">
    <h2>{{.Notice.Title}}</h2>
    <p>{{.Notice.Message}}</p>
    {{- if .Notice.Link}}<a href="{{.Notice.Link}}">Go to Login</a>{{end}}
  </div>
{{- else}}
  <header>
    <h1 id="welcomeUser">{{.Welcome}}</h1>
    <form method="post" action="/logout"><button type="submit">Logout</button></form>
    {{- if .Busy}}<p class="busy">Loading...</p>{{end}}
  </header>
  {{- range .Alerts}}
  <div class="alert">{{.}}</div>
  {{- end}}
  <section class="stats">
  {{- range .Stats}}
    <div class="stat"><div class="label">{{.Label}}</div><div class="value" id="{{.ID}}">{{.Value}}</div></div>
  {{- end}}
  </section>
  <section class="charts">
  {{- range .Charts}}
    <div class="chart">{{.}}</div>
  {{- end}}
  </section>
  <section class="users" id="usersList">
  {{- range .Users}}
    <div class="user-card">
    {{- if .Populated}}
      <h3>{{.Detail.Username}}</h3>
      <p>Total Logs: {{.Detail.TotalLogs}}</p>
      <p>Login Attempts: {{.Detail.LoginAttempts}}</p>
      <p>Successful Logins: {{.Detail.SuccessfulLogins}}</p>
    {{- end}}
    </div>
  {{- end}}
  </section>
{{- end}}
</body>
</html>
`))
