// Package terminal renders the dashboard as text frames on a writer.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/TwiN/go-color"
	"golang.org/x/term"

	"github.com/okian/pulseboard/internal/app"
	"github.com/okian/pulseboard/internal/domain/model"
	"github.com/okian/pulseboard/internal/domain/types"
)

const (
	barWidth    = 30
	clearScreen = "\033[H\033[2J"
)

var statLabels = []struct {
	slot  types.Slot
	label string
}{
	{types.SlotTotalUsers, "Total users"},
	{types.SlotSuccessLogins, "Successful logins"},
	{types.SlotAvgHeartRate, "Average heart rate"},
	{types.SlotTotalLogs, "Total logs"},
	{types.SlotMinHeartRate, "Min heart rate"},
	{types.SlotAvgHeartRateLarge, "Avg heart rate"},
	{types.SlotMaxHeartRate, "Max heart rate"},
}

// View writes a full frame every time a refresh cycle completes.
type View struct {
	mu  sync.Mutex
	out io.Writer

	colored bool
	clear   bool

	texts  map[types.Slot]string
	charts map[types.ChartSlot]*chart
	live   map[types.ChartSlot]int
	users  []types.UserCard
	busy   int
	frames int
}

// Option applies a configuration option to the View.
type Option func(*View)

// WithColor forces colored output on or off.
func WithColor(on bool) Option {
	return func(v *View) {
		v.colored = on
	}
}

// WithClearScreen clears the screen before each frame.
func WithClearScreen(on bool) Option {
	return func(v *View) {
		v.clear = on
	}
}

// New creates a View writing to out. Color and screen clearing are
// enabled when out is a terminal.
func New(out io.Writer, opts ...Option) *View {
	v := &View{
		out:    out,
		texts:  make(map[types.Slot]string),
		charts: make(map[types.ChartSlot]*chart),
		live:   make(map[types.ChartSlot]int),
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		v.colored = true
		v.clear = true
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

type chart struct {
	view      *View
	slot      types.ChartSlot
	spec      types.ChartSpec
	destroyed atomic.Bool
}

func (c *chart) Destroy() {
	if !c.destroyed.CompareAndSwap(false, true) {
		return
	}
	c.view.mu.Lock()
	defer c.view.mu.Unlock()
	c.view.live[c.slot]--
	if c.view.charts[c.slot] == c {
		delete(c.view.charts, c.slot)
	}
}

// SetText sets a text slot.
func (v *View) SetText(slot types.Slot, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.texts[slot] = value
}

// NewChart binds a text chart to slot.
func (v *View) NewChart(slot types.ChartSlot, spec types.ChartSpec) app.Chart {
	c := &chart{view: v, slot: slot, spec: spec}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.charts[slot] = c
	v.live[slot]++
	return c
}

// LiveCharts reports how many instances bound to slot are not destroyed.
func (v *View) LiveCharts(slot types.ChartSlot) int {
	v.mu.Lock()
	defer v.mu.Unlock()
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

// SetBusy tracks in-flight cycles. A frame is written whenever the last
// in-flight cycle finishes.
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
	if v.busy == 0 {
		v.writeFrame()
	}
}

// ReplaceContent prints the notice in place of the dashboard.
func (v *View) ReplaceContent(n types.Notice) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var b strings.Builder
	b.WriteString(v.paint(color.Bold+color.Yellow, n.Title) + "\n")
	b.WriteString(n.Message + "\n")
	if n.Link != "" {
		b.WriteString("Login: " + v.paint(color.Cyan, n.Link) + "\n")
	}
	v.write(b.String())
}

// Navigate prints the navigation target.
func (v *View) Navigate(target string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.write("Session ended, continue at " + v.paint(color.Cyan, target) + "\n")
}

// Alert prints msg immediately.
func (v *View) Alert(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.write(v.paint(color.Red, "! "+msg) + "\n")
}

// Frames reports how many full frames were written.
func (v *View) Frames() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frames
}

func (v *View) writeFrame() {
	var b strings.Builder
	if v.clear {
		b.WriteString(clearScreen)
	}
	if welcome, ok := v.texts[types.SlotWelcome]; ok {
		b.WriteString(v.paint(color.Bold, welcome) + "\n\n")
	}
	for _, s := range statLabels {
		value, ok := v.texts[s.slot]
		if !ok {
			value = "-"
		}
		fmt.Fprintf(&b, "%-20s %s\n", s.label, v.paint(color.Green, value))
	}
	for _, slot := range []types.ChartSlot{types.ChartLogins, types.ChartHeartRate} {
		if c, ok := v.charts[slot]; ok {
			b.WriteString("\n")
			v.drawChart(&b, c.spec)
		}
	}
	if len(v.users) > 0 {
		b.WriteString("\n" + v.paint(color.Bold, "Users") + "\n")
	}
	for _, card := range v.users {
		if card.Detail == nil {
			b.WriteString("  (no data)\n")
			continue
		}
		d := card.Detail
		fmt.Fprintf(&b, "  %-16s logs %-5d attempts %-5d successful %d\n",
			d.Username, d.TotalLogs, d.LoginAttempts, d.SuccessfulLogins)
	}
	v.write(b.String())
	v.frames++
}

// drawChart renders spec as horizontal bars scaled to the largest value.
func (v *View) drawChart(b *strings.Builder, spec types.ChartSpec) {
	b.WriteString(v.paint(color.Bold, spec.Title) + "\n")
	maxValue := 0.0
	for _, value := range spec.Values {
		if value > maxValue {
			maxValue = value
		}
	}
	width := 0
	for _, label := range spec.Labels {
		if len(label) > width {
			width = len(label)
		}
	}
	for i, value := range spec.Values {
		label := ""
		if i < len(spec.Labels) {
			label = spec.Labels[i]
		}
		n := 0
		if maxValue > 0 {
			n = int(value / maxValue * barWidth)
		}
		text := model.FormatNumber(value)
		if spec.Unit != "" {
			text += " " + spec.Unit
		}
		fmt.Fprintf(b, "  %-*s %s %s\n", width, label, v.paint(color.Blue, strings.Repeat("#", n)), text)
	}
}

func (v *View) paint(c, s string) string {
	if !v.colored {
		return s
	}
	return color.Ize(c, s)
}

func (v *View) write(s string) {
	_, _ = io.WriteString(v.out, s)
}

