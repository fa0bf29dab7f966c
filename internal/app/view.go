package app

import "github.com/okian/pulseboard/internal/domain/types"

// View is the display surface the controller writes to. Implementations
// must be safe for concurrent use: slices of one cycle update in parallel.
type View interface {
	SetText(slot types.Slot, value string)
	NewChart(slot types.ChartSlot, spec types.ChartSpec) Chart
	ClearUsers()
	AppendUserCard(card types.UserCard)
	SetBusy(busy bool)
	ReplaceContent(n types.Notice)
	Navigate(target string)
	Alert(msg string)
}

// Chart is a live chart instance owned by a view.
type Chart interface {
	// Destroy releases the instance; it is never used again afterwards.
	Destroy()
}

// LiveCounter is implemented by views that count chart instances not yet
// destroyed.
type LiveCounter interface {
	LiveCharts(slot types.ChartSlot) int
}
