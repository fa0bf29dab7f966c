// Package types contains the display vocabulary shared by the controller and views.
package types

// Slot names a text field of the dashboard.
type Slot string

// Text slots.
const (
	SlotWelcome           Slot = "welcomeUser"
	SlotTotalUsers        Slot = "totalUsers"
	SlotSuccessLogins     Slot = "successLogins"
	SlotAvgHeartRate      Slot = "avgHeartRate"
	SlotTotalLogs         Slot = "totalLogs"
	SlotMinHeartRate      Slot = "minHeartRate"
	SlotAvgHeartRateLarge Slot = "avgHeartRateLarge"
	SlotMaxHeartRate      Slot = "maxHeartRate"
)

// TextSlots lists every text slot in page order.
var TextSlots = []Slot{
	SlotWelcome,
	SlotTotalUsers,
	SlotSuccessLogins,
	SlotAvgHeartRate,
	SlotTotalLogs,
	SlotMinHeartRate,
	SlotAvgHeartRateLarge,
	SlotMaxHeartRate,
}

// ChartSlot names a chart container of the dashboard.
type ChartSlot string

// Chart slots.
const (
	ChartLogins    ChartSlot = "loginChart"
	ChartHeartRate ChartSlot = "heartRateChart"
)

// ChartKind selects the chart renderer.
type ChartKind string

// Chart kinds.
const (
	KindDoughnut ChartKind = "doughnut"
	KindBar      ChartKind = "bar"
)

// ChartSpec is everything a view needs to build a chart instance.
type ChartSpec struct {
	Kind        ChartKind `json:"kind"`
	Title       string    `json:"title"`
	SeriesLabel string    `json:"series_label,omitempty"`
	Labels      []string  `json:"labels"`
	Values      []float64 `json:"values"`
	Unit        string    `json:"unit,omitempty"`
}

// UserCard is one entry of the user roster view. Detail is nil when the
// user's detail request did not produce a snapshot.
type UserCard struct {
	UserID string      `json:"user_id"`
	Detail *CardDetail `json:"detail,omitempty"`
}

// CardDetail holds the populated fields of a user card.
type CardDetail struct {
	Username         string `json:"username"`
	TotalLogs        int    `json:"total_logs"`
	LoginAttempts    int    `json:"login_attempts"`
	SuccessfulLogins int    `json:"successful_logins"`
}

// Notice is a full-page message that replaces the dashboard content.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Link    string `json:"link,omitempty"`
}

// AuthRequiredNotice is shown when no session credential is stored.
func AuthRequiredNotice(loginURL string) Notice {
	return Notice{
		Title:   "Authentication Required",
		Message: "Please login first to access this page.",
		Link:    loginURL,
	}
}
