package terminal_test

import (
	"bytes"
	"testing"

	"github.com/okian/pulseboard/internal/adapters/view/terminal"
	"github.com/okian/pulseboard/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestView_Frame(t *testing.T) {
	Convey("Given a plain terminal view", t, func() {
		var out bytes.Buffer
		v := terminal.New(&out)

		Convey("When a cycle fills the slots and finishes", func() {
			v.SetBusy(true)
			v.SetText(types.SlotWelcome, "Welcome, admin!")
			v.SetText(types.SlotTotalUsers, "5")
			v.SetText(types.SlotAvgHeartRate, "72.4 bpm")
			v.NewChart(types.ChartHeartRate, types.ChartSpec{
				Kind:   types.KindBar,
				Title:  "User-wise Heart Rate",
				Labels: []string{"u1", "u2"},
				Values: []float64{80, 40},
				Unit:   "bpm",
			})
			v.AppendUserCard(types.UserCard{UserID: "u1", Detail: &types.CardDetail{Username: "alice", TotalLogs: 3}})
			v.AppendUserCard(types.UserCard{UserID: "u2"})
			So(out.Len(), ShouldEqual, 0)
			v.SetBusy(false)

			Convey("Then one uncolored frame is written", func() {
				frame := out.String()
				So(v.Frames(), ShouldEqual, 1)
				So(frame, ShouldContainSubstring, "Welcome, admin!")
				So(frame, ShouldContainSubstring, "72.4 bpm")
				So(frame, ShouldContainSubstring, "User-wise Heart Rate")
				So(frame, ShouldContainSubstring, "80 bpm")
				So(frame, ShouldContainSubstring, "alice")
				So(frame, ShouldContainSubstring, "(no data)")
				So(frame, ShouldNotContainSubstring, "\033[")
			})
		})

		Convey("When two cycles overlap", func() {
			v.SetBusy(true)
			v.SetBusy(true)
			v.SetBusy(false)
			first := v.Frames()
			v.SetBusy(false)

			Convey("Then the frame waits for the last one", func() {
				So(first, ShouldEqual, 0)
				So(v.Frames(), ShouldEqual, 1)
			})
		})

		Convey("When a destroyed chart is replaced", func() {
			old := v.NewChart(types.ChartLogins, types.ChartSpec{Title: "old", Labels: []string{"Successful"}, Values: []float64{1}})
			old.Destroy()
			v.NewChart(types.ChartLogins, types.ChartSpec{Title: "Login Outcomes", Labels: []string{"Successful"}, Values: []float64{2}})
			v.SetBusy(false)

			Convey("Then only the new chart is drawn", func() {
				So(out.String(), ShouldContainSubstring, "Login Outcomes")
				So(out.String(), ShouldNotContainSubstring, "old\n")
				So(v.LiveCharts(types.ChartLogins), ShouldEqual, 1)
			})
		})

		Convey("When a chart is created without destroying the previous one", func() {
			v.NewChart(types.ChartLogins, types.ChartSpec{Title: "first"})
			v.NewChart(types.ChartLogins, types.ChartSpec{Title: "second"})

			Convey("Then both instances count as live", func() {
				So(v.LiveCharts(types.ChartLogins), ShouldEqual, 2)
			})
		})
	})
}

func TestView_Messages(t *testing.T) {
	Convey("Given a colored terminal view", t, func() {
		var out bytes.Buffer
		v := terminal.New(&out, terminal.WithColor(true))

		Convey("When content is replaced, an alert raised and the view navigates", func() {
			v.ReplaceContent(types.AuthRequiredNotice("http://localhost:5000/"))
			v.Alert("Error loading dashboard data")
			v.Navigate("http://localhost:5000/")

			Convey("Then every message is printed with color codes", func() {
				s := out.String()
				So(s, ShouldContainSubstring, "Authentication Required")
				So(s, ShouldContainSubstring, "Please login first to access this page.")
				So(s, ShouldContainSubstring, "Error loading dashboard data")
				So(s, ShouldContainSubstring, "continue at")
				So(s, ShouldContainSubstring, "\033[")
			})
		})
	})
}
