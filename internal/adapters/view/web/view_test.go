package web_test

import (
	"bytes"
	"testing"

	"github.com/okian/pulseboard/internal/adapters/view/web"
	"github.com/okian/pulseboard/internal/domain/types"
	"github.com/okian/pulseboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func loginSpec(ok, failed float64) types.ChartSpec {
	return types.ChartSpec{
		Kind:   types.KindDoughnut,
		Title:  "Login Outcomes",
		Labels: []string{"Successful", "Failed"},
		Values: []float64{ok, failed},
	}
}

func TestView_Charts(t *testing.T) {
	Convey("Given an empty web view", t, func() {
		v := web.New()

		Convey("When a chart is rebuilt by destroy then create", func() {
			first := v.NewChart(types.ChartLogins, loginSpec(1, 1))
			first.Destroy()
			v.NewChart(types.ChartLogins, loginSpec(3, 1))

			Convey("Then the slot holds exactly one live instance with the latest data", func() {
				So(v.LiveCharts(types.ChartLogins), ShouldEqual, 1)
				st := v.State()
				So(st.Charts[string(types.ChartLogins)].Spec.Values, ShouldResemble, []float64{3, 1})
			})
		})

		Convey("When a chart is created without destroying the previous one", func() {
			v.NewChart(types.ChartLogins, loginSpec(1, 1))
			v.NewChart(types.ChartLogins, loginSpec(2, 1))

			Convey("Then the leak is visible in the live count", func() {
				So(v.LiveCharts(types.ChartLogins), ShouldEqual, 2)
			})
		})

		Convey("When a stale instance is destroyed after a newer one replaced it", func() {
			old := v.NewChart(types.ChartHeartRate, types.ChartSpec{Kind: types.KindBar})
			v.NewChart(types.ChartHeartRate, types.ChartSpec{Kind: types.KindBar, Labels: []string{"u1"}, Values: []float64{70}, Unit: "bpm"})
			old.Destroy()
			old.Destroy()

			Convey("Then the newer instance stays bound to the slot", func() {
				So(v.LiveCharts(types.ChartHeartRate), ShouldEqual, 1)
				So(v.State().Charts[string(types.ChartHeartRate)].Spec.Labels, ShouldResemble, []string{"u1"})
			})
		})
	})
}

func TestView_Render(t *testing.T) {
	Convey("Given a populated web view", t, func() {
		v := web.New(web.WithTitle("Pulse"))
		v.SetText(types.SlotWelcome, "Welcome, admin!")
		v.SetText(types.SlotTotalUsers, "5")
		v.SetText(types.SlotAvgHeartRate, "72.4 bpm")
		v.NewChart(types.ChartLogins, loginSpec(12, 3))
		v.AppendUserCard(types.UserCard{UserID: "u1", Detail: &types.CardDetail{Username: "alice", TotalLogs: 3}})
		v.AppendUserCard(types.UserCard{UserID: "u2"})
		v.Alert("Error loading dashboard data")

		Convey("When the page is rendered", func() {
			var buf bytes.Buffer
			So(v.Render(&buf), ShouldBeNil)
			page := buf.String()

			Convey("Then text slots, charts and cards appear", func() {
				So(page, ShouldContainSubstring, "<title>Pulse</title>")
				So(page, ShouldContainSubstring, "Welcome, admin!")
				So(page, ShouldContainSubstring, `id="totalUsers">5<`)
				So(page, ShouldContainSubstring, "72.4 bpm")
				So(page, ShouldContainSubstring, "echarts")
				So(page, ShouldContainSubstring, "alice")
				So(page, ShouldContainSubstring, "Error loading dashboard data")
			})

			Convey("Then the alert is shown only once", func() {
				var again bytes.Buffer
				So(v.Render(&again), ShouldBeNil)
				So(again.String(), ShouldNotContainSubstring, "Error loading dashboard data")
			})
		})

		Convey("When the roster is cleared", func() {
			v.ClearUsers()

			Convey("Then no cards remain", func() {
				So(v.State().Users, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a view whose content was replaced", t, func() {
		v := web.New()
		v.SetText(types.SlotTotalUsers, "5")
		v.ReplaceContent(types.AuthRequiredNotice("/login"))

		Convey("When the page is rendered", func() {
			var buf bytes.Buffer
			So(v.Render(&buf), ShouldBeNil)

			Convey("Then only the notice is shown", func() {
				So(buf.String(), ShouldContainSubstring, "Authentication Required")
				So(buf.String(), ShouldContainSubstring, `href="/login"`)
				So(buf.String(), ShouldNotContainSubstring, "totalUsers")
				n, ok := v.Notice()
				So(ok, ShouldBeTrue)
				So(n.Title, ShouldEqual, "Authentication Required")
			})
		})
	})
}

func TestView_Navigate(t *testing.T) {
	Convey("Given a view with an opener", t, func() {
		var opened []string
		v := web.New(web.WithOpener(func(url string) { opened = append(opened, url) }))

		Convey("When the dashboard navigates", func() {
			v.Navigate("http://localhost:5000/")

			Convey("Then the target is recorded and opened", func() {
				target, ok := v.Navigated()
				So(ok, ShouldBeTrue)
				So(target, ShouldEqual, "http://localhost:5000/")
				So(opened, ShouldResemble, []string{"http://localhost:5000/"})
				So(v.State().Navigated, ShouldEqual, "http://localhost:5000/")
			})
		})

		Convey("When the busy marker toggles", func() {
			v.SetBusy(true)
			busy := v.State().Busy
			v.SetBusy(false)

			Convey("Then the state follows", func() {
				So(busy, ShouldBeTrue)
				So(v.State().Busy, ShouldBeFalse)
			})
		})

		Convey("When two cycles overlap", func() {
			v.SetBusy(true)
			v.SetBusy(true)
			v.SetBusy(false)
			first := v.State().Busy
			v.SetBusy(false)

			Convey("Then the marker stays on until the last one finishes", func() {
				So(first, ShouldBeTrue)
				So(v.State().Busy, ShouldBeFalse)
				v.SetBusy(false)
				So(v.State().Busy, ShouldBeFalse)
			})
		})
	})
}
