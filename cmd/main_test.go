package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/pulseboard/internal/testbackend"
	"github.com/okian/pulseboard/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func execute(args []string, stdin string) (string, error) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	err := root.Execute()
	return out.String(), err
}

func TestSessionCommands(t *testing.T) {
	convey.Convey("Given a fake backend and an empty session store", t, func() {
		srv := httptest.NewServer(testbackend.New())
		defer srv.Close()

		dir := t.TempDir()
		t.Setenv("PULSEBOARD_BASE_URL", srv.URL+"/api")
		t.Setenv("PULSEBOARD_SESSION_PATH", filepath.Join(dir, "session.db"))
		t.Setenv("PULSEBOARD_ENV_FILE", filepath.Join(dir, "missing.env"))
		t.Setenv("PULSEBOARD_VIEW", "terminal")

		convey.Convey("When status is requested", func() {
			out, err := execute([]string{"status"}, "")

			convey.Convey("Then no session is reported", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "No session.")
			})
		})

		convey.Convey("When the dashboard runs without a session", func() {
			out, err := execute([]string{"run"}, "")

			convey.Convey("Then the authentication notice is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Authentication Required")
				convey.So(out, convey.ShouldContainSubstring, "pulseboard login")
			})
		})

		convey.Convey("When logging in with the right password", func() {
			out, err := execute([]string{"login", "--username", "admin"}, "admin123\n")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Logged in as admin.")

			convey.Convey("Then status reports the user", func() {
				status, err := execute([]string{"status"}, "")
				convey.So(err, convey.ShouldBeNil)
				convey.So(status, convey.ShouldContainSubstring, "Logged in as admin.")
			})

			convey.Convey("Then logout ends the session", func() {
				out, err := execute([]string{"logout"}, "")
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "continue at")

				status, err := execute([]string{"status"}, "")
				convey.So(err, convey.ShouldBeNil)
				convey.So(status, convey.ShouldContainSubstring, "No session.")
			})
		})

		convey.Convey("When logging in with a wrong password", func() {
			_, err := execute([]string{"login", "-u", "admin"}, "nope\n")

			convey.Convey("Then the command fails and nothing is stored", func() {
				convey.So(err, convey.ShouldNotBeNil)
				status, _ := execute([]string{"status"}, "")
				convey.So(status, convey.ShouldContainSubstring, "No session.")
			})
		})
	})
}

func TestReadPassword(t *testing.T) {
	convey.Convey("Given piped input", t, func() {
		convey.Convey("Then one line is read without its newline", func() {
			pw, err := readPassword(strings.NewReader("secret\r\nmore"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(pw, convey.ShouldEqual, "secret")
		})

		convey.Convey("Then a final line without newline is accepted", func() {
			pw, err := readPassword(strings.NewReader("secret"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(pw, convey.ShouldEqual, "secret")
		})

		convey.Convey("Then empty input is an error", func() {
			_, err := readPassword(strings.NewReader(""))
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
