package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/pulseboard/internal/adapters/backend"
	"github.com/okian/pulseboard/internal/domain/model"
	"github.com/okian/pulseboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestClient_Do(t *testing.T) {
	Convey("Given a backend that echoes request headers", t, func() {
		var got http.Header
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()
		ctx := context.Background()

		Convey("When no token is stored", func() {
			c := backend.New(srv.URL)
			resp, err := c.Do(ctx, http.MethodGet, backend.PathSummary, backend.RequestOptions{})
			So(err, ShouldBeNil)
			_ = resp.Body.Close()

			Convey("Then the Authorization header is omitted entirely", func() {
				_, present := got["Authorization"]
				So(present, ShouldBeFalse)
				So(got.Get("Content-Type"), ShouldEqual, "application/json")
				So(c.HasToken(), ShouldBeFalse)
			})
		})

		Convey("When a token is stored and the caller adds headers", func() {
			c := backend.New(srv.URL+"/", backend.WithToken("abc"))
			headers := http.Header{}
			headers.Set("X-Trace", "1")
			headers.Set("Content-Type", "application/vnd.health+json")
			resp, err := c.Do(ctx, http.MethodGet, backend.PathSummary, backend.RequestOptions{Headers: headers})
			So(err, ShouldBeNil)
			_ = resp.Body.Close()

			Convey("Then caller headers are merged and the bearer token attached", func() {
				So(got.Get("Authorization"), ShouldEqual, "Bearer abc")
				So(got.Get("X-Trace"), ShouldEqual, "1")
				So(got.Get("Content-Type"), ShouldEqual, "application/vnd.health+json")
			})
		})
	})

	Convey("Given an unreachable backend", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		Convey("Then the network error propagates", func() {
			_, err := backend.New(url).Do(context.Background(), http.MethodGet, backend.PathSummary, backend.RequestOptions{})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestFetch(t *testing.T) {
	Convey("Given a backend with scripted responses", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
			writeBody(w, http.StatusOK, `{"status":"success","data":{"total_users":5,"successful_logins":12,"average_heart_rate":72.4,"total_logs":30}}`)
		})
		mux.HandleFunc("/api/heart-rate", func(w http.ResponseWriter, r *http.Request) {
			writeBody(w, http.StatusInternalServerError, `{"status":"error","message":"boom"}`)
		})
		mux.HandleFunc("/api/logins", func(w http.ResponseWriter, r *http.Request) {
			writeBody(w, http.StatusOK, `<html>not json</html>`)
		})
		mux.HandleFunc("/api/users", func(w http.ResponseWriter, r *http.Request) {
			writeBody(w, http.StatusUnauthorized, `{"status":"error","message":"Invalid or expired token"}`)
		})
		mux.HandleFunc("/api/user/", func(w http.ResponseWriter, r *http.Request) {
			writeBody(w, http.StatusOK, `{"status":"success","data":{"username":"`+r.URL.Path[len("/api/user/"):]+`","total_logs":3,"login_attempts":2,"successful_logins":1}}`)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		ctx := context.Background()
		unauthorized := 0
		c := backend.New(srv.URL+"/api",
			backend.WithToken("t"),
			backend.WithUnauthorizedHandler(func(context.Context) { unauthorized++ }))

		Convey("When the response is successful", func() {
			s, err := backend.Fetch[model.Summary](ctx, c, backend.PathSummary)

			Convey("Then the typed snapshot is returned", func() {
				So(err, ShouldBeNil)
				So(s, ShouldResemble, model.Summary{TotalUsers: 5, SuccessfulLogins: 12, AverageHeartRate: 72.4, TotalLogs: 30})
			})
		})

		Convey("When the status is not success", func() {
			_, err := backend.Fetch[model.HeartRate](ctx, c, backend.PathHeartRate)

			Convey("Then ErrStatus is returned", func() {
				So(errors.Is(err, backend.ErrStatus), ShouldBeTrue)
				So(unauthorized, ShouldEqual, 0)
			})
		})

		Convey("When the body is not JSON", func() {
			_, err := backend.Fetch[model.Logins](ctx, c, backend.PathLogins)

			Convey("Then ErrDecode is returned", func() {
				So(errors.Is(err, backend.ErrDecode), ShouldBeTrue)
			})
		})

		Convey("When the backend answers 401", func() {
			_, err := backend.Fetch[model.Roster](ctx, c, backend.PathUsers)

			Convey("Then the unauthorized hook runs once", func() {
				So(errors.Is(err, backend.ErrUnauthorized), ShouldBeTrue)
				So(unauthorized, ShouldEqual, 1)
			})
		})

		Convey("When fetching a user with reserved characters", func() {
			d, err := backend.Fetch[model.UserDetail](ctx, c, backend.UserPath("user 01"))

			Convey("Then the id is path escaped", func() {
				So(err, ShouldBeNil)
				So(d.Username, ShouldEqual, "user 01")
				So(backend.UserPath("a/b"), ShouldEqual, "/user/a%2Fb")
			})
		})
	})
}

func TestLoginLogout(t *testing.T) {
	Convey("Given an auth backend", t, func() {
		var logoutAuth string
		mux := http.NewServeMux()
		mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["password"] != "admin123" {
				writeBody(w, http.StatusUnauthorized, `{"status":"error","message":"Invalid username or password"}`)
				return
			}
			writeBody(w, http.StatusOK, `{"status":"success","data":{"username":"admin","token":"jwt","expires_in_hours":24}}`)
		})
		mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			logoutAuth = r.Header.Get("Authorization")
			writeBody(w, http.StatusOK, `{"status":"success"}`)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()
		ctx := context.Background()

		Convey("When logging in with the right password", func() {
			cred, err := backend.New(srv.URL).Login(ctx, "admin", "admin123")

			Convey("Then a credential is returned", func() {
				So(err, ShouldBeNil)
				So(cred, ShouldResemble, model.Credential{Token: "jwt", Username: "admin"})
			})
		})

		Convey("When logging in with the wrong password", func() {
			_, err := backend.New(srv.URL).Login(ctx, "admin", "nope")

			Convey("Then ErrLogin carries the backend message", func() {
				So(errors.Is(err, backend.ErrLogin), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Invalid username or password")
			})
		})

		Convey("When logging out", func() {
			err := backend.New(srv.URL, backend.WithToken("jwt")).Logout(ctx)

			Convey("Then the bearer token is sent", func() {
				So(err, ShouldBeNil)
				So(logoutAuth, ShouldEqual, "Bearer jwt")
			})
		})
	})
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
