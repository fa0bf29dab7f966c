package session_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/pulseboard/internal/adapters/session"
	"github.com/okian/pulseboard/internal/domain/model"
	"github.com/okian/pulseboard/internal/domain/types"
	"github.com/okian/pulseboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type recordingView struct {
	notices []types.Notice
}

func (v *recordingView) ReplaceContent(n types.Notice) { v.notices = append(v.notices, n) }

func TestGuard(t *testing.T) {
	Convey("Given a guard over an empty store", t, func() {
		ctx := context.Background()
		store := session.NewMemoryStore()
		guard := session.NewGuard(store, session.WithLoginURL("http://localhost:5000/"))
		view := &recordingView{}

		Convey("Then there is no session", func() {
			So(guard.HasSession(ctx), ShouldBeFalse)
			So(guard.Credential(ctx), ShouldResemble, model.Credential{})
		})

		Convey("When the session is required", func() {
			ok := guard.RequireSession(ctx, view)

			Convey("Then the page is replaced by the authentication notice", func() {
				So(ok, ShouldBeFalse)
				So(view.notices, ShouldHaveLength, 1)
				So(view.notices[0].Title, ShouldEqual, "Authentication Required")
				So(view.notices[0].Link, ShouldEqual, "http://localhost:5000/")
			})
		})

		Convey("When an empty token is stored", func() {
			So(store.Set(ctx, session.KeyToken, ""), ShouldBeNil)

			Convey("Then it does not count as a session", func() {
				So(guard.HasSession(ctx), ShouldBeFalse)
			})
		})

		Convey("When a credential is saved", func() {
			So(guard.Save(ctx, model.Credential{Token: "abc", Username: "admin"}), ShouldBeNil)

			Convey("Then the session is present and required passes without side effects", func() {
				So(guard.HasSession(ctx), ShouldBeTrue)
				So(guard.RequireSession(ctx, view), ShouldBeTrue)
				So(view.notices, ShouldBeEmpty)
				So(guard.Credential(ctx), ShouldResemble, model.Credential{Token: "abc", Username: "admin"})
			})

			Convey("And clearing removes both token and display name", func() {
				guard.Clear(ctx)
				So(guard.HasSession(ctx), ShouldBeFalse)
				_, err := store.Get(ctx, session.KeyUsername)
				So(errors.Is(err, session.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When saving a credential without a token", func() {
			err := guard.Save(ctx, model.Credential{Username: "admin"})

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
				So(guard.HasSession(ctx), ShouldBeFalse)
			})
		})
	})
}

func TestSQLStore(t *testing.T) {
	Convey("Given a sqlite session store", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "state", "session.db")
		store, err := session.OpenSQLStore(path, false)
		So(err, ShouldBeNil)
		defer func() { _ = store.Close() }()

		Convey("When reading a missing key", func() {
			_, err := store.Get(ctx, session.KeyToken)

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, session.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a key is written twice", func() {
			So(store.Set(ctx, session.KeyToken, "first"), ShouldBeNil)
			So(store.Set(ctx, session.KeyToken, "second"), ShouldBeNil)

			Convey("Then the last value wins", func() {
				v, err := store.Get(ctx, session.KeyToken)
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "second")
			})
		})

		Convey("When the store is reopened", func() {
			So(store.Set(ctx, session.KeyUsername, "user01"), ShouldBeNil)
			So(store.Close(), ShouldBeNil)

			reopened, err := session.OpenSQLStore(path, false)
			So(err, ShouldBeNil)
			store = reopened

			Convey("Then the value survived", func() {
				v, err := reopened.Get(ctx, session.KeyUsername)
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "user01")
			})
		})

		Convey("When keys are deleted", func() {
			So(store.Set(ctx, session.KeyToken, "t"), ShouldBeNil)
			So(store.Set(ctx, session.KeyUsername, "u"), ShouldBeNil)
			So(store.Delete(ctx, session.KeyToken, session.KeyUsername), ShouldBeNil)

			Convey("Then both are gone", func() {
				_, err := store.Get(ctx, session.KeyToken)
				So(errors.Is(err, session.ErrNotFound), ShouldBeTrue)
				_, err = store.Get(ctx, session.KeyUsername)
				So(errors.Is(err, session.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
