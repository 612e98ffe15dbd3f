package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service"
)

type fakeBookings struct {
	occupied func(service.SeatQuery) ([]string, error)
	create   func(service.Actor, service.BookingInput) (*model.Booking, error)
	get      func(service.Actor, uint64) (*model.Booking, error)
	list     func(service.Actor) ([]model.Booking, error)
	update   func(service.Actor, uint64, service.BookingInput) (*model.Booking, error)
	del      func(service.Actor, uint64) error
}

func (f *fakeBookings) OccupiedSeats(_ context.Context, q service.SeatQuery) ([]string, error) {
	return f.occupied(q)
}
func (f *fakeBookings) Create(_ context.Context, a service.Actor, in service.BookingInput) (*model.Booking, error) {
	return f.create(a, in)
}
func (f *fakeBookings) Get(_ context.Context, a service.Actor, id uint64) (*model.Booking, error) {
	return f.get(a, id)
}
func (f *fakeBookings) List(_ context.Context, a service.Actor) ([]model.Booking, error) {
	return f.list(a)
}
func (f *fakeBookings) Update(_ context.Context, a service.Actor, id uint64, in service.BookingInput) (*model.Booking, error) {
	return f.update(a, id, in)
}
func (f *fakeBookings) Delete(_ context.Context, a service.Actor, id uint64) error {
	return f.del(a, id)
}

type fakeBuddies struct {
	upsert      func(service.Actor, []service.BuddyInput) ([]service.UpsertResult, error)
	groups      func() ([]model.BuddyGroup, error)
	find        func(service.Actor, model.Showtime, string) ([]model.BuddyView, error)
	mine        func(service.Actor) ([]model.MovieBuddyProfile, error)
	deleteGroup func(service.Actor, model.Showtime) (int64, error)
}

func (f *fakeBuddies) Upsert(_ context.Context, a service.Actor, in []service.BuddyInput) ([]service.UpsertResult, error) {
	return f.upsert(a, in)
}
func (f *fakeBuddies) Groups(context.Context) ([]model.BuddyGroup, error) { return f.groups() }
func (f *fakeBuddies) Find(_ context.Context, a service.Actor, st model.Showtime, email string) ([]model.BuddyView, error) {
	return f.find(a, st, email)
}
func (f *fakeBuddies) Mine(_ context.Context, a service.Actor) ([]model.MovieBuddyProfile, error) {
	return f.mine(a)
}
func (f *fakeBuddies) DeleteGroup(_ context.Context, a service.Actor, st model.Showtime) (int64, error) {
	return f.deleteGroup(a, st)
}

type fakeAuth struct {
	register func(service.RegisterInput) (*model.User, error)
	login    func(email, password string) (*service.Session, error)
	me       func(uint64) (*model.User, error)
	logout   func(jti string, exp time.Time) error
}

func (f *fakeAuth) Register(_ context.Context, in service.RegisterInput) (*model.User, error) {
	return f.register(in)
}
func (f *fakeAuth) Login(_ context.Context, email, password string) (*service.Session, error) {
	return f.login(email, password)
}
func (f *fakeAuth) Me(_ context.Context, id uint64) (*model.User, error) { return f.me(id) }
func (f *fakeAuth) Logout(_ context.Context, jti string, exp time.Time) error {
	return f.logout(jti, exp)
}

// call runs h against a request built from method, target and body.  When
// actor is non-nil the context values JWTAuth would set are populated.
// Path parameters are given as name/value pairs.
func call(h echo.HandlerFunc, method, target, body string, actor *service.Actor, params ...string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actor != nil {
		c.Set(middleware.CtxUserID, actor.UserID)
		c.Set(middleware.CtxRole, actor.Role)
	}
	if len(params) > 0 {
		var names, values []string
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

var (
	patron = &service.Actor{UserID: 7, Role: model.RoleUser}
	admin  = &service.Actor{UserID: 1, Role: model.RoleAdmin}
)

