package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// BookingAPI is the part of service.BookingService used by BookingHandler.
type BookingAPI interface {
	OccupiedSeats(ctx context.Context, q service.SeatQuery) ([]string, error)
	Create(ctx context.Context, actor service.Actor, in service.BookingInput) (*model.Booking, error)
	Get(ctx context.Context, actor service.Actor, id uint64) (*model.Booking, error)
	List(ctx context.Context, actor service.Actor) ([]model.Booking, error)
	Update(ctx context.Context, actor service.Actor, id uint64, in service.BookingInput) (*model.Booking, error)
	Delete(ctx context.Context, actor service.Actor, id uint64) error
}

// BookingHandler serves /api/bookings.
type BookingHandler struct {
	svc     BookingAPI
	timeout time.Duration
}

func NewBookingHandler(svc BookingAPI, timeout time.Duration) *BookingHandler {
	return &BookingHandler{svc: svc, timeout: timeout}
}

// BookedSeats handles GET /api/bookings/booked-seats.  date and time are
// required; movieId or movieName narrow the query to one movie and
// excludeBookingId leaves out the seats of the booking being edited.
func (h *BookingHandler) BookedSeats(c echo.Context) error {
	q := service.SeatQuery{
		MovieName: strings.TrimSpace(c.QueryParam("movieName")),
		MovieDate: firstParam(c, "date", "movieDate"),
		MovieTime: firstParam(c, "time", "movieTime"),
	}
	if raw := c.QueryParam("movieId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return badRequest(c, "invalid movieId")
		}
		q.MovieID = &id
	}
	if raw := c.QueryParam("excludeBookingId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, "invalid excludeBookingId")
		}
		q.ExcludeBookingID = &id
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	seats, err := h.svc.OccupiedSeats(ctx, q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookedSeats": seats})
}

func (h *BookingHandler) Create(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	var in service.BookingInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	b, err := h.svc.Create(ctx, actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// List returns the caller's bookings, or every booking for an admin.
func (h *BookingHandler) List(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	bs, err := h.svc.List(ctx, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, bs)
}

func (h *BookingHandler) Get(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	b, err := h.svc.Get(ctx, actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Update replaces the showtime, seats and contact details of a booking.
func (h *BookingHandler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	var in service.BookingInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	b, err := h.svc.Update(ctx, actor, id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Delete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.svc.Delete(ctx, actor, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// firstParam returns the first non-empty query parameter among names.
func firstParam(c echo.Context, names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(c.QueryParam(n)); v != "" {
			return v
		}
	}
	return ""
}
