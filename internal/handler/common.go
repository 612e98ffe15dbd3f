// Package handler exposes the HTTP handlers of the cinema API.  Handlers
// bind and validate the request shape, call the service layer and translate
// its errors with respondError.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/logging"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// defaultTimeout bounds store calls when no timeout was configured.
const defaultTimeout = 5 * time.Second

var errNoUser = errors.New("invalid user_id in context")

// getUserID extracts the user id stored by middleware.JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get(middleware.CtxUserID).(type) {
	case uint64:
		if t != 0 {
			return t, nil
		}
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil && n != 0 {
			return n, nil
		}
	}
	return 0, errNoUser
}

// actorFrom builds the service caller from the authenticated request.
func actorFrom(c echo.Context) (service.Actor, error) {
	uid, err := getUserID(c)
	if err != nil {
		return service.Actor{}, err
	}
	role, _ := c.Get(middleware.CtxRole).(string)
	return service.Actor{UserID: uid, Role: role}, nil
}

func withTimeout(c echo.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaultTimeout
	}
	return context.WithTimeout(c.Request().Context(), d)
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
}

// respondError maps service errors onto HTTP statuses.  Unknown errors are
// logged with the request id and reported as a generic 500.
func respondError(c echo.Context, err error) error {
	var verr *service.ValidationError
	var seats *service.SeatConflictError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": verr.Message})
	case errors.As(err, &seats):
		return c.JSON(http.StatusConflict, echo.Map{"message": seats.Error(), "seats": seats.Seats})
	case errors.Is(err, service.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": service.ErrUnauthorized.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		logging.FromContext(c.Request().Context()).WithError(err).Warn("request timed out")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "request timed out"})
	}
	logging.FromContext(c.Request().Context()).WithError(err).Error("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
}
