package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// maxBuddyBody caps the size of an upsert request.
const maxBuddyBody = 1 << 20

// BuddyAPI is the part of service.BuddyService used by BuddyHandler.
type BuddyAPI interface {
	Upsert(ctx context.Context, actor service.Actor, inputs []service.BuddyInput) ([]service.UpsertResult, error)
	Groups(ctx context.Context) ([]model.BuddyGroup, error)
	Find(ctx context.Context, actor service.Actor, st model.Showtime, excludeEmail string) ([]model.BuddyView, error)
	Mine(ctx context.Context, actor service.Actor) ([]model.MovieBuddyProfile, error)
	DeleteGroup(ctx context.Context, actor service.Actor, st model.Showtime) (int64, error)
}

// BuddyHandler serves /api/movie-buddies.
type BuddyHandler struct {
	svc     BuddyAPI
	timeout time.Duration
}

func NewBuddyHandler(svc BuddyAPI, timeout time.Duration) *BuddyHandler {
	return &BuddyHandler{svc: svc, timeout: timeout}
}

// Update creates or updates the caller's buddy profiles.  The body is a
// single profile, an array of profiles or {"profiles": [...]}.
func (h *BuddyHandler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBuddyBody))
	if err != nil {
		return badRequest(c, "invalid body")
	}
	inputs, err := decodeBuddyInputs(body)
	if err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	results, err := h.svc.Upsert(ctx, actor, inputs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "movie buddy profiles saved", "results": results})
}

// decodeBuddyInputs accepts the three body shapes of the update endpoint.
func decodeBuddyInputs(body []byte) ([]service.BuddyInput, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}
	if body[0] == '[' {
		var list []service.BuddyInput
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var wrapped struct {
		Profiles []service.BuddyInput `json:"profiles"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Profiles != nil {
		return wrapped.Profiles, nil
	}
	var one service.BuddyInput
	if err := json.Unmarshal(body, &one); err != nil {
		return nil, err
	}
	return []service.BuddyInput{one}, nil
}

// Find lists the other patrons of one showtime, redacted.
func (h *BuddyHandler) Find(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	st := model.Showtime{
		MovieName: c.QueryParam("movieName"),
		MovieDate: c.QueryParam("movieDate"),
		MovieTime: c.QueryParam("movieTime"),
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	views, err := h.svc.Find(ctx, actor, st, c.QueryParam("email"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, views)
}

// All returns every profile grouped by showtime, redacted.
func (h *BuddyHandler) All(c echo.Context) error {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	groups, err := h.svc.Groups(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, groups)
}

func (h *BuddyHandler) Mine(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	ps, err := h.svc.Mine(ctx, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ps)
}

// DeleteGroup removes every profile of the showtime in the path.
func (h *BuddyHandler) DeleteGroup(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	st := model.Showtime{
		MovieName: pathParam(c, "movieName"),
		MovieDate: pathParam(c, "movieDate"),
		MovieTime: pathParam(c, "movieTime"),
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	n, err := h.svc.DeleteGroup(ctx, actor, st)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "group deleted", "deleted": n})
}

// pathParam unescapes a path parameter such as "Inside%20Out".
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
