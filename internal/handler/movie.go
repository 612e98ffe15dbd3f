package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// MovieAPI is the part of service.MovieService used by MovieHandler.
type MovieAPI interface {
	List(ctx context.Context, genre string) ([]model.Movie, error)
	Get(ctx context.Context, id uint64) (*model.Movie, error)
	Create(ctx context.Context, in service.MovieInput) (*model.Movie, error)
	Update(ctx context.Context, id uint64, in service.MovieInput) (*model.Movie, error)
	Delete(ctx context.Context, id uint64) error
}

// Purger drops cached catalog responses after a write.
type Purger interface {
	Purge(ctx context.Context)
}

// MovieHandler serves /api/movies.  Reads are public, writes admin only.
type MovieHandler struct {
	svc     MovieAPI
	cache   Purger
	timeout time.Duration
}

// NewMovieHandler returns a MovieHandler.  cache may be nil.
func NewMovieHandler(svc MovieAPI, cache Purger, timeout time.Duration) *MovieHandler {
	return &MovieHandler{svc: svc, cache: cache, timeout: timeout}
}

func (h *MovieHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	ms, err := h.svc.List(ctx, c.QueryParam("genre"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ms)
}

func (h *MovieHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	m, err := h.svc.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MovieHandler) Create(c echo.Context) error {
	var in service.MovieInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	m, err := h.svc.Create(ctx, in)
	if err != nil {
		return respondError(c, err)
	}
	h.purge(ctx)
	return c.JSON(http.StatusCreated, m)
}

func (h *MovieHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	var in service.MovieInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	m, err := h.svc.Update(ctx, id, in)
	if err != nil {
		return respondError(c, err)
	}
	h.purge(ctx)
	return c.JSON(http.StatusOK, m)
}

func (h *MovieHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	h.purge(ctx)
	return c.NoContent(http.StatusNoContent)
}

func (h *MovieHandler) purge(ctx context.Context) {
	if h.cache != nil {
		h.cache.Purge(ctx)
	}
}
