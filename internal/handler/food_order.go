package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// FoodAPI is the part of service.FoodService used by FoodHandler.
type FoodAPI interface {
	Place(ctx context.Context, actor service.Actor, in service.FoodOrderInput) (*model.FoodOrder, error)
	List(ctx context.Context, actor service.Actor) ([]model.FoodOrder, error)
	Get(ctx context.Context, actor service.Actor, id uint64) (*model.FoodOrder, error)
	Cancel(ctx context.Context, actor service.Actor, id uint64) error
}

// FoodHandler serves /api/food-orders.
type FoodHandler struct {
	svc     FoodAPI
	timeout time.Duration
}

func NewFoodHandler(svc FoodAPI, timeout time.Duration) *FoodHandler {
	return &FoodHandler{svc: svc, timeout: timeout}
}

func (h *FoodHandler) Place(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	var in service.FoodOrderInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	o, err := h.svc.Place(ctx, actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *FoodHandler) List(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	orders, err := h.svc.List(ctx, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *FoodHandler) Get(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	o, err := h.svc.Get(ctx, actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *FoodHandler) Cancel(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.svc.Cancel(ctx, actor, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
