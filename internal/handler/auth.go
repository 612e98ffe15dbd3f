package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// AuthAPI is the part of service.AuthService used by AuthHandler.
type AuthAPI interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
	Me(ctx context.Context, userID uint64) (*model.User, error)
	Logout(ctx context.Context, jti string, exp time.Time) error
}

// AuthHandler serves /api/auth.
type AuthHandler struct {
	svc     AuthAPI
	timeout time.Duration
}

func NewAuthHandler(svc AuthAPI, timeout time.Duration) *AuthHandler {
	return &AuthHandler{svc: svc, timeout: timeout}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account.  Tokens are only issued by Login.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	u, err := h.svc.Register(ctx, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "user registered", "user": u})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	sess, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	u, err := h.svc.Me(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Logout revokes the access token the request was made with.
func (h *AuthHandler) Logout(c echo.Context) error {
	jti, _ := c.Get(middleware.CtxTokenID).(string)
	exp, _ := c.Get(middleware.CtxTokenExp).(time.Time)
	if jti == "" {
		return unauthorized(c)
	}
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.svc.Logout(ctx, jti, exp); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
