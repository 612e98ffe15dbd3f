package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/utils"
)

const testSecret = "test-secret"

type revokedSet struct {
	ids map[string]bool
	err error
}

func (r revokedSet) IsRevoked(_ context.Context, jti string) (bool, error) {
	return r.ids[jti], r.err
}

func serve(t *testing.T, mw []echo.MiddlewareFunc, auth string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthSetsContext(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "admin", 60)
	require.NoError(t, err)

	rec, c := serve(t, []echo.MiddlewareFunc{JWTAuth(testSecret, nil)}, "Bearer "+tok.Token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(42), c.Get(CtxUserID))
	assert.Equal(t, "admin", c.Get(CtxRole))
	assert.Equal(t, tok.JTI, c.Get(CtxTokenID))
	exp, ok := c.Get(CtxTokenExp).(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, tok.Exp, exp, time.Second)
}

func TestJWTAuthRejects(t *testing.T) {
	rec, _ := serve(t, []echo.MiddlewareFunc{JWTAuth(testSecret, nil)}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(t, []echo.MiddlewareFunc{JWTAuth(testSecret, nil)}, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := utils.NewAccessToken("other-secret", 1, "user", 60)
	require.NoError(t, err)
	rec, _ = serve(t, []echo.MiddlewareFunc{JWTAuth(testSecret, nil)}, "Bearer "+other.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRevokedToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 1, "user", 60)
	require.NoError(t, err)

	rec, _ := serve(t, []echo.MiddlewareFunc{JWTAuth(testSecret, revokedSet{ids: map[string]bool{tok.JTI: true}})}, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"token has been revoked"}`, rec.Body.String())

	// Revocation store down: the signed token is still honoured.
	rec, _ = serve(t, []echo.MiddlewareFunc{JWTAuth(testSecret, revokedSet{err: errors.New("redis down")})}, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	user, err := utils.NewAccessToken(testSecret, 1, "user", 60)
	require.NoError(t, err)
	admin, err := utils.NewAccessToken(testSecret, 2, "admin", 60)
	require.NoError(t, err)
	chain := []echo.MiddlewareFunc{JWTAuth(testSecret, nil), RequireRole("admin")}

	rec, _ := serve(t, chain, "Bearer "+user.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = serve(t, chain, "Bearer "+admin.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/movies")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}
	assert.Equal(t, "rl:ip:10.1.2.3:user:anon:route:GET /api/movies", buildRateKey(cfg, c, testSecret))

	c.Set(CtxUserID, uint64(9))
	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:9", buildRateKey(cfg, c, testSecret))
}

func TestBuildRateKeyReadsBearerBeforeAuth(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "user", 60)
	require.NoError(t, err)
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}

	key := func(auth, secret string) string {
		req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
		if auth != "" {
			req.Header.Set(echo.HeaderAuthorization, auth)
		}
		return buildRateKey(cfg, echo.New().NewContext(req, httptest.NewRecorder()), secret)
	}

	assert.Equal(t, "rl:user:42", key("Bearer "+tok.Token, testSecret))
	assert.Equal(t, "rl:user:anon", key("Bearer "+tok.Token, "other-secret"))
	assert.Equal(t, "rl:user:anon", key("Bearer garbage", testSecret))
	assert.Equal(t, "rl:user:anon", key("", testSecret))
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	rec, _ := serve(t, []echo.MiddlewareFunc{NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, testSecret)}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
