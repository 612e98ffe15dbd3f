package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`[{"id":1}]`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, `[{"id":1}]`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

func TestResponseCacheKeyIsGroupScoped(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Prefix: "cache"}, nil, "movies")
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/api/movies?genre=drama", nil), httptest.NewRecorder())
	assert.Regexp(t, `^cache:movies:[0-9a-f]{40}$`, rc.key(c))
}

func TestResponseCacheServesHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cfg := config.CacheConfig{Enabled: true, Prefix: "cache", TTL: time.Minute, Methods: map[string]bool{"GET": true}}
	rc := NewResponseCache(cfg, db, "movies")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	payload, err := encodePayload(http.StatusOK, http.Header{"Content-Type": []string{"application/json"}}, []byte(`[]`))
	require.NoError(t, err)
	mock.ExpectGet(rc.key(c)).SetVal(string(payload))

	called := false
	h := rc.Middleware()(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))

	assert.False(t, called)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, `[]`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResponseCachePurge(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Prefix: "cache"}, db, "movies")

	mock.ExpectScan(0, "cache:movies:*", 100).SetVal([]string{"cache:movies:a", "cache:movies:b"}, 0)
	mock.ExpectDel("cache:movies:a", "cache:movies:b").SetVal(2)

	rc.Purge(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.NoError(t, mock.ExpectationsWereMet())
}
