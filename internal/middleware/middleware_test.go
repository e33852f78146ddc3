package middleware

import (
    "context"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/guest-seating/internal/config"
    "github.com/iliyamo/guest-seating/internal/seating"
    "github.com/iliyamo/guest-seating/internal/utils"
)

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func protected(secret string) *echo.Echo {
    e := echo.New()
    g := e.Group("/admin", JWTAuth(secret), RequireRole(RoleAdmin))
    g.GET("/whoami", func(c echo.Context) error {
        return c.String(http.StatusOK, c.Get(CtxUserID).(string))
    })
    return e
}

func TestJWTAuthAndRole(t *testing.T) {
    e := protected("s3cret")

    rec := serve(e, httptest.NewRequest(http.MethodGet, "/admin/whoami", nil))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)

    req := httptest.NewRequest(http.MethodGet, "/admin/whoami", nil)
    req.Header.Set("Authorization", "Bearer garbage")
    assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)

    guest, err := utils.NewAccessToken("s3cret", "door", "SCANNER", 5)
    require.NoError(t, err)
    req = httptest.NewRequest(http.MethodGet, "/admin/whoami", nil)
    req.Header.Set("Authorization", "Bearer "+guest.Token)
    assert.Equal(t, http.StatusForbidden, serve(e, req).Code)

    admin, err := utils.NewAccessToken("s3cret", "marie", RoleAdmin, 5)
    require.NoError(t, err)
    req = httptest.NewRequest(http.MethodGet, "/admin/whoami", nil)
    req.Header.Set("Authorization", "Bearer "+admin.Token)
    rec = serve(e, req)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "marie", rec.Body.String())
}

func TestPayloadEncoding(t *testing.T) {
    hdr := http.Header{"Content-Type": {"application/json"}}
    bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
    require.NoError(t, err)

    status, got, body, ok := decodePayload(bs)
    require.True(t, ok)
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, "application/json", got.Get("Content-Type"))
    assert.JSONEq(t, `{"ok":true}`, string(body))

    _, _, _, ok = decodePayload([]byte{0, 1})
    assert.False(t, ok)
    _, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 0, 99})
    assert.False(t, ok)
}

func TestCacheKeyDistinguishesPaths(t *testing.T) {
    e := echo.New()
    key := func(target string) string {
        return cacheKeyFrom("seating:view", e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder()))
    }
    assert.NotEqual(t, key("/v1/tables/3/status"), key("/v1/tables/4/status"))
    assert.NotEqual(t, key("/v1/guests/status"), key("/v1/guests/status?page=2"))
    assert.Equal(t, key("/v1/guests/status"), key("/v1/guests/status"))
    assert.Regexp(t, `^seating:view:[0-9a-f]{40}$`, key("/v1/guests/status"))
}

func TestCaptureWriterLimit(t *testing.T) {
    rec := httptest.NewRecorder()
    cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
    _, err := cw.Write([]byte("abc"))
    require.NoError(t, err)
    _, err = cw.Write([]byte("defg"))
    require.NoError(t, err)
    assert.Equal(t, "abcd", cw.buf.String())
    assert.Equal(t, "abcdefg", rec.Body.String())
    assert.True(t, cw.truncated())
}

func TestDisabledCacheAndLimiterPassThrough(t *testing.T) {
    vc := NewViewCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil)
    vc.Notify(context.Background(), seating.Event{Kind: seating.EventAssigned})
    require.NoError(t, vc.Invalidate(context.Background()))

    e := echo.New()
    e.GET("/v1/guests/status", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, vc.Middleware())
    e.POST("/v1/checkin", func(c echo.Context) error { return c.String(http.StatusOK, "in") },
        NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil))

    rec := serve(e, httptest.NewRequest(http.MethodGet, "/v1/guests/status", nil))
    assert.Equal(t, "ok", rec.Body.String())
    assert.Empty(t, rec.Header().Get("X-Cache"))

    for i := 0; i < 3; i++ {
        assert.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodPost, "/v1/checkin", nil)).Code)
    }
}

func TestRateLimitHelpers(t *testing.T) {
    allowed, remaining, retry, ok := parseScriptResult([]interface{}{int64(1), int64(7), int64(0)})
    require.True(t, ok)
    assert.True(t, allowed)
    assert.EqualValues(t, 7, remaining)
    assert.Zero(t, retry)

    _, _, _, ok = parseScriptResult("nope")
    assert.False(t, ok)

    assert.Equal(t, 2, retryAfterSeconds(1001))
    assert.Equal(t, 0, retryAfterSeconds(-5))

    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/checkin", nil)
    req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
    c := e.NewContext(req, httptest.NewRecorder())
    assert.Equal(t, "rl:checkin:ip:10.0.0.7", buildRateKey(config.RateLimitConfig{Prefix: "rl:checkin"}, c))
    c.Set(CtxUserID, "marie")
    assert.Equal(t, "rl:checkin:ip:10.0.0.7:user:marie", buildRateKey(config.RateLimitConfig{Prefix: "rl:checkin"}, c))
}
