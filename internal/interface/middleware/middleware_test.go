package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenfuse/kenfuse-api/internal/application"
	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func whoami(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"uid": UserID(c), "role": string(Role(c))})
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	rdb := newRedis(t)
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	sessions := application.NewSessionStore(rdb, time.Hour)
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, "u1", "s1", "family"))
	live, _, err := jwt.GenerateAccessToken("u1", "s1", "family")
	require.NoError(t, err)
	stale, _, err := jwt.GenerateAccessToken("u1", "old", "family")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", Auth(jwt, sessions), whoami)
	r.GET("/admin", Auth(jwt, sessions), RequireRole(entity.RoleAdmin), whoami)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+live)
	w := do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":"u1"`)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: helpers.AccessCookie, Value: live})
	assert.Equal(t, http.StatusOK, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+stale)
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

	assert.Equal(t, http.StatusUnauthorized, do(r, httptest.NewRequest(http.MethodGet, "/me", nil)).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+live)
	assert.Equal(t, http.StatusForbidden, do(r, req).Code)

	require.NoError(t, sessions.Revoke(ctx, "u1"))
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+live)
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
}

func TestOptionalAuth(t *testing.T) {
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	tok, _, err := jwt.GenerateAccessToken("u9", "s9", "vendor")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/m", OptionalAuth(jwt, nil), whoami)

	w := do(r, httptest.NewRequest(http.MethodGet, "/m", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":""`)

	req := httptest.NewRequest(http.MethodGet, "/m", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":""`)

	req = httptest.NewRequest(http.MethodGet, "/m", nil)
	req.Header.Set("Authorization", "bearer "+tok)
	w = do(r, req)
	assert.Contains(t, w.Body.String(), `"role":"vendor"`)
}

func TestRateLimit(t *testing.T) {
	rdb := newRedis(t)
	r := gin.New()
	r.Use(RealIP())
	r.POST("/login", RateLimit(rdb, 2, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	login := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("X-Forwarded-For", ip)
		return do(r, req)
	}

	w := login("203.0.113.7")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Reset"))

	assert.Equal(t, http.StatusNoContent, login("203.0.113.7").Code)
	w = login("203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, login("198.51.100.1").Code)
}

func TestRateLimitFailsOpenAndBypasses(t *testing.T) {
	down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	t.Cleanup(func() { _ = down.Close() })

	r := gin.New()
	r.Use(RealIP())
	r.GET("/x", RateLimit(down, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}

	rdb := newRedis(t)
	r = gin.New()
	r.Use(RealIP())
	r.GET("/health", RateLimit(rdb, 1, time.Minute, KeyByIP(), AnyAllow(AllowPaths("/health"))), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	}
}

func TestAllowPrivateIP(t *testing.T) {
	allow := AllowPrivateIP()
	for ip, want := range map[string]bool{"10.0.0.4": true, "127.0.0.1": true, "8.8.8.8": false} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set("real_ip", ip)
		assert.Equal(t, want, allow(c), ip)
	}
}

func TestRealIPAndRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RealIP())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("real_ip")+"|"+c.GetString("request_id"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-Connecting-IP", "203.0.113.9")
	req.Header.Set("X-Forwarded-For", "198.51.100.2, 10.0.0.1")
	req.Header.Set(RequestIDHeader, "req-123")
	w := do(r, req)
	assert.Equal(t, "203.0.113.9|req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.2, 10.0.0.1")
	w = do(r, req)
	assert.Contains(t, w.Body.String(), "198.51.100.2|")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
