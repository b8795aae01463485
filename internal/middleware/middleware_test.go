package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycrochip/trivia-api/internal/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestExtractUintParam(t *testing.T) {
	router := gin.New()
	router.GET("/questions/:id", ExtractUintParam("id", "questionID"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.MustGet("questionID").(uint)})
	})

	tests := []struct {
		path       string
		wantStatus int
	}{
		{path: "/questions/12", wantStatus: http.StatusOK},
		{path: "/questions/0", wantStatus: http.StatusOK},
		{path: "/questions/abc", wantStatus: http.StatusNotFound},
		{path: "/questions/-1", wantStatus: http.StatusNotFound},
		{path: "/questions/99999999999", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := serve(router, http.MethodGet, tt.path)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusNotFound {
				assert.JSONEq(t, `{"success":false,"error":404,"message":"resource not found"}`, w.Body.String())
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	router := gin.New()
	router.Use(RequestLogger(base))
	router.GET("/categories", func(c *gin.Context) {
		reqLogger := logging.FromContext(c.Request.Context())
		reqLogger.Info().Msg("inside handler")
		c.Status(http.StatusNoContent)
	})

	w := serve(router, http.MethodGet, "/categories")

	requestID := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, requestID)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2, "строка из обработчика и строка access-лога")

	var inner, access map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &inner))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &access))

	assert.Equal(t, requestID, inner["request_id"], "логгер в контексте несёт request_id")
	assert.Equal(t, requestID, access["request_id"])
	assert.Equal(t, "GET", access["method"])
	assert.Equal(t, "/categories", access["route"])
	assert.Equal(t, float64(http.StatusNoContent), access["status"])
}

func TestRequestLogger_RejectsOversizedID(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger(zerolog.Nop()))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Len(t, w.Header().Get(RequestIDHeader), 36, "заменён на UUID")
}

type recordedRequest struct {
	method, route string
	status        int
}

type observerStub struct {
	requests []recordedRequest
}

func (o *observerStub) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	o.requests = append(o.requests, recordedRequest{method: method, route: route, status: status})
}

func TestMetrics(t *testing.T) {
	observer := &observerStub{}
	router := gin.New()
	router.Use(Metrics(observer))
	router.GET("/questions/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, http.MethodGet, "/questions/7")
	serve(router, http.MethodGet, "/missing/path")

	require.Len(t, observer.requests, 2)
	assert.Equal(t, recordedRequest{method: "GET", route: "/questions/:id", status: 200}, observer.requests[0], "метка: шаблон маршрута, а не путь")
	assert.Equal(t, recordedRequest{method: "GET", route: "unmatched", status: 404}, observer.requests[1])
}

func TestRateLimiter_FailOpen(t *testing.T) {
	// Redis недоступен: запросы пропускаются
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	router := gin.New()
	router.Use(NewRateLimiter(client).Limit(RateLimitConfig{MaxRequests: 1, Window: time.Minute, KeyPrefix: "rl:test"}))
	router.GET("/categories", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/categories").Code)
	}
}

func TestRateLimiter_WindowTTL_RedisError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	var buf bytes.Buffer

	ttl := NewRateLimiter(client).windowTTL(context.Background(), zerolog.New(&buf), "rl:test:key", time.Minute)

	assert.Equal(t, time.Minute, ttl, "без ответа Redis используется полное окно")
	assert.Contains(t, buf.String(), "failed to read TTL", "ошибка TTL не теряется")
}

func TestRateLimiter_Redis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	prefix := "rl:test:" + time.Now().Format("150405.000000")
	router := gin.New()
	router.Use(NewRateLimiter(client).Limit(RateLimitConfig{MaxRequests: 2, Window: time.Minute, KeyPrefix: prefix}))
	router.GET("/categories", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/categories").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/categories").Code)

	w := serve(router, http.MethodGet, "/categories")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"success":false,"error":429,"message":"too many requests"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimiter_Redis_RestoresMissingTTL(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()

	// Счётчик без TTL, как после неудачного Expire на первом запросе
	prefix := "rl:test:" + time.Now().Format("150405.000000")
	key := prefix + ":192.0.2.1:/categories"
	require.NoError(t, client.Set(ctx, key, 5, 0).Err())
	defer client.Del(ctx, key)

	router := gin.New()
	router.Use(NewRateLimiter(client).Limit(RateLimitConfig{MaxRequests: 2, Window: time.Minute, KeyPrefix: prefix}))
	router.GET("/categories", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0), "окно должно снова истекать")
	assert.LessOrEqual(t, ttl, time.Minute)
}
