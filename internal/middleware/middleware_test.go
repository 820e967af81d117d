package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/middleware"
	"github.com/SscSPs/valutatrade_hub/internal/platform/events"
	"github.com/SscSPs/valutatrade_hub/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret-key-that-is-long-enough"
	testIssuer = "valutatrade-hub-test"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEmitter) Emit(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStructuredLogging_RequestID(t *testing.T) {
	logger, buf := bufferLogger()
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger))
	var fromCtx *slog.Logger
	r.GET("/ping", func(c *gin.Context) {
		fromCtx = middleware.GetLoggerFromCtx(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	w := serve(r, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "req-42", w.Header().Get(middleware.RequestIDHeader))
	require.NotNil(t, fromCtx)
	assert.NotSame(t, slog.Default(), fromCtx)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, "Request completed", line["msg"])
	assert.EqualValues(t, http.StatusNoContent, line["status"])
}

func TestStructuredLogging_GeneratesRequestID(t *testing.T) {
	logger, _ := bufferLogger()
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetRequestID(c))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), w.Body.String())
}

func TestGetLoggerFromCtx_Default(t *testing.T) {
	assert.Same(t, slog.Default(), middleware.GetLoggerFromCtx(context.Background()))

	logger, _ := bufferLogger()
	assert.Same(t, logger, middleware.GetLoggerFromCtx(middleware.WithLogger(context.Background(), logger)))
}

func authRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.AuthMiddleware(testSecret, testIssuer))
	r.GET("/me", func(c *gin.Context) {
		userID, ok := middleware.GetUserIDFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, userID)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	valid, _, err := utils.GenerateJWT("user-1", testSecret, time.Now(), time.Hour, testIssuer)
	require.NoError(t, err)
	expired, _, err := utils.GenerateJWT("user-1", testSecret, time.Now().Add(-2*time.Hour), time.Hour, testIssuer)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusOK, wantBody: "user-1"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantBody: `{"error":"Authorization header required"}`},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantBody: `{"error":"Authorization header format must be Bearer {token}"}`},
		{name: "garbage token", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized, wantBody: `{"error":"Invalid token"}`},
		{name: "expired token", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantBody: `{"error":"Token has expired"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(authRouter(), req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestRateLimit(t *testing.T) {
	l, err := middleware.NewMemoryLimiter("2-M")
	require.NoError(t, err)
	r := gin.New()
	r.Use(middleware.RateLimit(l))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestNewMemoryLimiter_InvalidRate(t *testing.T) {
	_, err := middleware.NewMemoryLimiter("lots")
	assert.Error(t, err)
}

func TestEventsMiddleware(t *testing.T) {
	emitter := &recordingEmitter{}
	token, _, err := utils.GenerateJWT("user-1", testSecret, time.Now(), time.Hour, testIssuer)
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.Default()))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(testSecret, testIssuer), middleware.EventsMiddleware(emitter))
	v1.GET("/rates/:from/:to", func(c *gin.Context) { c.Status(http.StatusOK) })
	v1.POST("/portfolio/sell", func(c *gin.Context) { c.Status(http.StatusUnprocessableEntity) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates/USD/BTC", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	serve(r, req)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/portfolio/sell", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	serve(r, req)

	serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Len(t, emitter.events, 1)
	e := emitter.events[0]
	assert.Equal(t, "api_v1_rates_from_to", e.Name)
	assert.Equal(t, "user-1", e.DistinctID)
	assert.Equal(t, http.MethodGet, e.Properties["method"])
	assert.Equal(t, map[string]string{"from": "USD", "to": "BTC"}, e.Properties["params"])
}
