package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRouter(limiter *VisitorRateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/:tenant", VisitorMiddleware(time.Hour, false))
	handlers := []gin.HandlerFunc{}
	if limiter != nil {
		handlers = append(handlers, RateLimitMiddleware(limiter))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(VisitorKey))
	})
	api.POST("/chat", handlers...)
	return router
}

func visitorCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == VisitorCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", VisitorCookieName)
	return nil
}

func TestVisitorMiddlewareIssuesCookie(t *testing.T) {
	router := newRouter(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/acme/chat", nil))

	require.Equal(t, http.StatusOK, w.Code)
	cookie := visitorCookie(t, w)
	_, err := uuid.Parse(cookie.Value)
	assert.NoError(t, err)
	assert.Equal(t, cookie.Value, w.Body.String())
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)
}

func TestVisitorMiddlewareKeepsValidCookie(t *testing.T) {
	router := newRouter(nil)
	id := uuid.New().String()

	req := httptest.NewRequest(http.MethodPost, "/api/acme/chat", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: id})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, id, w.Body.String())
}

func TestVisitorMiddlewareReplacesGarbageCookie(t *testing.T) {
	router := newRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/acme/chat", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: "not-a-uuid"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEqual(t, "not-a-uuid", w.Body.String())
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
}

func TestRateLimitPerVisitor(t *testing.T) {
	limiter := NewVisitorRateLimiter(RateLimiterConfig{MessagesPerMinute: 1, BurstSize: 2}, zap.NewNop())
	defer limiter.Stop()
	router := newRouter(limiter)

	send := func(visitor string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/acme/chat", nil)
		req.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: visitor})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	first, second := uuid.New().String(), uuid.New().String()
	assert.Equal(t, http.StatusOK, send(first))
	assert.Equal(t, http.StatusOK, send(first))
	assert.Equal(t, http.StatusTooManyRequests, send(first))
	assert.Equal(t, http.StatusOK, send(second))
}

func TestTokenBucketRefills(t *testing.T) {
	bucket := NewTokenBucket(1, 1000)
	assert.True(t, bucket.Allow())
	time.Sleep(5 * time.Millisecond)
	assert.True(t, bucket.Allow())
}
