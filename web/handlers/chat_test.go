package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "concierge/errors"
	"concierge/pipeline"
	"concierge/web/middleware"
	"concierge/web/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeResolver struct {
	decision pipeline.Decision
	err      error

	tenantID  string
	visitorID string
	message   string
}

func (f *fakeResolver) ResolveTurn(ctx context.Context, tenantID, visitorID, message string) (pipeline.Decision, error) {
	f.tenantID, f.visitorID, f.message = tenantID, visitorID, message
	return f.decision, f.err
}

func newChatRouter(resolver TurnResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/:tenant", func(c *gin.Context) {
		c.Set(middleware.VisitorKey, "visitor-1")
		c.Next()
	})
	api.POST("/chat", NewChatHandler(resolver, zap.NewNop()).SendMessage)
	return router
}

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSendMessage(t *testing.T) {
	resolver := &fakeResolver{decision: pipeline.Decision{Stage: pipeline.StageSemantic, Reply: "We charge $35/mo"}}
	router := newChatRouter(resolver)

	w := postJSON(router, "/api/acme/chat", `{"message":"  what's your pricing?  "}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp types.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "We charge $35/mo", resp.Reply)
	assert.Equal(t, "acme", resolver.tenantID)
	assert.Equal(t, "visitor-1", resolver.visitorID)
	assert.Equal(t, "what's your pricing?", resolver.message)
}

func TestSendMessageEmptyReplyIsStillJSON(t *testing.T) {
	router := newChatRouter(&fakeResolver{decision: pipeline.Decision{Stage: pipeline.StageClosing}})

	w := postJSON(router, "/api/acme/chat", `{"message":"that's all"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reply":""}`, w.Body.String())
}

func TestSendMessageErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "malformed_body", body: `{"message":`, wantStatus: http.StatusBadRequest},
		{name: "too_long", body: fmt.Sprintf(`{"message":%q}`, strings.Repeat("a", MaxMessageLength+1)), wantStatus: http.StatusBadRequest},
		{name: "invalid_tenant", body: `{"message":"hi"}`, err: fmt.Errorf("%w: tenant id", apperrors.ErrInvalidInput), wantStatus: http.StatusBadRequest},
		{name: "unknown_tenant", body: `{"message":"hi"}`, err: fmt.Errorf("%w: tenant", apperrors.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "broken_tenant", body: `{"message":"hi"}`, err: fmt.Errorf("%w: tenant", apperrors.ErrInvalidConfig), wantStatus: http.StatusUnprocessableEntity},
		{name: "service_unavailable", body: `{"message":"hi"}`, err: fmt.Errorf("%w: lead database", apperrors.ErrServiceUnavailable), wantStatus: http.StatusServiceUnavailable},
		{name: "unexpected", body: `{"message":"hi"}`, err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newChatRouter(&fakeResolver{err: tt.err})

			w := postJSON(router, "/api/acme/chat", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp types.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/healthz", Health)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
