package handlers

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"concierge/pipeline"
	"concierge/web/middleware"
	"concierge/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MaxMessageLength caps the visitor message in runes.
const MaxMessageLength = 2000

// TurnResolver resolves one visitor message for a tenant.
type TurnResolver interface {
	ResolveTurn(ctx context.Context, tenantID, visitorID, message string) (pipeline.Decision, error)
}

type ChatHandler struct {
	turns  TurnResolver
	logger *zap.Logger
}

func NewChatHandler(turns TurnResolver, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{turns: turns, logger: logger}
}

// SendMessage handles POST /api/:tenant/chat.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if utf8.RuneCountInString(req.Message) > MaxMessageLength {
		respondWithClientError(c, http.StatusBadRequest, "message is too long")
		return
	}

	tenantID := c.Param("tenant")
	visitorID := c.GetString(middleware.VisitorKey)

	decision, err := h.turns.ResolveTurn(c.Request.Context(), tenantID, visitorID, strings.TrimSpace(req.Message))
	if err != nil {
		respondWithServiceError(c, err, h.logger,
			zap.String("tenant_id", tenantID),
			zap.String("visitor_id", visitorID))
		return
	}

	c.JSON(http.StatusOK, types.ChatResponse{Reply: decision.Reply})
}
