package handlers

import (
	"net/http"

	apperrors "concierge/errors"
	"concierge/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondWithError logs the technical error and returns a user-friendly message
func respondWithError(c *gin.Context, statusCode int, technicalError error, userMessage string, logger *zap.Logger, fields ...zap.Field) {
	if logger != nil {
		fields = append(fields, zap.Error(technicalError))
		logger.Error("Request failed", fields...)
	}

	c.JSON(statusCode, types.ErrorResponse{Error: userMessage})
}

// respondWithClientError returns a client error (no logging needed for validation errors)
func respondWithClientError(c *gin.Context, statusCode int, userMessage string) {
	c.JSON(statusCode, types.ErrorResponse{Error: userMessage})
}

// respondWithServiceError maps service errors onto HTTP statuses. Only
// unexpected failures are logged.
func respondWithServiceError(c *gin.Context, err error, logger *zap.Logger, fields ...zap.Field) {
	switch {
	case apperrors.IsInvalidInput(err):
		respondWithClientError(c, http.StatusBadRequest, "invalid request")
	case apperrors.IsNotFound(err):
		respondWithClientError(c, http.StatusNotFound, "unknown tenant")
	case apperrors.IsInvalidConfig(err):
		respondWithError(c, http.StatusUnprocessableEntity, err, "tenant configuration is invalid", logger, fields...)
	case apperrors.IsServiceUnavailable(err):
		respondWithError(c, http.StatusServiceUnavailable, err, "service temporarily unavailable", logger, fields...)
	default:
		respondWithError(c, http.StatusInternalServerError, err, "internal error", logger, fields...)
	}
}
