package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/idempotency"
	"smartbiz/pkg/logger"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		status := http.StatusInternalServerError
		body := ErrorResponse{
			Code:    apperror.CodeInternal,
			Message: "Internal server error",
			Details: map[string]any{"request_id": c.GetString(ContextRequestID)},
		}

		if appErr, ok := apperror.AsAppError(err); ok && appErr.Code != apperror.CodeInternal {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}
			status = appErr.HTTPStatus
			body = ErrorResponse{Code: appErr.Code, Message: appErr.Message, Details: appErr.Details}
		} else {
			logger.Error(c.Request.Context(), "unhandled error", "error", err)
		}

		failIdempotency(c, status, body)
		c.JSON(status, body)
	}
}

// failIdempotency stores the error response under the request's key so a
// retry replays it (best-effort).
func failIdempotency(c *gin.Context, status int, body ErrorResponse) {
	key, store, ok := idempotencyFrom(c)
	if !ok {
		return
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return
	}
	if err := store.Fail(c.Request.Context(), key, idempotency.Replay{
		StatusCode:  status,
		ContentType: "application/json",
		Body:        raw,
	}); err != nil {
		logger.Warn(c.Request.Context(), "failed to store idempotent error", "key", key, "error", err)
	}
}
