package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/idempotency"
	"smartbiz/pkg/logger"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"

	contextIdempotencyKey   = "idempotency_key"
	contextIdempotencyStore = "idempotency_store"

	maxIdempotencyBodyBytes = 1 << 20 // 1 MiB
)

// Idempotency middleware replays the stored response of a mutating request
// sent again with the same Idempotency-Key.
func Idempotency(store idempotency.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}

		limited := io.LimitReader(c.Request.Body, maxIdempotencyBodyBytes+1)
		body, err := io.ReadAll(limited)
		if err != nil {
			_ = c.Error(apperror.NewValidation("failed to read request body").WithDetail("reason", err.Error()))
			c.Abort()
			return
		}
		if len(body) > maxIdempotencyBodyBytes {
			appErr := apperror.NewValidation("request body too large for idempotency")
			appErr.HTTPStatus = http.StatusRequestEntityTooLarge
			_ = c.Error(appErr.WithDetail("max_bytes", maxIdempotencyBodyBytes))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		hash := sha256.Sum256(body)

		// The path holds the document id, so the same key on another
		// document is a different operation.
		operation := c.Request.Method + " " + c.Request.URL.Path

		replay, err := store.Acquire(c.Request.Context(), key, operation, hex.EncodeToString(hash[:]))
		if err != nil {
			if _, ok := apperror.AsAppError(err); !ok {
				err = apperror.NewInternal(err).WithDetail("component", "idempotency")
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		if replay != nil {
			c.Header("Idempotent-Replayed", "true")
			c.Data(replay.StatusCode, replay.ContentType, replay.Body)
			c.Abort()
			return
		}

		c.Set(contextIdempotencyKey, key)
		c.Set(contextIdempotencyStore, store)

		c.Next()
	}
}

func idempotencyFrom(c *gin.Context) (string, idempotency.Store, bool) {
	key := c.GetString(contextIdempotencyKey)
	if key == "" {
		return "", nil, false
	}
	v, ok := c.Get(contextIdempotencyStore)
	if !ok {
		return "", nil, false
	}
	store, ok := v.(idempotency.Store)
	return key, store, ok
}

// CompleteIdempotency stores a successful response for replay. It is a no-op
// when the request carried no key.
func CompleteIdempotency(c *gin.Context, status int, response any) {
	key, store, ok := idempotencyFrom(c)
	if !ok {
		return
	}

	r := idempotency.Replay{StatusCode: status}
	if response != nil {
		raw, err := json.Marshal(response)
		if err != nil {
			logger.Warn(c.Request.Context(), "failed to encode idempotent response", "key", key, "error", err)
			return
		}
		r.ContentType = "application/json"
		r.Body = raw
	}

	if err := store.Complete(c.Request.Context(), key, r); err != nil {
		logger.Warn(c.Request.Context(), "failed to store idempotent response", "key", key, "error", err)
	}
}
