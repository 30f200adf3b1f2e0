package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/infrastructure/http/v1/middleware"
	"smartbiz/internal/infrastructure/storage/memory"
)

type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func newIdempotentRouter(calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler(), middleware.Idempotency(memory.NewIdempotencyStore(time.Hour)))
	r.POST("/documents", func(c *gin.Context) {
		*calls++
		middleware.CompleteIdempotency(c, http.StatusCreated, gin.H{"call": *calls})
		c.JSON(http.StatusCreated, gin.H{"call": *calls})
	})
	return r
}

func TestIdempotency_UnreadableBody(t *testing.T) {
	var calls int
	r := newIdempotentRouter(&calls)

	req := httptest.NewRequest(http.MethodPost, "/documents", brokenBody{})
	req.Header.Set(middleware.HeaderIdempotencyKey, "k-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperror.CodeValidation, body.Code)
	assert.Zero(t, calls)

	// The key was never taken, so a readable retry goes through.
	req = httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`{}`))
	req.Header.Set(middleware.HeaderIdempotencyKey, "k-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotency_ReplaysSameKey(t *testing.T) {
	var calls int
	r := newIdempotentRouter(&calls)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`{"a":1}`))
		req.Header.Set(middleware.HeaderIdempotencyKey, "k-2")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := send()
	second := send()

	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)
}
