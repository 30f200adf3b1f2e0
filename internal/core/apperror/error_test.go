package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsAppError_WrappedChain(t *testing.T) {
	base := NewNotFound("document", "42")
	wrapped := fmt.Errorf("load source: %w", base)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, appErr.Code)
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))
}

func TestGetHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
	assert.False(t, IsAppError(errors.New("boom")))
}

func TestNewInvalidConversion_Details(t *testing.T) {
	err := NewInvalidConversion("sales/invoice", "sales/order")

	assert.Equal(t, CodeInvalidConversion, err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Equal(t, "sales/invoice", err.Details["from"])
	assert.Equal(t, "sales/order", err.Details["to"])
}

func TestWithDetail_InitializesMap(t *testing.T) {
	err := NewValidation("bad").WithDetail("field", "warehouseId")

	assert.Equal(t, "warehouseId", err.Details["field"])
	assert.Contains(t, err.Error(), CodeValidation)
}

func TestInternal_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}
