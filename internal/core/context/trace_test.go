package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureTrace_KeepsExisting(t *testing.T) {
	trace := &TraceContext{TraceID: "t-1", RequestID: "r-1", Source: "http"}
	ctx := WithTrace(context.Background(), trace)

	got := GetTrace(EnsureTrace(ctx, "cli"))
	require.NotNil(t, got)
	assert.Equal(t, "r-1", got.RequestID)
	assert.Equal(t, "http", got.Source)
}

func TestEnsureTrace_AttachesNew(t *testing.T) {
	ctx := EnsureTrace(context.Background(), "cli")

	assert.NotEmpty(t, GetRequestID(ctx))
	assert.Equal(t, "cli", GetTrace(ctx).Source)
	assert.Empty(t, GetRequestID(context.Background()))
}
