package numerator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "smartbiz/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier keeps one counter per key and understands the three statements
// the service issues: +1, +$2 and = $2.
type mockQuerier struct {
	mu       sync.Mutex
	counters map[string]int64
	calls    int
	err      error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{counters: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return &mockRow{err: m.err}
	}

	key := args[0].(string)
	switch {
	case strings.Contains(sql, "current_val + 1"):
		m.counters[key]++
	case strings.Contains(sql, "current_val + $2"):
		m.counters[key] += args[1].(int64)
	default:
		m.counters[key] = args[1].(int64)
	}
	return &mockRow{val: m.counters[key]}
}

func invoiceConfig() corenumerator.Config {
	cfg := corenumerator.DefaultConfig("INV")
	cfg.Key = "sales_invoice"
	return cfg
}

func TestGetNextNumber_Strict(t *testing.T) {
	q := newMockQuerier()
	svc := New(q, nil)
	ctx := context.Background()

	num, err := svc.GetNextNumber(ctx, invoiceConfig(), nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "INV-001", num)

	num, err = svc.GetNextNumber(ctx, invoiceConfig(), nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "INV-002", num)

	assert.Equal(t, int64(2), q.counters["sales_invoice"])
}

func TestGetNextNumber_StrictUsesTransactionQuerier(t *testing.T) {
	pool := newMockQuerier()
	txq := newMockQuerier()
	svc := New(pool, func(context.Context) Querier { return txq })

	_, err := svc.GetNextNumber(context.Background(), invoiceConfig(), nil, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 0, pool.calls)
	assert.Equal(t, 1, txq.calls)
}

func TestGetNextNumber_Cached(t *testing.T) {
	pool := newMockQuerier()
	txq := newMockQuerier()
	svc := New(pool, func(context.Context) Querier { return txq })
	ctx := context.Background()

	cfg := corenumerator.DefaultConfig("ORD")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}

	num, err := svc.GetNextNumber(ctx, cfg, opts, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "ORD-001", num)
	assert.Equal(t, int64(10), pool.counters["ORD"])

	num, err = svc.GetNextNumber(ctx, cfg, opts, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "ORD-002", num)
	assert.Equal(t, 1, pool.calls, "second number comes from the cached range")

	for i := 0; i < 8; i++ {
		_, err = svc.GetNextNumber(ctx, cfg, opts, time.Now())
		require.NoError(t, err)
	}

	num, err = svc.GetNextNumber(ctx, cfg, opts, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "ORD-011", num)
	assert.Equal(t, int64(20), pool.counters["ORD"])
	assert.Equal(t, 0, txq.calls, "ranges are reserved outside the transaction")
}

func TestSetNextNumber_InvalidatesCache(t *testing.T) {
	q := newMockQuerier()
	svc := New(q, nil)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("PO")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}

	_, err := svc.GetNextNumber(ctx, cfg, opts, time.Now())
	require.NoError(t, err)

	require.NoError(t, svc.SetNextNumber(ctx, cfg, time.Now(), 100))

	num, err := svc.GetNextNumber(ctx, cfg, opts, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "PO-101", num)
}

func TestGetNextNumber_Error(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection refused")
	svc := New(q, nil)

	_, err := svc.GetNextNumber(context.Background(), invoiceConfig(), nil, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sales_invoice")
}
