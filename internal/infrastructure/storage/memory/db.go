// Package memory provides an in-process storage backend: documents, the
// stock register and catalogs held in maps, with snapshot/restore
// transactions so one user action is applied atomically.
package memory

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"smartbiz/internal/core/entity"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/tx"
	"smartbiz/internal/domain/catalog"
	"smartbiz/internal/domain/document"
	"smartbiz/pkg/logger"
)

var tracer = otel.Tracer("smartbiz/memory")

// Compile-time check that DB implements tx.Manager.
var _ tx.Manager = (*DB)(nil)

// DB is the shared in-memory state. Every writer is serialised by the
// transaction lock; readers take the data lock only.
type DB struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	state state
}

type state struct {
	docs map[id.ID]document.Document

	movements []entity.StockMovement
	balances  map[entity.StockKey]entity.StockBalance

	products   map[id.ID]catalog.Product
	partners   map[id.ID]catalog.Partner
	warehouses map[id.ID]catalog.Warehouse
	settings   catalog.Settings

	counters map[string]int64
}

// NewDB creates an empty store.
func NewDB() *DB {
	return &DB{
		state: state{
			docs:       make(map[id.ID]document.Document),
			balances:   make(map[entity.StockKey]entity.StockBalance),
			products:   make(map[id.ID]catalog.Product),
			partners:   make(map[id.ID]catalog.Partner),
			warehouses: make(map[id.ID]catalog.Warehouse),
			counters:   make(map[string]int64),
		},
	}
}

// snapshot copies the top-level containers. Stored values are never mutated
// in place (documents are cloned on every write), so a shallow copy is enough.
func (s *state) snapshot() state {
	out := *s
	out.docs = copyMap(s.docs)
	out.movements = append([]entity.StockMovement(nil), s.movements...)
	out.balances = copyMap(s.balances)
	out.products = copyMap(s.products)
	out.partners = copyMap(s.partners)
	out.warehouses = copyMap(s.warehouses)
	out.counters = copyMap(s.counters)
	return out
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// txKey is the context key for an active transaction.
type txKey struct{}

// RunInTransaction executes fn atomically. Nested calls reuse the outer
// transaction. On error every write made through the DB is rolled back.
func (db *DB) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(bool); ok {
		return fn(ctx)
	}

	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(attribute.String("tx.backend", "memory")))
	defer span.End()

	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.RLock()
	saved := db.state.snapshot()
	db.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		db.mu.Lock()
		db.state = saved
		db.mu.Unlock()
		logger.Debug(ctx, "memory transaction rolled back", "error", err)
		return err
	}
	return nil
}

// ReadOnly runs fn without taking the writer lock.
func (db *DB) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (db *DB) read(fn func(s *state)) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	fn(&db.state)
}

// write applies fn under the data lock. Outside a transaction it also takes
// the transaction lock, so a concurrent rollback cannot discard it.
func (db *DB) write(ctx context.Context, fn func(s *state) error) error {
	if _, ok := ctx.Value(txKey{}).(bool); !ok {
		db.txMu.Lock()
		defer db.txMu.Unlock()
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(&db.state)
}
