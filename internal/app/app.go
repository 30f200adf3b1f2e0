// Package app wires the storage backend, the domain services and the HTTP
// router from configuration. Both commands build on it.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"smartbiz/internal/config"
	"smartbiz/internal/core/idempotency"
	"smartbiz/internal/core/numerator"
	"smartbiz/internal/core/tx"
	"smartbiz/internal/domain/catalog"
	"smartbiz/internal/domain/conversion"
	"smartbiz/internal/domain/document"
	"smartbiz/internal/domain/fulfillment"
	"smartbiz/internal/domain/registers/stock"
	"smartbiz/internal/domain/returns"
	v1 "smartbiz/internal/infrastructure/http/v1"
	pgnumerator "smartbiz/internal/infrastructure/numerator"
	"smartbiz/internal/infrastructure/storage/memory"
	"smartbiz/internal/infrastructure/storage/postgres"
	"smartbiz/internal/infrastructure/storage/postgres/catalog_repo"
	"smartbiz/internal/infrastructure/storage/postgres/document_repo"
	"smartbiz/internal/infrastructure/storage/postgres/register_repo"
	"smartbiz/pkg/logger"
)

// CatalogStore is a catalog the admin API can read and write.
type CatalogStore interface {
	catalog.Reader
	catalog.Writer
	catalog.ProductLister
}

// Backend is one storage implementation of every port.
type Backend struct {
	Documents   document.Repository
	Stock       stock.Repository
	Numbers     numerator.Generator
	Catalog     CatalogStore
	Idempotency idempotency.Store
	TxManager   tx.Manager

	// DB is pinged by the readiness probe; nil for memory
	DB interface {
		Ping(ctx context.Context) error
	}

	close    func()
	logStats func(ctx context.Context)
}

// Close releases the backend's resources.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// NewMemoryBackend keeps everything in process. Data is lost on restart.
func NewMemoryBackend(cfg *config.Config) *Backend {
	db := memory.NewDB()
	return &Backend{
		Documents:   memory.NewDocumentRepo(db),
		Stock:       memory.NewStockRepo(db),
		Numbers:     memory.NewNumerator(db),
		Catalog:     memory.NewCatalog(db, cfg.CatalogSettings()),
		Idempotency: memory.NewIdempotencyStore(cfg.Idempotency.TTL),
		TxManager:   db,
	}
}

// NewPostgresBackend connects to PostgreSQL. Migrations are run separately
// by bizctl.
func NewPostgresBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.URL)
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	txm := postgres.NewTxManager(pool)

	return &Backend{
		Documents:   document_repo.New(txm),
		Stock:       register_repo.NewStockRepo(txm),
		Numbers:     pgnumerator.New(pool, txm.NumeratorQuerier),
		Catalog:     catalog_repo.New(txm, cfg.CatalogSettings()),
		Idempotency: postgres.NewIdempotencyStore(txm, cfg.Idempotency.TTL),
		TxManager:   txm,
		DB:          pool,
		close:       pool.Close,
		logStats:    func(ctx context.Context) { postgres.LogPoolStats(ctx, pool) },
	}, nil
}

// NewBackend picks the backend named by STORAGE_DRIVER.
func NewBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		logger.Warn(ctx, "using in-memory storage; data is lost on restart")
		return NewMemoryBackend(cfg), nil
	case config.StoragePostgres:
		return NewPostgresBackend(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// Services are the domain services built over a backend.
type Services struct {
	Engine *conversion.Engine
	Stock  *stock.Service
	Store  *document.Store
}

// NewServices wires the document engine.
func NewServices(cfg *config.Config, b *Backend) *Services {
	store := document.NewStore(b.Documents, b.Numbers, b.TxManager)
	stockSvc := stock.NewService(b.Stock)
	recorder := stock.NewRecorder(stockSvc, store, b.Catalog, b.Catalog,
		stock.AllowNegativeStock(cfg.Business.AllowNegativeStock))

	engine := conversion.NewEngine(conversion.Deps{
		Store:     store,
		Recorder:  recorder,
		Catalog:   b.Catalog,
		Tracker:   fulfillment.NewTracker(store, b.TxManager),
		Returns:   returns.NewHandler(store),
		TxManager: b.TxManager,
	})

	return &Services{Engine: engine, Stock: stockSvc, Store: store}
}

// NewRouter builds the HTTP API over the services.
func NewRouter(cfg *config.Config, b *Backend, s *Services, log *logger.Logger) *gin.Engine {
	rc := v1.RouterConfig{
		Logger:      log,
		Engine:      s.Engine,
		Stock:       s.Stock,
		Catalog:     b.Catalog,
		Driver:      cfg.Storage.Driver,
		Development: cfg.IsDevelopment(),
	}
	if b.DB != nil {
		rc.DB = b.DB
	}
	if cfg.Idempotency.Enabled {
		rc.Idempotency = b.Idempotency
	}
	return v1.NewRouter(rc)
}
