// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"smartbiz/internal/core/idempotency"
	"smartbiz/internal/domain/conversion"
	"smartbiz/internal/domain/document"
	"smartbiz/internal/domain/registers/stock"
	"smartbiz/internal/infrastructure/http/v1/handlers"
	"smartbiz/internal/infrastructure/http/v1/middleware"
	"smartbiz/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Logger *logger.Logger

	Engine  *conversion.Engine
	Stock   *stock.Service
	Catalog handlers.CatalogStore

	// Idempotency is nil when the Idempotency-Key header should be ignored
	Idempotency idempotency.Store

	// DB is pinged by the readiness probe; nil for in-memory storage
	DB     handlers.Pinger
	Driver string

	Development bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Driver)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	api := router.Group("/api/v1")
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	base := handlers.NewBaseHandler()
	registerDocumentRoutes(api, base, cfg)
	registerStockRoutes(api, base, cfg)
	registerCatalogRoutes(api, base, cfg)

	return router
}

func registerDocumentRoutes(api *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewDocumentHandler(base, cfg.Engine, cfg.Catalog, cfg.Stock)

	// /sales/documents and /purchase/documents
	for _, domain := range []document.Domain{document.DomainSales, document.DomainPurchase} {
		g := api.Group("/" + string(domain) + "/documents")
		g.POST("", h.Submit(domain))
		g.GET("", h.List(domain))
	}

	docs := api.Group("/documents/:id")
	{
		docs.GET("", h.Get)
		docs.DELETE("", h.Delete)
		docs.GET("/print", h.Print)
		docs.GET("/movements", h.Movements)
		docs.POST("/convert", h.Convert)
		docs.POST("/receive", h.Receive)
		docs.POST("/quote", h.Quote)
		docs.POST("/accept", h.Accept)
		docs.POST("/return", h.Return)
		docs.POST("/status", h.TransitionStatus)
		docs.PUT("/items", h.EditItems)
	}
}

func registerStockRoutes(api *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewStockHandler(base, cfg.Stock)

	g := api.Group("/stock")
	{
		g.GET("/balances", h.GetBalances)
		g.GET("/movements", h.GetMovements)
		g.GET("/availability/:productId", h.GetProductAvailability)
		g.POST("/recalculate", h.Recalculate)
	}
}

func registerCatalogRoutes(api *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewCatalogHandler(base, cfg.Catalog)

	g := api.Group("/catalog")
	g.GET("/settings", h.Settings)

	products := g.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.POST("", h.PutProduct)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.PutProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}

	partners := g.Group("/partners")
	{
		partners.POST("", h.PutPartner)
		partners.GET("/:id", h.GetPartner)
		partners.PUT("/:id", h.PutPartner)
	}

	warehouses := g.Group("/warehouses")
	{
		warehouses.POST("", h.PutWarehouse)
		warehouses.GET("/:id", h.GetWarehouse)
		warehouses.PUT("/:id", h.PutWarehouse)
	}
}
