package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"printfarm-backend/config"
	"printfarm-backend/internal/mw"
	"printfarm-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(handler *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		abortError(c, http.StatusNotFound, store.CodeNotFound, "")
	})
	r.NoMethod(func(c *gin.Context) {
		abortError(c, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", c.Request.Method+" not allowed")
	})

	r.Use(mw.RequestID(), mw.CORS(cfg.CORSAllowedOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Catalog responses change only on migration.
	cacheStore := cache.New(cfg.CacheTTL(), 2*cfg.CacheTTL())
	caching := mw.Cache(cacheStore, cfg.CacheTTL())

	api := r.Group("/api")
	if cfg.RateLimitPerSec > 0 {
		limiter := mw.NewKeyedRateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, 10*time.Minute)
		api.Use(mw.RateLimiter(limiter, mw.ClientIP))
	}
	{
		// Printer-facing
		api.POST("/printers/ping", handler.Heartbeat)
		api.POST("/printers/heartbeat", handler.Heartbeat)
		api.GET("/printers", handler.ListPrinters)
		api.POST("/jobs/:id/complete", handler.CompleteJob)

		// Orders
		api.POST("/orders", handler.CreateOrder)
		api.GET("/orders", handler.ListOrders)
		api.GET("/orders/:id", handler.GetOrder)
		api.GET("/orders/:id/progress", handler.GetOrderProgress)

		// Catalog
		api.GET("/printables", caching, handler.ListPrintables)
		api.GET("/printables/:id", caching, handler.GetPrintable)
		api.GET("/printables/:id/stl", handler.DownloadSTL)

		// Push notifications
		api.POST("/push/subscription", handler.PutSubscription)
		api.DELETE("/push/subscription", handler.DeleteSubscription)
		api.GET("/push/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
