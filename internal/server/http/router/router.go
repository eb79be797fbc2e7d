package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/sweetsbybella/internal/config"
	"github.com/polkiloo/sweetsbybella/internal/server/http/handlers"
	"github.com/polkiloo/sweetsbybella/internal/server/http/middleware"
)

// Params lists router dependencies.
type Params struct {
	fx.In

	Facade handlers.ShopFacade
	Config *config.Config
	Logger *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(cors.New(corsConfig(p.Config.FrontendOrigins)))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(p.Facade, p.Logger)
	adminHandler := handlers.NewAdminHandler(p.Facade, p.Logger)
	sweepHandler := handlers.NewSweepHandler(p.Facade, p.Logger)
	healthHandler := handlers.NewHealthHandler(p.Facade, p.Logger)

	adminOnly := middleware.AdminRequired(p.Facade)
	cronOnly := middleware.CronSecretRequired(p.Config.CronSecret)

	engine.GET("/", handlers.Root)
	engine.GET("/health", healthHandler.Health)

	api := engine.Group("/api")
	api.POST("/orders", orderHandler.Create)
	api.GET("/orders/:reference", orderHandler.Get)
	api.GET("/cron/cancel-expired-orders", cronOnly, sweepHandler.Run)

	admin := api.Group("/admin")
	admin.POST("/login", adminHandler.Login)

	adminAuth := admin.Group("")
	adminAuth.Use(adminOnly)
	adminAuth.GET("/orders", adminHandler.List)
	adminAuth.POST("/orders/:reference/payment-status", adminHandler.UpdatePaymentStatus)
	adminAuth.PATCH("/orders/:reference/status", adminHandler.UpdateFulfillment)
	adminAuth.POST("/sweep", sweepHandler.Run)

	// storefront routes
	engine.POST("/create-order", orderHandler.Create)
	engine.GET("/order/:reference", orderHandler.Get)
	engine.POST("/update-payment-status", adminOnly, adminHandler.UpdatePaymentStatus)
	engine.POST("/cancel-expired-orders", cronOnly, sweepHandler.Run)

	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Encoding", "Authorization", handlers.IdempotencyHeader, middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
