package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

const maxRequestBody = 1 << 20

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StorefrontFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest(maxRequestBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	catalogHandler := handlers.NewCatalogHandler(facade)
	voucherHandler := handlers.NewVoucherHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	statisticsHandler := handlers.NewStatisticsHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/healthz", healthHandler.Check)

	api := engine.Group("/api")
	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	api.GET("/products", catalogHandler.ListProducts)
	api.GET("/products/:id", catalogHandler.GetProduct)
	api.GET("/variants/:id", catalogHandler.GetVariant)
	api.GET("/variants/:id/availability", catalogHandler.Availability)
	api.POST("/vouchers/validate", voucherHandler.Validate)

	orders := api.Group("/orders")
	orders.Use(middleware.AuthRequired(facade))
	orders.POST("", orderHandler.Place)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.POST("/:id/cancel", orderHandler.Cancel)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(facade), middleware.AdminRequired())
	admin.POST("/products", catalogHandler.CreateProduct)
	admin.POST("/products/:id/variants", catalogHandler.CreateVariant)
	admin.PUT("/variants/:id", catalogHandler.UpdateVariant)
	admin.POST("/variants/:id/stock", catalogHandler.AdjustStock)
	admin.POST("/vouchers", voucherHandler.Create)
	admin.GET("/vouchers", voucherHandler.List)
	admin.GET("/vouchers/:code", voucherHandler.Get)
	admin.DELETE("/vouchers/:code", voucherHandler.Delete)
	admin.GET("/orders", orderHandler.AdminList)
	admin.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
	admin.GET("/statistics/revenue", statisticsHandler.Revenue)

	return engine
}
