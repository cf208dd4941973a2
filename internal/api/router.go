package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trackline/shipment-tracker/internal/api/handler"
	"github.com/trackline/shipment-tracker/internal/api/middleware"
	"github.com/trackline/shipment-tracker/internal/core/service"
	mongodb "github.com/trackline/shipment-tracker/internal/infrastructure/db/mongo"
	redisdb "github.com/trackline/shipment-tracker/internal/infrastructure/db/redis"
)

const tokenTTL = 2 * time.Hour

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("shipment_tracker"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	shipmentRepo := mongodb.NewShipmentRepository(db)
	statsCache := redisdb.NewStatsCache(rdb)

	authService := service.NewAuthService(userRepo, jwtSecret, tokenTTL, log)
	shipmentService := service.NewShipmentService(shipmentRepo, statsCache, log)

	authHandler := handler.NewAuthHandler(authService)
	shipmentHandler := handler.NewShipmentHandler(shipmentService)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Shipment routes (bearer token required) ---
	shipments := e.Group("/shipments", middleware.Auth(jwtSecret))
	shipments.GET("/stats", shipmentHandler.Stats) // fixed route before /:id
	shipments.GET("", shipmentHandler.List)
	shipments.POST("", shipmentHandler.Create)
	shipments.GET("/:id", shipmentHandler.Get)
	shipments.PATCH("/:id/status", shipmentHandler.UpdateStatus)
	shipments.DELETE("/:id", shipmentHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
