package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/livestock/internal/domain/models"
	"github.com/mamadbah2/livestock/internal/server/handlers"
	"github.com/mamadbah2/livestock/internal/server/middleware"
	"github.com/mamadbah2/livestock/internal/service/auth"
	"github.com/mamadbah2/livestock/internal/service/export"
	"github.com/mamadbah2/livestock/internal/service/records"
	"github.com/mamadbah2/livestock/internal/service/reporting"
	"github.com/mamadbah2/livestock/pkg/clients/weather"
)

// Deps are the services the routes are built on. Weather may be nil to
// disable the forecast route.
type Deps struct {
	Engine         *records.Engine
	Auth           *auth.Service
	Reporting      *reporting.Service
	Export         *export.Service
	Weather        weather.Client
	Options        handlers.Options
	AllowedOrigins []string
}

// New wires the Gin engine with required routes and middlewares.
func New(deps Deps, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	handlers.UseJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})

	api := r.Group("/api")

	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Options, logger.Named("handlers.auth"))
	api.POST("/auth/signup", authHandler.SignUp)
	api.POST("/auth/signin", authHandler.SignIn)

	secured := api.Group("", middleware.Authenticate(deps.Auth))
	secured.GET("/auth/me", authHandler.Me)

	reports := handlers.NewReportHandler(deps.Reporting, deps.Options, logger.Named("handlers.reports"))
	secured.GET("/inventory/low-stock", reports.LowStock)
	secured.GET("/finance/summary", reports.FinanceSummary)
	secured.GET("/finance/income/summary", reports.FinanceSummary)
	secured.GET("/scheduler/upcoming/list", reports.Upcoming)
	secured.GET("/scheduler/dashboard/summary", reports.Dashboard)
	secured.PUT("/scheduler/:id/complete", reports.Complete)
	secured.GET("/environment/cities/list", reports.Cities)

	forecast := handlers.NewForecastHandler(deps.Weather, deps.Options, logger.Named("handlers.forecast"))
	secured.GET("/environment/forecast/:city", forecast.Forecast)

	exports := handlers.NewExportHandler(deps.Export, deps.Options, logger.Named("handlers.export"))
	secured.POST("/export", exports.Export)
	secured.GET("/export", exports.Download)

	resourceLogger := logger.Named("handlers.resources")
	for _, res := range models.Resources() {
		h := handlers.NewResourceHandler(deps.Engine, res.Schema, deps.Options, resourceLogger.With(zap.String("resource", res.Path)))
		group := secured.Group("/" + res.Path)
		group.GET("", h.List)
		group.POST("", h.Create)
		group.GET("/:id", h.Get)
		group.PUT("/:id", h.Update)
		group.DELETE("/:id", h.Delete)
	}

	logger.Info("router initialized")

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// RequestIDHeader carries the request id. An incoming value is kept so ids
// can be correlated across proxies.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "requestID"

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDKey)))
	}
}
