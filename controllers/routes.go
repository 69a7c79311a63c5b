package controllers

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"landslide-monitor/metrics"
	"landslide-monitor/middlewares"
	"landslide-monitor/storage"
)

// RouterOptions carries the HTTP settings that shape the router.
type RouterOptions struct {
	CORSOrigins []string
	AuthEnabled bool
	JWTSecret   string
	UploadDir   string
	MaxUploadMB int64
	Metrics     *metrics.Metrics
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(h *Handlers, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(h.Log), middlewares.SecurityHeaders())
	if opts.Metrics != nil {
		r.Use(middlewares.Metrics(opts.Metrics))
	}
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))
	if opts.MaxUploadMB > 0 {
		r.MaxMultipartMemory = opts.MaxUploadMB << 20
	}

	r.GET("/health", h.Health)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	if h.Hub != nil {
		r.GET("/ws", h.Hub.HandleWebSocket)
	}
	if opts.UploadDir != "" {
		r.Static(storage.URLPrefix, opts.UploadDir)
	}

	moderator := middlewares.Optional(opts.AuthEnabled, middlewares.AuthMiddleware(opts.JWTSecret))

	api := r.Group("/api")
	api.POST("/auth/login", h.Login)

	sensors := api.Group("/sensors")
	sensors.POST("", h.CreateSensor)
	sensors.GET("", h.GetSensors)
	sensors.GET("/overview", h.GetSensorOverview)
	sensors.PATCH("/:id", h.UpdateSensor)
	sensors.DELETE("/:id", h.DeleteSensor)

	history := api.Group("/sensor-history")
	history.GET("/summary", h.GetHistorySummary)
	history.GET("/performance", h.GetSensorPerformance)
	history.GET("/status-distribution", h.GetStatusDistribution)
	history.GET("/export", h.ExportSensorTrend)
	history.POST("", h.CreateSensorLog)

	reports := api.Group("/report")
	reports.POST("/submit", h.SubmitReport)
	reports.PATCH("/:id/status", moderator, h.UpdateReportStatus)
	reports.GET("", h.GetReports)

	education := api.Group("/education")
	education.GET("", h.GetEducation)
	education.POST("", moderator, h.CreateEducation)
	education.PATCH("/:id", moderator, h.UpdateEducation)
	education.DELETE("/:id", moderator, h.DeleteEducation)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type", "Origin"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
