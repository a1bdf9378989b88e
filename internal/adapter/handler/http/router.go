package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/polasekp/strats/internal/config"
	"github.com/polasekp/strats/internal/core/ports"
)

type Router struct {
	router *gin.Engine
}

func NewRouter(
	cfg *config.HTTP,
	metrics ports.MetricsPort,
	activityHandler *ActivityHandler,
	gearHandler *GearHandler,
	statsHandler *StatsHandler,
	importHandler *ImportHandler,
) (*Router, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigins},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	router.Use(metricsMiddleware(metrics))

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Activities routes
	activities := router.Group("/activities")
	{
		activities.GET("", activityHandler.ListActivities)
		activities.GET("/:id", activityHandler.GetActivity)
		activities.POST("/:id/athletes", activityHandler.AttachAthlete)
	}
	router.POST("/athletes", activityHandler.CreateAthlete)

	// Gear routes
	gears := router.Group("/gears")
	{
		gears.POST("", gearHandler.CreateGear)
		gears.GET("", gearHandler.ListGear)
		gears.GET("/:id", gearHandler.GetGear)
		gears.PUT("/:id", gearHandler.UpdateGear)
		gears.POST("/:id/retire", gearHandler.RetireGear)
		gears.GET("/:id/distance", gearHandler.GetGearDistance)
		gears.GET("/:id/accessories", gearHandler.ListAccessories)
	}

	// Accessories routes
	accessories := router.Group("/accessories")
	{
		accessories.POST("", gearHandler.CreateAccessory)
		accessories.POST("/:id/deregister", gearHandler.DeregisterAccessory)
		accessories.GET("/:id/distance", gearHandler.GetAccessoryDistance)
	}

	// Stats routes
	stats := router.Group("/stats")
	{
		stats.GET("/week", statsHandler.GetWeekStats)
		stats.GET("/year", statsHandler.GetYearStats)
		stats.GET("/season", statsHandler.GetSeasonStats)
	}
	router.GET("/reports/:tag/:year", statsHandler.GetTagYearReport)

	// Import routes
	router.POST("/import", importHandler.RunImport)
	router.POST("/strava/exchange", importHandler.ExchangeCode)
	router.POST("/downloads/:tag", importHandler.DownloadTracks)

	return &Router{router: router}, nil
}

func (r *Router) Serve(addr string) error {
	return r.router.Run(addr)
}

func (r *Router) Engine() *gin.Engine {
	return r.router
}
