package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openedu/studyhub/config"
	"github.com/openedu/studyhub/controllers"
	"github.com/openedu/studyhub/middleware"
	"github.com/openedu/studyhub/services"
	"github.com/openedu/studyhub/utils"
)

// SetupRouter wires routes, middlewares, services, and controllers.
func SetupRouter(db *gorm.DB, files services.FileStore) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.GinLogger())
	r.Use(utils.GinRecovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Services share one DB handle; the lifecycle manager additionally talks
	// to the file storage collaborator.
	events := services.NewEventStore(db)
	counters := services.NewCounterService(db)
	engagement := services.NewEngagementService(events, counters)
	bookmarks := services.NewBookmarkService(db)
	resources := services.NewResourceService(db)
	lifecycle := services.NewLifecycleService(db, files, utils.Sugar)
	streaks := services.NewStreakService(db)
	analytics := services.NewAnalyticsService(db)

	resourceCtrl := controllers.NewResourceController(resources, lifecycle)
	engagementCtrl := controllers.NewEngagementController(engagement, counters)
	bookmarkCtrl := controllers.NewBookmarkController(bookmarks, engagement)
	activityCtrl := controllers.NewActivityController(streaks)
	statsCtrl := controllers.NewStatsController(db, analytics)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware())
	{
		api.GET("/resources", resourceCtrl.ListResources)
		api.GET("/resources/:id", resourceCtrl.GetResource)
		api.GET("/stats", statsCtrl.GetStats)
		api.GET("/resources/:id/analytics/daily", statsCtrl.DailyViews)

		authed := api.Group("")
		authed.Use(middleware.AuthRequired())
		{
			authed.POST("/resources", resourceCtrl.CreateResource)
			authed.DELETE("/resources/:id", resourceCtrl.SoftDelete)
			authed.POST("/resources/:id/restore", resourceCtrl.Restore)
			authed.DELETE("/resources/:id/purge", resourceCtrl.Purge)
			authed.POST("/resources/:id/reconcile", statsCtrl.Reconcile)

			authed.POST("/events", engagementCtrl.RecordEvent)
			authed.POST("/resources/:id/view", engagementCtrl.View)
			authed.POST("/resources/:id/download", engagementCtrl.Download)
			authed.POST("/resources/:id/like", engagementCtrl.Like)
			authed.DELETE("/resources/:id/like", engagementCtrl.Unlike)
			authed.POST("/resources/:id/comment", engagementCtrl.Comment)

			authed.POST("/resources/:id/bookmark", bookmarkCtrl.Toggle)
			authed.GET("/bookmarks", bookmarkCtrl.List)

			authed.GET("/activity/streak", activityCtrl.Streak)
		}
	}

	return r
}
