package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openedu/studyhub/models"
	"github.com/openedu/studyhub/services"
	"github.com/openedu/studyhub/utils"
)

// StatsController provides platform statistics and the analytics read paths
// that treat the event log as the source of truth.
type StatsController struct {
	db        *gorm.DB
	analytics *services.AnalyticsService
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB, analytics *services.AnalyticsService) *StatsController {
	return &StatsController{db: db, analytics: analytics}
}

// GetStats returns aggregate statistics for the platform.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var resourceCount int64
	var eventCount int64
	var bookmarkCount int64
	var todayViews int64

	// Fall back to 0 instead of failing the whole endpoint.
	if err := s.db.Model(&models.Resource{}).Where("deleted_at IS NULL").Count(&resourceCount).Error; err != nil {
		resourceCount = 0
	}
	if err := s.db.Model(&models.EngagementEvent{}).Count(&eventCount).Error; err != nil {
		eventCount = 0
	}
	if err := s.db.Model(&models.Bookmark{}).Count(&bookmarkCount).Error; err != nil {
		bookmarkCount = 0
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := s.db.Model(&models.ResourceDailyView{}).
		Where("view_date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&todayViews).Error; err != nil {
		todayViews = 0
	}

	utils.Success(ctx, gin.H{
		"resource_count": resourceCount,
		"event_count":    eventCount,
		"bookmark_count": bookmarkCount,
		"today_views":    todayViews,
	})
}

// DailyViews recomputes a resource's daily view history from the event log.
// Analytics reads bypass the cached buckets entirely.
func (s *StatsController) DailyViews(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	days, _ := strconv.Atoi(ctx.DefaultQuery("days", "7"))

	buckets, err := s.analytics.DailyViewsFromEvents(ctx.Request.Context(), id, days)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"daily_views": buckets})
}

// Reconcile replays the event log for one resource and repairs its cached
// counters and buckets.
func (s *StatsController) Reconcile(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	report, err := s.analytics.Reconcile(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:resource:detail:" + ctx.Param("id"))
	utils.Success(ctx, gin.H{"reconciled": report})
}
