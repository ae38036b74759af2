package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openedu/studyhub/models"
	"github.com/openedu/studyhub/services"
	"github.com/openedu/studyhub/utils"
)

// EngagementController accepts engagement events from clients. Each accepted
// event feeds the resource counters through the engagement service.
type EngagementController struct {
	engagement *services.EngagementService
	counters   *services.CounterService
}

// NewEngagementController creates a new controller instance.
func NewEngagementController(engagement *services.EngagementService, counters *services.CounterService) *EngagementController {
	return &EngagementController{engagement: engagement, counters: counters}
}

// RecordEvent accepts a generic engagement event.
func (e *EngagementController) RecordEvent(ctx *gin.Context) {
	var req struct {
		Kind       string `json:"kind" binding:"required"`
		ResourceID *uint  `json:"resource_id"`
		Message    string `json:"message"`
		Source     string `json:"source"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	source := req.Source
	if source == "" {
		source = "web"
	}

	outcome, err := e.engagement.RecordEvent(ctx.Request.Context(), services.EventInput{
		UserID:     userID,
		Kind:       req.Kind,
		ResourceID: req.ResourceID,
		OccurredAt: time.Now().UTC(),
		Message:    utils.Sanitize(req.Message),
		Source:     source,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"outcome": outcome})
}

// View records a view event for one resource.
func (e *EngagementController) View(ctx *gin.Context) {
	e.recordKind(ctx, models.EventView)
}

// Download records a download event for one resource.
func (e *EngagementController) Download(ctx *gin.Context) {
	e.recordKind(ctx, models.EventDownload)
}

// Like records a like event; the liked-by set keeps it idempotent.
func (e *EngagementController) Like(ctx *gin.Context) {
	e.recordKind(ctx, models.EventLike)
}

// Comment records a comment event. Comment bodies are stored by the
// discussion service; only the counter lives here.
func (e *EngagementController) Comment(ctx *gin.Context) {
	e.recordKind(ctx, models.EventComment)
}

// Unlike removes the caller's like. Unlike is a counter operation only and
// leaves no engagement event behind.
func (e *EngagementController) Unlike(ctx *gin.Context) {
	resourceID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	outcome, err := e.counters.ApplyUnlike(ctx.Request.Context(), resourceID, userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"outcome": outcome})
}

func (e *EngagementController) recordKind(ctx *gin.Context, kind string) {
	resourceID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	outcome, err := e.engagement.RecordEvent(ctx.Request.Context(), services.EventInput{
		UserID:     userID,
		Kind:       kind,
		ResourceID: &resourceID,
		OccurredAt: time.Now().UTC(),
		Source:     "web",
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	// Counter writes invalidate the cached detail payload.
	utils.InvalidateByPrefix("cache:resource:detail:" + ctx.Param("id"))
	utils.Success(ctx, gin.H{"outcome": outcome})
}
