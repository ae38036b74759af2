package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openedu/studyhub/models"
	"github.com/openedu/studyhub/services"
	"github.com/openedu/studyhub/utils"
)

// BookmarkController handles saving and unsaving resources.
type BookmarkController struct {
	bookmarks  *services.BookmarkService
	engagement *services.EngagementService
}

// NewBookmarkController creates a new controller instance.
func NewBookmarkController(bookmarks *services.BookmarkService, engagement *services.EngagementService) *BookmarkController {
	return &BookmarkController{bookmarks: bookmarks, engagement: engagement}
}

// Toggle flips the bookmark for the caller and resource.
func (b *BookmarkController) Toggle(ctx *gin.Context) {
	resourceID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	outcome, err := b.bookmarks.Toggle(ctx.Request.Context(), userID, resourceID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	if outcome == services.OutcomeBookmarked {
		// Log the save as an engagement event; failures here do not undo the toggle.
		if _, err := b.engagement.RecordEvent(ctx.Request.Context(), services.EventInput{
			UserID:     userID,
			Kind:       models.EventBookmark,
			ResourceID: &resourceID,
			OccurredAt: time.Now().UTC(),
			Source:     "web",
		}); err != nil && utils.Sugar != nil {
			utils.Sugar.Warnf("bookmark event not recorded for resource %d: %v", resourceID, err)
		}
	}

	utils.Success(ctx, gin.H{"outcome": outcome})
}

// List returns the caller's saved resources.
func (b *BookmarkController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	items, err := b.bookmarks.List(ctx.Request.Context(), userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to list bookmarks")
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}
