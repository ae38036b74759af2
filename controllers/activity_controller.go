package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openedu/studyhub/services"
	"github.com/openedu/studyhub/utils"
)

// ActivityController exposes the login-time streak computation.
type ActivityController struct {
	streaks *services.StreakService
}

// NewActivityController creates a new controller instance.
func NewActivityController(streaks *services.StreakService) *ActivityController {
	return &ActivityController{streaks: streaks}
}

// Streak recomputes and returns the caller's consecutive-activity streak.
// The request layer calls this once per login.
func (a *ActivityController) Streak(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	streak, err := a.streaks.ComputeStreak(ctx.Request.Context(), userID, time.Now())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"streak_days": streak})
}
