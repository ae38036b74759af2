package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openedu/studyhub/services"
	"github.com/openedu/studyhub/utils"
)

// ResourceController manages resource creation, reads, and the trash lifecycle.
type ResourceController struct {
	resources *services.ResourceService
	lifecycle *services.LifecycleService
}

// NewResourceController creates a new controller instance.
func NewResourceController(resources *services.ResourceService, lifecycle *services.LifecycleService) *ResourceController {
	return &ResourceController{resources: resources, lifecycle: lifecycle}
}

// CreateResource registers a new shareable resource. The file asset itself is
// uploaded through the ingest service, which supplies the file key.
func (r *ResourceController) CreateResource(ctx *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,min=1"`
		Description string `json:"description"`
		Kind        string `json:"kind" binding:"required"`
		Category    string `json:"category"`
		Subject     string `json:"subject"`
		Semester    int    `json:"semester"`
		FileKey     string `json:"file_key"`
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

	resource, err := r.resources.Create(ctx.Request.Context(), services.ResourceInput{
		OwnerID:     userID,
		Title:       utils.Sanitize(strings.TrimSpace(req.Title)),
		Description: utils.Sanitize(req.Description),
		Kind:        req.Kind,
		Category:    req.Category,
		Subject:     strings.TrimSpace(req.Subject),
		Semester:    req.Semester,
		FileKey:     req.FileKey,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:resources:list:")
	utils.Success(ctx, gin.H{"resource": resource})
}

// ListResources returns paginated resources. Trashed rows appear only when
// include_trashed=true is passed explicitly.
func (r *ResourceController) ListResources(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	semester, _ := strconv.Atoi(ctx.Query("semester"))
	filter := services.ResourceFilter{
		Kind:           strings.TrimSpace(ctx.Query("kind")),
		Category:       strings.TrimSpace(ctx.Query("category")),
		Subject:        strings.TrimSpace(ctx.Query("subject")),
		Semester:       semester,
		Search:         strings.TrimSpace(ctx.Query("search")),
		IncludeTrashed: ctx.Query("include_trashed") == "true",
		Page:           page,
		PageSize:       pageSize,
	}

	// Cache only the plain listing; searches and trash views bypass the cache.
	cacheable := filter.Search == "" && !filter.IncludeTrashed
	cacheKey := fmt.Sprintf("cache:resources:list:kind=%s:cat=%s:sub=%s:sem=%d:page=%d:size=%d",
		filter.Kind, filter.Category, filter.Subject, filter.Semester, page, pageSize)
	if cacheable {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(200, "application/json", b)
			return
		}
	}

	resources, total, err := r.resources.List(ctx.Request.Context(), filter)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list resources")
		return
	}

	payload := gin.H{
		"items": resources,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}
	if cacheable {
		wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
		utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	}
	utils.Success(ctx, payload)
}

// GetResource returns one resource with its daily view buckets.
func (r *ResourceController) GetResource(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	includeTrashed := ctx.Query("include_trashed") == "true"

	if !includeTrashed {
		if b, ok := utils.CacheGetBytes("cache:resource:detail:" + ctx.Param("id")); ok {
			ctx.Data(200, "application/json", b)
			return
		}
	}

	resource, err := r.resources.Get(ctx.Request.Context(), id, includeTrashed)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	if !includeTrashed {
		wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"resource": resource}}
		utils.CacheSetJSON("cache:resource:detail:"+ctx.Param("id"), wrapper, time.Hour)
	}
	utils.Success(ctx, gin.H{"resource": resource})
}

// SoftDelete moves a resource to the trash. The response carries a warning
// when the file asset could not be removed.
func (r *ResourceController) SoftDelete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	result, err := r.lifecycle.SoftDelete(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	r.invalidate(ctx.Param("id"))
	utils.Success(ctx, result)
}

// Restore brings a trashed resource back to the active state.
func (r *ResourceController) Restore(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := r.lifecycle.Restore(ctx.Request.Context(), id); err != nil {
		respondServiceError(ctx, err)
		return
	}

	r.invalidate(ctx.Param("id"))
	utils.Success(ctx, gin.H{"state": services.StateActive})
}

// Purge permanently removes a trashed resource.
func (r *ResourceController) Purge(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := r.lifecycle.Purge(ctx.Request.Context(), id); err != nil {
		respondServiceError(ctx, err)
		return
	}

	r.invalidate(ctx.Param("id"))
	utils.Success(ctx, gin.H{"state": services.StateRemoved})
}

func (r *ResourceController) invalidate(id string) {
	utils.InvalidateByPrefix("cache:resources:list:")
	utils.InvalidateByPrefix("cache:resource:detail:" + id)
}
