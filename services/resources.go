package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/openedu/studyhub/models"
)

// ResourceFilter narrows a resource listing. IncludeTrashed is an explicit
// opt-in; the default listing never shows soft-deleted rows.
type ResourceFilter struct {
	Kind           string
	Category       string
	Subject        string
	Semester       int
	Search         string
	IncludeTrashed bool
	Page           int
	PageSize       int
}

// ResourceInput carries the caller-supplied fields for a new resource.
type ResourceInput struct {
	OwnerID     uint
	Title       string
	Description string
	Kind        string
	Category    string
	Subject     string
	Semester    int
	FileKey     string
}

// ResourceService handles resource creation and read paths.
type ResourceService struct {
	db *gorm.DB
}

// NewResourceService creates a ResourceService backed by db.
func NewResourceService(db *gorm.DB) *ResourceService {
	return &ResourceService{db: db}
}

// Create stores a new Active resource with zeroed counters.
func (s *ResourceService) Create(ctx context.Context, in ResourceInput) (*models.Resource, error) {
	if in.Title == "" {
		return nil, &ValidationError{Field: "title", Reason: "required"}
	}
	if in.OwnerID == 0 {
		return nil, &ValidationError{Field: "owner_id", Reason: "required"}
	}
	if !models.ValidKind(in.Kind) {
		return nil, &ValidationError{Field: "kind", Reason: "unknown resource kind"}
	}
	if in.Category == "" {
		in.Category = models.CategoryStudy
	}
	if !models.ValidCategory(in.Category) {
		return nil, &ValidationError{Field: "category", Reason: "unknown category"}
	}

	resource := models.Resource{
		OwnerID:     in.OwnerID,
		Title:       in.Title,
		Description: in.Description,
		Kind:        in.Kind,
		Category:    in.Category,
		Subject:     in.Subject,
		Semester:    in.Semester,
		FileKey:     in.FileKey,
	}
	if err := s.db.WithContext(ctx).Create(&resource).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

// List returns a page of resources matching f plus the total match count.
func (s *ResourceService) List(ctx context.Context, f ResourceFilter) ([]models.Resource, int64, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size < 1 || size > 100 {
		size = 10
	}

	q := s.db.WithContext(ctx).Model(&models.Resource{})
	if !f.IncludeTrashed {
		q = q.Where("deleted_at IS NULL")
	}
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Subject != "" {
		q = q.Where("subject = ?", f.Subject)
	}
	if f.Semester > 0 {
		q = q.Where("semester = ?", f.Semester)
	}
	if f.Search != "" {
		q = q.Where("title LIKE ? OR description LIKE ?", "%"+f.Search+"%", "%"+f.Search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var resources []models.Resource
	err := q.Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&resources).Error
	return resources, total, err
}

// Get loads one resource with its daily view buckets ordered by day.
func (s *ResourceService) Get(ctx context.Context, id uint, includeTrashed bool) (*models.Resource, error) {
	q := s.db.WithContext(ctx).Preload("DailyViews", func(db *gorm.DB) *gorm.DB {
		return db.Order("view_date ASC")
	})
	if !includeTrashed {
		q = q.Where("deleted_at IS NULL")
	}

	var resource models.Resource
	if err := q.Take(&resource, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &resource, nil
}
