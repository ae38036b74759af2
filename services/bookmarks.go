package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openedu/studyhub/models"
)

// BookmarkOutcome is the result of a bookmark toggle.
type BookmarkOutcome string

const (
	OutcomeBookmarked   BookmarkOutcome = "bookmarked"
	OutcomeUnbookmarked BookmarkOutcome = "unbookmarked"
)

// BookmarkService maintains the unique user-resource bookmark relation.
type BookmarkService struct {
	db *gorm.DB
}

// NewBookmarkService creates a BookmarkService backed by db.
func NewBookmarkService(db *gorm.DB) *BookmarkService {
	return &BookmarkService{db: db}
}

// Toggle removes the bookmark when present, otherwise creates it. The create
// relies on the (user_id, resource_id) unique index rather than a
// check-then-insert: two concurrent toggles racing past the delete both try
// to insert, the loser hits the index and collapses to Bookmarked.
func (s *BookmarkService) Toggle(ctx context.Context, userID, resourceID uint) (BookmarkOutcome, error) {
	var r models.Resource
	if err := s.db.WithContext(ctx).Select("id").Take(&r, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	del := s.db.WithContext(ctx).
		Where("user_id = ? AND resource_id = ?", userID, resourceID).
		Delete(&models.Bookmark{})
	if del.Error != nil {
		return "", del.Error
	}
	if del.RowsAffected > 0 {
		return OutcomeUnbookmarked, nil
	}

	ins := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "resource_id"}},
		DoNothing: true,
	}).Create(&models.Bookmark{UserID: userID, ResourceID: resourceID})
	if ins.Error != nil {
		return "", ins.Error
	}
	// RowsAffected == 0 means a concurrent toggle inserted first; either way
	// the bookmark now exists.
	return OutcomeBookmarked, nil
}

// List returns the user's bookmarked resources, most recently saved first.
// Trashed resources stay hidden from the saved-items view.
func (s *BookmarkService) List(ctx context.Context, userID uint) ([]models.Resource, error) {
	var resources []models.Resource
	err := s.db.WithContext(ctx).
		Joins("JOIN bookmarks ON bookmarks.resource_id = resources.id").
		Where("bookmarks.user_id = ? AND resources.deleted_at IS NULL", userID).
		Order("bookmarks.created_at DESC").
		Find(&resources).Error
	return resources, err
}
