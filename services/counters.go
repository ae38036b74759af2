package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openedu/studyhub/models"
)

// LikeOutcome tells the caller whether a like or unlike changed anything.
type LikeOutcome string

const (
	OutcomeLiked        LikeOutcome = "liked"
	OutcomeAlreadyLiked LikeOutcome = "already_liked"
	OutcomeUnliked      LikeOutcome = "unliked"
	OutcomeNotLiked     LikeOutcome = "not_liked"
)

// CounterService keeps the denormalized per-resource counters and the daily
// view buckets in step with accepted events. Every mutation is a single
// atomic SQL statement; no counter is ever read into memory, bumped, and
// written back.
type CounterService struct {
	db *gorm.DB
}

// NewCounterService creates a CounterService backed by db.
func NewCounterService(db *gorm.DB) *CounterService {
	return &CounterService{db: db}
}

// ApplyView bumps the view counter, refreshes last_viewed_at, and increments
// the daily bucket for at's UTC calendar day. The bucket find-or-create is a
// single upsert on the (resource_id, view_date) unique index, so concurrent
// first views of a day cannot create duplicate rows. Counter and bucket move
// in one transaction; the sum of buckets never drifts from the views column.
func (s *CounterService) ApplyView(ctx context.Context, resourceID uint, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Resource{}).
			Where("id = ?", resourceID).
			Updates(map[string]interface{}{
				"views":          gorm.Expr("views + ?", 1),
				"last_viewed_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "resource_id"}, {Name: "view_date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"count":      gorm.Expr("count + 1"),
				"updated_at": time.Now(),
			}),
		}).Create(&models.ResourceDailyView{
			ResourceID: resourceID,
			ViewDate:   day,
			Count:      1,
		}).Error
	})
}

// ApplyDownload bumps the download counter by one.
func (s *CounterService) ApplyDownload(ctx context.Context, resourceID uint) error {
	return s.bump(ctx, resourceID, "downloads")
}

// ApplyComment bumps the comment counter by one. Comment content itself is
// stored by the discussion service.
func (s *CounterService) ApplyComment(ctx context.Context, resourceID uint) error {
	return s.bump(ctx, resourceID, "comments")
}

func (s *CounterService) bump(ctx context.Context, resourceID uint, column string) error {
	res := s.db.WithContext(ctx).Model(&models.Resource{}).
		Where("id = ?", resourceID).
		Update(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyLike adds userID to the resource's liked-by set and bumps the likes
// counter. The set membership is a row insert guarded by a unique index; a
// conflict means the user already likes the resource and nothing changes.
func (s *CounterService) ApplyLike(ctx context.Context, resourceID, userID uint) (LikeOutcome, error) {
	if err := s.requireResource(ctx, resourceID); err != nil {
		return "", err
	}

	ins := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "resource_id"}},
		DoNothing: true,
	}).Create(&models.ResourceLike{UserID: userID, ResourceID: resourceID})
	if ins.Error != nil {
		return "", ins.Error
	}
	if ins.RowsAffected == 0 {
		return OutcomeAlreadyLiked, nil
	}

	if err := s.bump(ctx, resourceID, "likes"); err != nil {
		return "", err
	}
	return OutcomeLiked, nil
}

// ApplyUnlike removes userID from the liked-by set and decrements the likes
// counter. Absent likes are a no-op.
func (s *CounterService) ApplyUnlike(ctx context.Context, resourceID, userID uint) (LikeOutcome, error) {
	if err := s.requireResource(ctx, resourceID); err != nil {
		return "", err
	}

	del := s.db.WithContext(ctx).
		Where("user_id = ? AND resource_id = ?", userID, resourceID).
		Delete(&models.ResourceLike{})
	if del.Error != nil {
		return "", del.Error
	}
	if del.RowsAffected == 0 {
		return OutcomeNotLiked, nil
	}

	// Guarded decrement: likes never drops below zero even if the counter and
	// the like rows have drifted apart.
	if err := s.db.WithContext(ctx).Model(&models.Resource{}).
		Where("id = ? AND likes > 0", resourceID).
		Update("likes", gorm.Expr("likes - ?", 1)).Error; err != nil {
		return "", err
	}
	return OutcomeUnliked, nil
}

func (s *CounterService) requireResource(ctx context.Context, resourceID uint) error {
	var r models.Resource
	err := s.db.WithContext(ctx).Select("id").Take(&r, resourceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
