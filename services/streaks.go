package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/openedu/studyhub/models"
)

// StreakService derives a user's consecutive-activity streak from the event
// log at login time. Any engagement event counts as qualifying activity,
// regardless of which resource it touched.
type StreakService struct {
	db *gorm.DB
}

// NewStreakService creates a StreakService backed by db.
func NewStreakService(db *gorm.DB) *StreakService {
	return &StreakService{db: db}
}

// ComputeStreak recomputes and returns the streak as of now:
//   - activity today: streak becomes at least 1, keeping a larger stored value;
//   - activity yesterday but none yet today: the stored streak stands, giving
//     the user until end of day to keep it alive;
//   - neither: the streak resets to 0.
//
// The user row is written only when the value actually changed.
func (s *StreakService) ComputeStreak(ctx context.Context, userID uint, now time.Time) (int, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Take(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	hasToday, err := s.hasEventSince(ctx, userID, today)
	if err != nil {
		return 0, err
	}
	hasYesterday, err := s.hasEventBetween(ctx, userID, yesterday, today)
	if err != nil {
		return 0, err
	}

	streak := user.StreakDays
	switch {
	case hasToday:
		if streak < 1 {
			streak = 1
		}
	case hasYesterday:
		// Grace period: yesterday's streak survives until today ends.
	default:
		streak = 0
	}

	if streak != user.StreakDays {
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", userID).
			Update("streak_days", streak).Error; err != nil {
			return 0, err
		}
	}
	return streak, nil
}

func (s *StreakService) hasEventBetween(ctx context.Context, userID uint, from, to time.Time) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.EngagementEvent{}).
		Where("user_id = ? AND occurred_at >= ? AND occurred_at < ?", userID, from, to).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

// hasEventSince has no upper bound: an event stamped slightly ahead of this
// process's clock still counts as today's activity.
func (s *StreakService) hasEventSince(ctx context.Context, userID uint, from time.Time) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.EngagementEvent{}).
		Where("user_id = ? AND occurred_at >= ?", userID, from).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}
