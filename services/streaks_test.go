package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openedu/studyhub/models"
)

func seedEvent(t *testing.T, db *gorm.DB, userID uint, at time.Time) {
	t.Helper()
	event := models.EngagementEvent{
		EventID:    uuid.NewString(),
		UserID:     userID,
		Kind:       models.EventView,
		ResourceID: uintPtr(1),
		OccurredAt: at,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
}

func setStoredStreak(t *testing.T, db *gorm.DB, userID uint, days int) {
	t.Helper()
	if err := db.Model(&models.User{}).Where("id = ?", userID).Update("streak_days", days).Error; err != nil {
		t.Fatalf("failed to set streak: %v", err)
	}
}

func TestComputeStreakActivityToday(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStreakService(db)
	user := createTestUser(t, db, "asha")

	now := utcDate(2024, 3, 21, 12)
	seedEvent(t, db, user.ID, utcDate(2024, 3, 21, 9))

	streak, err := svc.ComputeStreak(context.Background(), user.ID, now)
	if err != nil {
		t.Fatalf("ComputeStreak returned error: %v", err)
	}
	if streak != 1 {
		t.Fatalf("expected streak 1 with no prior streak, got %d", streak)
	}

	// A larger stored streak survives today's activity.
	setStoredStreak(t, db, user.ID, 5)
	streak, err = svc.ComputeStreak(context.Background(), user.ID, now)
	if err != nil {
		t.Fatalf("ComputeStreak returned error: %v", err)
	}
	if streak != 5 {
		t.Fatalf("expected streak 5 kept, got %d", streak)
	}
}

func TestComputeStreakCountsEventsAheadOfClock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStreakService(db)
	user := createTestUser(t, db, "asha")

	// A writer with a slightly faster clock stamped the event after our now;
	// it is still today's activity.
	now := utcDate(2024, 3, 21, 12)
	seedEvent(t, db, user.ID, now.Add(2*time.Minute))

	streak, err := svc.ComputeStreak(context.Background(), user.ID, now)
	if err != nil {
		t.Fatalf("ComputeStreak returned error: %v", err)
	}
	if streak != 1 {
		t.Fatalf("expected streak 1 for ahead-of-clock event, got %d", streak)
	}
}

func TestComputeStreakGracePeriod(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStreakService(db)
	user := createTestUser(t, db, "asha")
	setStoredStreak(t, db, user.ID, 4)

	// Event yesterday at 10:00, nothing yet today.
	seedEvent(t, db, user.ID, utcDate(2024, 3, 20, 10))

	streak, err := svc.ComputeStreak(context.Background(), user.ID, utcDate(2024, 3, 21, 8))
	if err != nil {
		t.Fatalf("ComputeStreak returned error: %v", err)
	}
	if streak != 4 {
		t.Fatalf("expected stored streak 4 unchanged during grace period, got %d", streak)
	}

	var got models.User
	db.Take(&got, user.ID)
	if got.StreakDays != 4 {
		t.Fatalf("expected stored streak untouched, got %d", got.StreakDays)
	}
}

func TestComputeStreakResets(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStreakService(db)
	user := createTestUser(t, db, "asha")
	setStoredStreak(t, db, user.ID, 4)

	// Last activity three days ago.
	seedEvent(t, db, user.ID, utcDate(2024, 3, 18, 10))

	streak, err := svc.ComputeStreak(context.Background(), user.ID, utcDate(2024, 3, 21, 8))
	if err != nil {
		t.Fatalf("ComputeStreak returned error: %v", err)
	}
	if streak != 0 {
		t.Fatalf("expected streak reset to 0, got %d", streak)
	}

	var got models.User
	db.Take(&got, user.ID)
	if got.StreakDays != 0 {
		t.Fatalf("expected reset persisted, got %d", got.StreakDays)
	}
}

func TestComputeStreakUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStreakService(db)

	if _, err := svc.ComputeStreak(context.Background(), 999, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
