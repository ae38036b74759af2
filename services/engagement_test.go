package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/openedu/studyhub/models"
)

func newEngagement(db *gorm.DB) *EngagementService {
	return NewEngagementService(NewEventStore(db), NewCounterService(db))
}

func TestRecordEventFeedsCountersOncePerCreated(t *testing.T) {
	db := setupTestDB(t)
	svc := newEngagement(db)
	resource := createTestResource(t, db, "intro-to-go")

	base := utcDate(2024, 3, 20, 9)
	in := EventInput{
		UserID:     7,
		Kind:       models.EventView,
		ResourceID: uintPtr(resource.ID),
		OccurredAt: base,
		Source:     "web",
	}

	outcome, err := svc.RecordEvent(context.Background(), in)
	if err != nil {
		t.Fatalf("RecordEvent returned error: %v", err)
	}
	if outcome != OutcomeCreated {
		t.Fatalf("expected created, got %s", outcome)
	}

	// A reload 20 seconds later is a refresh and must not touch the counter.
	in.OccurredAt = base.Add(20 * time.Second)
	outcome, err = svc.RecordEvent(context.Background(), in)
	if err != nil {
		t.Fatalf("second RecordEvent returned error: %v", err)
	}
	if outcome != OutcomeRefreshed {
		t.Fatalf("expected refreshed, got %s", outcome)
	}

	var got models.Resource
	db.Take(&got, resource.ID)
	if got.Views != 1 {
		t.Fatalf("expected views=1 after refresh, got %d", got.Views)
	}

	var sum int64
	db.Model(&models.ResourceDailyView{}).Where("resource_id = ?", resource.ID).Select("COALESCE(SUM(count),0)").Scan(&sum)
	if sum != 1 {
		t.Fatalf("expected bucket sum 1, got %d", sum)
	}
}

func TestRecordEventLikeUpdatesLikeSet(t *testing.T) {
	db := setupTestDB(t)
	svc := newEngagement(db)
	resource := createTestResource(t, db, "intro-to-go")

	outcome, err := svc.RecordEvent(context.Background(), EventInput{
		UserID:     7,
		Kind:       models.EventLike,
		ResourceID: uintPtr(resource.ID),
		OccurredAt: utcDate(2024, 3, 20, 9),
	})
	if err != nil {
		t.Fatalf("RecordEvent returned error: %v", err)
	}
	if outcome != OutcomeCreated {
		t.Fatalf("expected created, got %s", outcome)
	}

	var got models.Resource
	db.Take(&got, resource.ID)
	if got.Likes != 1 {
		t.Fatalf("expected likes=1, got %d", got.Likes)
	}

	var likeRows int64
	db.Model(&models.ResourceLike{}).Where("resource_id = ? AND user_id = ?", resource.ID, 7).Count(&likeRows)
	if likeRows != 1 {
		t.Fatalf("expected like row for user, got %d", likeRows)
	}
}

func TestRecordEventDownload(t *testing.T) {
	db := setupTestDB(t)
	svc := newEngagement(db)
	resource := createTestResource(t, db, "intro-to-go")

	if _, err := svc.RecordEvent(context.Background(), EventInput{
		UserID:     7,
		Kind:       models.EventDownload,
		ResourceID: uintPtr(resource.ID),
		OccurredAt: utcDate(2024, 3, 20, 9),
	}); err != nil {
		t.Fatalf("RecordEvent returned error: %v", err)
	}

	var got models.Resource
	db.Take(&got, resource.ID)
	if got.Downloads != 1 {
		t.Fatalf("expected downloads=1, got %d", got.Downloads)
	}
}
