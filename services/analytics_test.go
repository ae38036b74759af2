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

func seedViewEvent(t *testing.T, db *gorm.DB, resourceID uint, at string) {
	t.Helper()
	occurred, err := time.Parse(time.RFC3339, at)
	if err != nil {
		t.Fatalf("bad time %s: %v", at, err)
	}
	event := models.EngagementEvent{
		EventID:    uuid.NewString(),
		UserID:     7,
		Kind:       models.EventView,
		ResourceID: uintPtr(resourceID),
		OccurredAt: occurred,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to seed view event: %v", err)
	}
}

func TestReconcileRebuildsCountersFromLog(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAnalyticsService(db)
	counters := NewCounterService(db)
	resource := createTestResource(t, db, "intro-to-go")

	seedViewEvent(t, db, resource.ID, "2024-03-20T09:00:00Z")
	seedViewEvent(t, db, resource.ID, "2024-03-20T15:00:00Z")
	seedViewEvent(t, db, resource.ID, "2024-03-21T09:00:00Z")
	if _, err := counters.ApplyLike(context.Background(), resource.ID, 7); err != nil {
		t.Fatalf("ApplyLike returned error: %v", err)
	}

	// Drift the cached counters and buckets away from the log.
	db.Model(&models.Resource{}).Where("id = ?", resource.ID).
		Updates(map[string]interface{}{"views": 99, "downloads": 12, "comments": 5})
	db.Create(&models.ResourceDailyView{ResourceID: resource.ID, ViewDate: utcDate(2024, 1, 1, 0), Count: 50})

	report, err := svc.Reconcile(context.Background(), resource.ID)
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}
	if report.Views != 3 || report.Downloads != 0 || report.Comments != 0 || report.Likes != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Buckets != 2 {
		t.Fatalf("expected 2 rebuilt buckets, got %d", report.Buckets)
	}

	var got models.Resource
	db.Take(&got, resource.ID)
	if got.Views != 3 || got.Downloads != 0 || got.Comments != 0 || got.Likes != 1 {
		t.Fatalf("counters not repaired: %+v", got)
	}

	var buckets []models.ResourceDailyView
	db.Where("resource_id = ?", resource.ID).Order("view_date ASC").Find(&buckets)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets after rebuild, got %d", len(buckets))
	}
	if buckets[0].Count != 2 || buckets[1].Count != 1 {
		t.Fatalf("unexpected bucket counts: %d, %d", buckets[0].Count, buckets[1].Count)
	}
}

func TestDailyViewsFromEventsUnknownResource(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAnalyticsService(db)

	if _, err := svc.DailyViewsFromEvents(context.Background(), 999, 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBucketByDay(t *testing.T) {
	events := []models.EngagementEvent{
		{OccurredAt: utcDate(2024, 3, 21, 9)},
		{OccurredAt: utcDate(2024, 3, 20, 9)},
		{OccurredAt: utcDate(2024, 3, 20, 23)},
	}

	buckets := bucketByDay(events)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Date != "2024-03-20" || buckets[0].Count != 2 {
		t.Fatalf("unexpected first bucket: %+v", buckets[0])
	}
	if buckets[1].Date != "2024-03-21" || buckets[1].Count != 1 {
		t.Fatalf("unexpected second bucket: %+v", buckets[1])
	}
}
