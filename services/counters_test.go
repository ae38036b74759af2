package services

import (
	"context"
	"errors"
	"testing"

	"github.com/openedu/studyhub/models"
)

func TestApplyViewCountsAndBuckets(t *testing.T) {
	db := setupTestDB(t)
	counters := NewCounterService(db)
	resource := createTestResource(t, db, "intro-to-go")

	march20 := utcDate(2024, 3, 20, 9)
	march21 := utcDate(2024, 3, 21, 9)
	for i := 0; i < 3; i++ {
		if err := counters.ApplyView(context.Background(), resource.ID, march20); err != nil {
			t.Fatalf("ApplyView returned error: %v", err)
		}
	}
	if err := counters.ApplyView(context.Background(), resource.ID, march21); err != nil {
		t.Fatalf("ApplyView returned error: %v", err)
	}

	var got models.Resource
	if err := db.Take(&got, resource.ID).Error; err != nil {
		t.Fatalf("failed to reload resource: %v", err)
	}
	if got.Views != 4 {
		t.Fatalf("expected views=4, got %d", got.Views)
	}
	if got.LastViewedAt == nil || !got.LastViewedAt.Equal(march21) {
		t.Fatalf("expected last_viewed_at=%v, got %v", march21, got.LastViewedAt)
	}

	var buckets []models.ResourceDailyView
	if err := db.Where("resource_id = ?", resource.ID).Order("view_date ASC").Find(&buckets).Error; err != nil {
		t.Fatalf("failed to load buckets: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("expected 2 daily buckets, got %d", len(buckets))
	}
	if buckets[0].ViewDate.UTC().Format("2006-01-02") != "2024-03-20" || buckets[0].Count != 3 {
		t.Fatalf("unexpected first bucket: %s count=%d", buckets[0].ViewDate, buckets[0].Count)
	}
	if buckets[1].ViewDate.UTC().Format("2006-01-02") != "2024-03-21" || buckets[1].Count != 1 {
		t.Fatalf("unexpected second bucket: %s count=%d", buckets[1].ViewDate, buckets[1].Count)
	}

	// Sum of buckets always equals the views counter.
	var sum int64
	db.Model(&models.ResourceDailyView{}).Where("resource_id = ?", resource.ID).Select("COALESCE(SUM(count),0)").Scan(&sum)
	if uint64(sum) != got.Views {
		t.Fatalf("bucket sum %d diverged from views counter %d", sum, got.Views)
	}
}

func TestApplyViewRollsBackWhenBucketWriteFails(t *testing.T) {
	db := setupTestDB(t)
	counters := NewCounterService(db)
	resource := createTestResource(t, db, "intro-to-go")

	// Force the bucket write to fail; the counter bump must roll back with it.
	if err := db.Migrator().DropTable(&models.ResourceDailyView{}); err != nil {
		t.Fatalf("failed to drop bucket table: %v", err)
	}

	if err := counters.ApplyView(context.Background(), resource.ID, utcDate(2024, 3, 20, 9)); err == nil {
		t.Fatal("expected ApplyView to fail without the bucket table")
	}

	var got models.Resource
	if err := db.Take(&got, resource.ID).Error; err != nil {
		t.Fatalf("failed to reload resource: %v", err)
	}
	if got.Views != 0 {
		t.Fatalf("expected views untouched after rollback, got %d", got.Views)
	}
	if got.LastViewedAt != nil {
		t.Fatalf("expected last_viewed_at untouched after rollback, got %v", got.LastViewedAt)
	}
}

func TestApplyViewUnknownResource(t *testing.T) {
	db := setupTestDB(t)
	counters := NewCounterService(db)

	err := counters.ApplyView(context.Background(), 999, utcDate(2024, 3, 20, 9))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyDownloadAndComment(t *testing.T) {
	db := setupTestDB(t)
	counters := NewCounterService(db)
	resource := createTestResource(t, db, "intro-to-go")

	if err := counters.ApplyDownload(context.Background(), resource.ID); err != nil {
		t.Fatalf("ApplyDownload returned error: %v", err)
	}
	if err := counters.ApplyComment(context.Background(), resource.ID); err != nil {
		t.Fatalf("ApplyComment returned error: %v", err)
	}
	if err := counters.ApplyComment(context.Background(), resource.ID); err != nil {
		t.Fatalf("ApplyComment returned error: %v", err)
	}

	var got models.Resource
	db.Take(&got, resource.ID)
	if got.Downloads != 1 || got.Comments != 2 {
		t.Fatalf("expected downloads=1 comments=2, got %d/%d", got.Downloads, got.Comments)
	}
}

func TestLikeIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	counters := NewCounterService(db)
	resource := createTestResource(t, db, "intro-to-go")

	outcome, err := counters.ApplyLike(context.Background(), resource.ID, 7)
	if err != nil {
		t.Fatalf("ApplyLike returned error: %v", err)
	}
	if outcome != OutcomeLiked {
		t.Fatalf("expected liked, got %s", outcome)
	}

	outcome, err = counters.ApplyLike(context.Background(), resource.ID, 7)
	if err != nil {
		t.Fatalf("second ApplyLike returned error: %v", err)
	}
	if outcome != OutcomeAlreadyLiked {
		t.Fatalf("expected already_liked, got %s", outcome)
	}

	var got models.Resource
	db.Take(&got, resource.ID)
	if got.Likes != 1 {
		t.Fatalf("expected likes=1 after duplicate like, got %d", got.Likes)
	}

	var likeRows int64
	db.Model(&models.ResourceLike{}).Where("resource_id = ?", resource.ID).Count(&likeRows)
	if likeRows != 1 {
		t.Fatalf("expected 1 like row, got %d", likeRows)
	}
}

func TestUnlike(t *testing.T) {
	db := setupTestDB(t)
	counters := NewCounterService(db)
	resource := createTestResource(t, db, "intro-to-go")

	if _, err := counters.ApplyLike(context.Background(), resource.ID, 7); err != nil {
		t.Fatalf("ApplyLike returned error: %v", err)
	}

	outcome, err := counters.ApplyUnlike(context.Background(), resource.ID, 7)
	if err != nil {
		t.Fatalf("ApplyUnlike returned error: %v", err)
	}
	if outcome != OutcomeUnliked {
		t.Fatalf("expected unliked, got %s", outcome)
	}

	outcome, err = counters.ApplyUnlike(context.Background(), resource.ID, 7)
	if err != nil {
		t.Fatalf("second ApplyUnlike returned error: %v", err)
	}
	if outcome != OutcomeNotLiked {
		t.Fatalf("expected not_liked, got %s", outcome)
	}

	var got models.Resource
	db.Take(&got, resource.ID)
	if got.Likes != 0 {
		t.Fatalf("expected likes=0, got %d", got.Likes)
	}
}

func TestLikeUnknownResource(t *testing.T) {
	db := setupTestDB(t)
	counters := NewCounterService(db)

	if _, err := counters.ApplyLike(context.Background(), 999, 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := counters.ApplyUnlike(context.Background(), 999, 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
