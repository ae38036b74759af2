package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openedu/studyhub/models"
)

func TestToggleBookmark(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookmarkService(db)
	resource := createTestResource(t, db, "intro-to-go")

	outcome, err := svc.Toggle(context.Background(), 7, resource.ID)
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if outcome != OutcomeBookmarked {
		t.Fatalf("expected bookmarked, got %s", outcome)
	}

	outcome, err = svc.Toggle(context.Background(), 7, resource.ID)
	if err != nil {
		t.Fatalf("second Toggle returned error: %v", err)
	}
	if outcome != OutcomeUnbookmarked {
		t.Fatalf("expected unbookmarked, got %s", outcome)
	}

	var count int64
	db.Model(&models.Bookmark{}).Where("user_id = ? AND resource_id = ?", 7, resource.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected bookmark removed, found %d rows", count)
	}
}

func TestToggleBookmarkUnknownResource(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookmarkService(db)

	if _, err := svc.Toggle(context.Background(), 7, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListBookmarksHidesTrashed(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBookmarkService(db)
	kept := createTestResource(t, db, "kept")
	trashed := createTestResource(t, db, "trashed")

	for _, id := range []uint{kept.ID, trashed.ID} {
		if _, err := svc.Toggle(context.Background(), 7, id); err != nil {
			t.Fatalf("Toggle returned error: %v", err)
		}
	}

	now := time.Now().UTC()
	if err := db.Model(&models.Resource{}).Where("id = ?", trashed.ID).Update("deleted_at", now).Error; err != nil {
		t.Fatalf("failed to trash resource: %v", err)
	}

	list, err := svc.List(context.Background(), 7)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 1 || list[0].ID != kept.ID {
		t.Fatalf("expected only the kept resource, got %d items", len(list))
	}
}
