package services

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openedu/studyhub/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Resource{},
		&models.ResourceDailyView{},
		&models.ResourceLike{},
		&models.Bookmark{},
		&models.EngagementEvent{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := models.User{Username: name}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}

func createTestResource(t *testing.T, db *gorm.DB, title string) *models.Resource {
	t.Helper()
	resource := models.Resource{
		OwnerID:  1,
		Title:    title,
		Kind:     models.KindDocument,
		Category: models.CategoryStudy,
		Subject:  "algorithms",
		Semester: 3,
		FileKey:  "file-" + title,
	}
	if err := db.Create(&resource).Error; err != nil {
		t.Fatalf("failed to create test resource: %v", err)
	}
	return &resource
}

func uintPtr(v uint) *uint {
	return &v
}

func utcDate(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}
