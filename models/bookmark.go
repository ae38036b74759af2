package models

import "time"

// Bookmark links a user to a saved resource. Uniqueness of (user, resource) is
// enforced by the database index, not by application checks, so concurrent
// toggles cannot create duplicates.
type Bookmark struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index:idx_bookmark_user_resource,unique;not null" json:"user_id"`
	ResourceID uint      `gorm:"index:idx_bookmark_user_resource,unique;not null" json:"resource_id"`
	CreatedAt  time.Time `json:"created_at"`
}
