package models

import "time"

// ResourceLike is one user's active like on a resource. The composite unique
// index is the authoritative liked-by set; the likes counter on Resource is
// derived from it.
type ResourceLike struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index:idx_like_user_resource,unique;not null" json:"user_id"`
	ResourceID uint      `gorm:"index:idx_like_user_resource,unique;not null" json:"resource_id"`
	CreatedAt  time.Time `json:"created_at"`
}
