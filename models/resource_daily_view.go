package models

import "time"

// ResourceDailyView stores one resource's view count for a single UTC calendar day.
// A row exists only for days that received at least one view.
type ResourceDailyView struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ResourceID uint      `gorm:"index:idx_daily_resource_date,unique;not null" json:"resource_id"`
	ViewDate   time.Time `gorm:"index:idx_daily_resource_date,unique;type:date;not null" json:"view_date"`
	Count      int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
