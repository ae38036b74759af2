package models

import "time"

// User rows are owned by the account service. The engagement core only reads
// the id and maintains StreakDays and LastActiveAt; credentials and profile
// data live elsewhere.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:64;not null" json:"username"`
	StreakDays   int        `gorm:"default:0" json:"streak_days"`
	LastActiveAt *time.Time `json:"last_active_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
