package models

import "time"

// Engagement event kinds.
const (
	EventView     = "view"
	EventDownload = "download"
	EventLike     = "like"
	EventComment  = "comment"
	EventBookmark = "bookmark"
)

// EngagementEvent is one immutable fact about a user action. Rows are append-only:
// the only mutation ever applied is an OccurredAt refresh when a near-duplicate
// arrives inside the dedup window.
type EngagementEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventID    string    `gorm:"size:36;uniqueIndex;not null" json:"event_id"`
	UserID     uint      `gorm:"index:idx_event_dedup;not null" json:"user_id"`
	Kind       string    `gorm:"size:16;index:idx_event_dedup;not null" json:"kind"`
	ResourceID *uint     `gorm:"index:idx_event_dedup" json:"resource_id,omitempty"`
	OccurredAt time.Time `gorm:"index:idx_event_dedup;index;not null" json:"occurred_at"`
	Message    string    `gorm:"size:512" json:"message"`
	Source     string    `gorm:"size:32" json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

var validEventKinds = map[string]struct{}{
	EventView:     {},
	EventDownload: {},
	EventLike:     {},
	EventComment:  {},
	EventBookmark: {},
}

// ValidEventKind reports whether s is a known engagement event kind.
func ValidEventKind(s string) bool {
	_, ok := validEventKinds[s]
	return ok
}
