package models

import "time"

// Resource kinds accepted by the platform.
const (
	KindDocument = "document"
	KindVideo    = "video"
	KindNote     = "note"
	KindLink     = "link"
)

// Resource categories.
const (
	CategoryStudy     = "study"
	CategoryPlacement = "placement"
	CategoryCommon    = "common"
)

// Resource represents a shareable unit of content with denormalized engagement counters.
type Resource struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OwnerID     uint   `gorm:"index;not null" json:"owner_id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Kind        string `gorm:"size:16;not null;index" json:"kind"`
	Category    string `gorm:"size:16;not null;default:'study';index" json:"category"`
	Subject     string `gorm:"size:64;index" json:"subject"`
	Semester    int    `gorm:"index" json:"semester"`
	// FileKey identifies the uploaded asset in the external file store.
	FileKey      string     `gorm:"size:64" json:"file_key"`
	Views        uint64     `gorm:"not null;default:0" json:"views"`
	Downloads    uint64     `gorm:"not null;default:0" json:"downloads"`
	Likes        uint64     `gorm:"not null;default:0" json:"likes"`
	Comments     uint64     `gorm:"not null;default:0" json:"comments"`
	LastViewedAt *time.Time `json:"last_viewed_at"`
	// DeletedAt marks the resource as trashed. It is a plain nullable column on
	// purpose: trash visibility is an explicit query argument everywhere, never
	// an implicit soft-delete hook that rewrites queries behind the caller's back.
	DeletedAt  *time.Time          `gorm:"index" json:"deleted_at"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
	DailyViews []ResourceDailyView `json:"daily_views,omitempty"`
}

// Trashed reports whether the resource is currently soft-deleted.
func (r *Resource) Trashed() bool {
	return r.DeletedAt != nil
}

var validKinds = map[string]struct{}{
	KindDocument: {},
	KindVideo:    {},
	KindNote:     {},
	KindLink:     {},
}

var validCategories = map[string]struct{}{
	CategoryStudy:     {},
	CategoryPlacement: {},
	CategoryCommon:    {},
}

// ValidKind reports whether s is a known resource kind.
func ValidKind(s string) bool {
	_, ok := validKinds[s]
	return ok
}

// ValidCategory reports whether s is a known resource category.
func ValidCategory(s string) bool {
	_, ok := validCategories[s]
	return ok
}
