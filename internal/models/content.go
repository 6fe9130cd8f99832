package models

import "time"

// Media categories accepted for albums and gallery filters.
const (
	MediaTypePhoto = "photo"
	MediaTypeVideo = "video"
	MediaTypeAudio = "audio"
)

// Album groups gallery media. Ordering on admin screens is explicit via
// DisplayOrder, ties broken by recency.
type Album struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"not null" json:"title"`
	Category     string    `gorm:"not null" json:"category"`
	Description  string    `gorm:"type:text" json:"description"`
	CoverURL     string    `json:"cover_url"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MediaItem is a gallery entry following the same pending/approved
// moderation lifecycle as posts.
type MediaItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AlbumID      *uint     `gorm:"index" json:"album_id,omitempty"`
	UserID       *uint     `gorm:"index" json:"user_id,omitempty"`
	Type         string    `gorm:"not null;default:photo" json:"type"`
	Title        string    `gorm:"not null" json:"title"`
	URL          string    `gorm:"not null" json:"url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Status       string    `gorm:"not null;default:pending;index" json:"status"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

func (MediaItem) TableName() string { return "media_items" }

// TimelineEvent is a dated milestone on the public timeline.
type TimelineEvent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EventDate    time.Time `gorm:"not null;index" json:"event_date"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	CoverURL     string    `json:"cover_url"`
	Category     string    `json:"category"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

func (TimelineEvent) TableName() string { return "timeline_events" }

// Charm is a short fan message shown on the "why stan" page once approved.
type Charm struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsApproved bool      `gorm:"not null;default:false;index" json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Charm) TableName() string { return "idol_charms" }

// HomeContent is a key/value row backing editable home-page sections.
type HomeContent struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (HomeContent) TableName() string { return "home_content" }
