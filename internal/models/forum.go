package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Moderation status values shared by posts and media items.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Report status values.
const (
	ReportPending   = "pending"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

// AdminOnlyCategories is the reserved category set only admins may post to.
var AdminOnlyCategories = map[string]bool{
	"headline":     true,
	"announcement": true,
	"event":        true,
}

// StringList is a JSON-encoded string slice column (image URLs, tags).
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = StringList{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported StringList source type %T", src)
	}
}

// ForumPost is a community post. LikeCount and Liked are derived at query
// time from forum_post_likes rows, never persisted, so the displayed counter
// cannot drift from the membership rows.
type ForumPost struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Title     string     `gorm:"not null" json:"title"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Category  string     `gorm:"not null;default:General" json:"category"`
	ImageURLs StringList `gorm:"type:text" json:"image_urls"`
	Tags      StringList `gorm:"type:text" json:"tags"`
	Status    string     `gorm:"not null;default:pending;index" json:"status"`
	IsPinned  bool       `gorm:"not null;default:false" json:"is_pinned"`
	ViewCount int        `gorm:"not null;default:0" json:"view_count"`
	// LikeCount is not persisted; computed at query time
	LikeCount int `gorm:"->" json:"like_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool      `gorm:"->" json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name the API's collections are known by.
func (ForumPost) TableName() string { return "forum_posts" }

// ForumReply is a flat reply on a post. Replies are never edited and are
// removed only by their post's cascade delete.
type ForumReply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (ForumReply) TableName() string { return "forum_replies" }

// ForumPostLike is the (post, user) like membership row. The composite
// unique index guarantees at most one row per pair.
type ForumPostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_user_like" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_user_like" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (ForumPostLike) TableName() string { return "forum_post_likes" }

// ForumReport is a user-filed report against a post. Only moderators
// transition its status.
type ForumReport struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Reason    string    `gorm:"type:text;not null" json:"reason"`
	Status    string    `gorm:"not null;default:pending;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ForumReport) TableName() string { return "forum_reports" }

// FeedPost is the display-ready feed entry: a post merged with its author
// profile and reply count.
type FeedPost struct {
	ForumPost
	Author     PublicProfile `json:"user"`
	ReplyCount int           `json:"reply_count"`
}

// TrendingScore ranks a feed entry as replies weighted double over likes.
func (p *FeedPost) TrendingScore() int {
	return p.ReplyCount*2 + p.LikeCount
}

// ThreadReply is a reply merged with its author profile.
type ThreadReply struct {
	ForumReply
	Author PublicProfile `json:"user"`
}

// PostThread is the detail view: one post plus its ordered reply thread.
type PostThread struct {
	Post    FeedPost      `json:"post"`
	Replies []ThreadReply `json:"replies"`
}
