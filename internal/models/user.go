package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles. Moderation privileges hang off RoleAdmin.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a member of the fan community. The aggregate counters
// (PostCount, LikeCount) are display-only mirrors maintained best-effort;
// they are never used for authorization decisions.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Nickname  string         `gorm:"not null" json:"nickname"`
	Password  string         `gorm:"not null" json:"-"`
	AvatarURL string         `json:"avatar_url"`
	Role      string         `gorm:"not null;default:user" json:"role"`
	PostCount int            `json:"post_count"`
	LikeCount int            `json:"like_count"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicProfile is the author shape embedded in feed and thread entries.
// A zero value is never rendered; unmatched authors get PlaceholderProfile.
type PublicProfile struct {
	ID        uint   `json:"id"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
	Role      string `json:"role"`
}

// PlaceholderProfile is substituted when an author row cannot be resolved,
// so a degraded profile fetch never aborts a feed or thread render.
func PlaceholderProfile() PublicProfile {
	return PublicProfile{Nickname: "Unknown User", Role: RoleUser}
}

// Profile converts a full user row into its public shape.
func (u *User) Profile() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Nickname:  u.Nickname,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
	}
}
