package models

import (
	"time"
)

// User is an account owning every other record
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PublicID     string `gorm:"size:50;uniqueIndex;not null" json:"public_id"`
	Username     string `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	FirstName string `gorm:"size:64" json:"first_name"`
	LastName  string `gorm:"size:64" json:"last_name"`
	AvatarURL string `gorm:"size:255" json:"avatar_url"`
	Timezone  string `gorm:"size:50;default:UTC" json:"timezone"`

	Theme                string `gorm:"size:20;default:light" json:"theme"`
	NotificationsEnabled bool   `gorm:"default:true" json:"notifications_enabled"`

	IsActive  bool       `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
}

// FullName returns "first last", falling back to the username
func (u *User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}
