package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the account entity. PasswordHash is never serialized.
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email        string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	IsOnline     *time.Time     `json:"is_online"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserProfile holds the public display fields for a user.
type UserProfile struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	UserID           uint           `gorm:"not null;uniqueIndex" json:"user_id"`
	User             User           `json:"user"`
	FirstName        string         `gorm:"size:100;not null" json:"first_name"`
	LastName         string         `gorm:"size:100;not null" json:"last_name"`
	Caption          string         `gorm:"size:255" json:"caption"`
	About            string         `gorm:"type:text" json:"about"`
	ProfilePictureID *uint          `json:"profile_picture_id"`
	ProfilePicture   *FileUpload    `gorm:"foreignKey:ProfilePictureID" json:"profile_picture,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// AuthToken stores the single live access/refresh pair for a user.
// Login replaces the row; refresh rewrites it in place. The unique index
// on user_id enforces one active session per user.
type AuthToken struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Access    string    `gorm:"type:text;not null" json:"-"`
	Refresh   string    `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
