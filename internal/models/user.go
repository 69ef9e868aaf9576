package models

import "time"

// User represents an account and its public profile fields.
// DB: users
type User struct {
	BaseModel
	Email        string     `gorm:"column:email;size:255;not null;uniqueIndex:users_email_key" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;size:255;not null" json:"-"`
	Username     string     `gorm:"column:username;size:50;not null;uniqueIndex:users_username_key" json:"username"`
	DisplayName  string     `gorm:"column:display_name;size:100;not null" json:"display_name"`
	AvatarURL    *string    `gorm:"column:avatar_url;type:text" json:"avatar_url,omitempty"`
	StreakCount  int        `gorm:"column:streak_count;not null;default:0" json:"streak_count"`
	LastSpinAt   *time.Time `gorm:"column:last_spin_at" json:"last_spin_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}
