package models

import "time"

// PushDevice represents a registered push notification token
// DB: push_devices
type PushDevice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;index:idx_push_devices_user" json:"user_id"`
	Token     string    `gorm:"column:token;size:512;not null;uniqueIndex:push_devices_token_key" json:"token"`
	Platform  string    `gorm:"column:platform;size:20;not null" json:"platform"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (PushDevice) TableName() string {
	return "push_devices"
}
