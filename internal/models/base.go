package models

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel carries the identity and bookkeeping columns shared by tables
// that use soft deletion.
type BaseModel struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BaseModelWithoutSoftDelete is BaseModel minus the deleted_at column, for
// rows that are removed outright.
type BaseModelWithoutSoftDelete struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
