package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post represents a feed post
// DB: posts
type Post struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PublicID  string         `gorm:"column:public_id;size:36;not null;uniqueIndex:posts_public_id_key" json:"public_id"`
	UserID    uint           `gorm:"column:user_id;not null;index:idx_posts_user" json:"user_id"`
	Type      string         `gorm:"column:type;size:30;not null;index:idx_posts_type" json:"type"`
	Content   *string        `gorm:"column:content;type:text" json:"content,omitempty"`
	PlaceName *string        `gorm:"column:place_name;size:255" json:"place_name,omitempty"`
	City      *string        `gorm:"column:city;size:100;index:idx_posts_city" json:"city,omitempty"`
	Lat       *float64       `gorm:"column:lat;type:double precision" json:"lat,omitempty"`
	Lng       *float64       `gorm:"column:lng;type:double precision" json:"lng,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at;not null;index:idx_posts_created,sort:desc" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index:idx_posts_deleted" json:"-"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Post) TableName() string {
	return "posts"
}

// BeforeCreate assigns a public ID when the caller did not set one.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.PublicID == "" {
		p.PublicID = uuid.NewString()
	}
	return nil
}

// PostFilter narrows a feed query. City and Type are exact matches; a
// zero Limit means unbounded.
type PostFilter struct {
	City  string
	Type  string
	Limit int
}

// Like represents a per-user like on a post
// DB: likes
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"column:post_id;not null;uniqueIndex:likes_post_user_key,priority:1" json:"post_id"`
	UserID    uint      `gorm:"column:user_id;not null;uniqueIndex:likes_post_user_key,priority:2" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Like) TableName() string {
	return "likes"
}

// Review represents a user review of a place
// DB: reviews
type Review struct {
	BaseModelWithoutSoftDelete
	UserID  uint    `gorm:"column:user_id;not null;index:idx_reviews_user" json:"user_id"`
	PlaceID string  `gorm:"column:place_id;size:255;not null;index:idx_reviews_place" json:"place_id"`
	Rating  int     `gorm:"column:rating;not null" json:"rating"`
	Comment *string `gorm:"column:comment;type:text" json:"comment,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

// SavedSpot represents a spot a user bookmarked from the wheel
// DB: saved_spots
type SavedSpot struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;uniqueIndex:saved_spots_user_place_key,priority:1" json:"user_id"`
	PlaceID   string    `gorm:"column:place_id;size:255;not null;uniqueIndex:saved_spots_user_place_key,priority:2" json:"place_id"`
	Name      string    `gorm:"column:name;size:255;not null" json:"name"`
	Category  *string   `gorm:"column:category;size:100" json:"category,omitempty"`
	Lat       *float64  `gorm:"column:lat;type:double precision" json:"lat,omitempty"`
	Lng       *float64  `gorm:"column:lng;type:double precision" json:"lng,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (SavedSpot) TableName() string {
	return "saved_spots"
}
