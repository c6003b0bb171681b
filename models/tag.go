package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a flat label; blogs reference tags through the blog_tags join table
type Tag struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Name      string    `json:"name" db:"name" gorm:"type:text;not null"`
	Slug      string    `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex:idx_tags_slug"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// BlogTag is the join row between blogs and tags
type BlogTag struct {
	BlogID uuid.UUID `json:"blogId" db:"blog_id" gorm:"type:uuid;primaryKey"`
	TagID  uuid.UUID `json:"tagId" db:"tag_id" gorm:"type:uuid;primaryKey;index:idx_blog_tags_tag_id"`
}
