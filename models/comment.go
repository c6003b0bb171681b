package models

import (
	"time"

	"github.com/google/uuid"
)

const MaxCommentLength = 1000

// Comment is a single node of a blog's discussion; ParentCommentID is nil for root comments
type Comment struct {
	ID              uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	BlogID          uuid.UUID  `json:"blogId" db:"blog_id" gorm:"type:uuid;not null;index:idx_comments_blog_id"`
	UserID          uuid.UUID  `json:"userId" db:"user_id" gorm:"type:uuid;not null"`
	CommentText     string     `json:"commentText" db:"comment_text" gorm:"type:varchar(1000);not null"`
	ParentCommentID *uuid.UUID `json:"parentCommentId" db:"parent_comment_id" gorm:"type:uuid;index:idx_comments_parent_comment_id"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Blog *Blog `json:"-" gorm:"foreignKey:BlogID;references:ID;constraint:OnDelete:CASCADE"`
}
