package models

import (
	"time"

	"github.com/google/uuid"
)

type BlogStatus string

const (
	BlogDraft     BlogStatus = "draft"
	BlogPublished BlogStatus = "published"
)

func (s BlogStatus) Valid() bool {
	return s == BlogDraft || s == BlogPublished
}

const MaxTitleLength = 200

// Blog represents a blog post with its author, category and tags
type Blog struct {
	ID            uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	AuthorID      uuid.UUID  `json:"authorId" db:"author_id" gorm:"type:uuid;not null;index:idx_blogs_author_id"`
	Title         string     `json:"title" db:"title" gorm:"type:varchar(200);not null"`
	Content       string     `json:"content" db:"content" gorm:"type:text;not null"`
	Slug          string     `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex:idx_blogs_slug"`
	FeaturedImage string     `json:"featuredImage" db:"featured_image" gorm:"type:text;not null;default:''"`
	CategoryID    *uuid.UUID `json:"categoryId,omitempty" db:"category_id" gorm:"type:uuid;index:idx_blogs_category_id"`
	Status        BlogStatus `json:"status" db:"status" gorm:"type:text;not null;default:draft"`
	IsDeleted     bool       `json:"isDeleted" db:"is_deleted" gorm:"not null;default:false;index:idx_blogs_is_deleted"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at" gorm:"index:idx_blogs_created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`

	Author    *User          `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
	Category  *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:SET NULL"`
	Tags      []Tag          `json:"tags" gorm:"many2many:blog_tags;constraint:OnDelete:CASCADE"`
	Reactions []BlogReaction `json:"-" gorm:"foreignKey:BlogID;references:ID;constraint:OnDelete:CASCADE"`
}

// TagIDs returns the IDs of the blog's loaded tags
func (b *Blog) TagIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Tags))
	for _, t := range b.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// Likes and Dislikes split the loaded reactions into the two user sets
func (b *Blog) Likes() []uuid.UUID {
	return b.reactionUsers(ReactionLike)
}

func (b *Blog) Dislikes() []uuid.UUID {
	return b.reactionUsers(ReactionDislike)
}

func (b *Blog) reactionUsers(kind ReactionKind) []uuid.UUID {
	users := []uuid.UUID{}
	for _, r := range b.Reactions {
		if r.Kind == kind {
			users = append(users, r.UserID)
		}
	}
	return users
}
