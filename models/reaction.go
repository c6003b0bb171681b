package models

import (
	"time"

	"github.com/google/uuid"
)

type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// BlogReaction records a like or dislike. The composite key keeps a user in at most one
// of the two sets for a given blog.
type BlogReaction struct {
	BlogID    uuid.UUID    `json:"blogId" db:"blog_id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID    `json:"userId" db:"user_id" gorm:"type:uuid;primaryKey"`
	Kind      ReactionKind `json:"kind" db:"kind" gorm:"type:text;not null"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
}
