package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleAuthor Role = "author"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAuthor, RoleAdmin:
		return true
	}
	return false
}

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserInactive
}

// User represents a registered account
type User struct {
	ID            uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Name          string     `json:"name" db:"name" gorm:"type:text;not null;index:idx_users_name"`
	Email         string     `json:"email" db:"email" gorm:"type:text;not null;uniqueIndex:idx_users_email"`
	Password      string     `json:"-" db:"password" gorm:"type:text;not null"`
	Role          Role       `json:"role" db:"role" gorm:"type:text;not null;default:user"`
	Status        UserStatus `json:"status" db:"status" gorm:"type:text;not null;default:active;index:idx_users_status"`
	EmailVerified bool       `json:"emailVerified" db:"email_verified" gorm:"not null;default:false"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
}

// UserSummary is the author/commenter view embedded in blog and comment responses
type UserSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name}
}
