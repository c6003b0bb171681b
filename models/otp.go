package models

import (
	"time"

	"github.com/google/uuid"
)

type OTPPurpose string

const (
	OTPVerifyEmail   OTPPurpose = "verify_email"
	OTPResetPassword OTPPurpose = "reset_password"
)

// OTP is a one-time code issued to a user; only the bcrypt hash of the code is stored
type OTP struct {
	ID        uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	UserID    uuid.UUID  `json:"userId" db:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_otps_user_purpose"`
	Purpose   OTPPurpose `json:"purpose" db:"purpose" gorm:"type:text;not null;uniqueIndex:idx_otps_user_purpose"`
	CodeHash  string     `json:"-" db:"code_hash" gorm:"type:text;not null"`
	Attempts  int        `json:"attempts" db:"attempts" gorm:"not null;default:0"`
	ExpiresAt time.Time  `json:"expiresAt" db:"expires_at" gorm:"not null"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
