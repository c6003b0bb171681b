package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zakdoc/blog-backend/models"
)

type OTPRepo struct {
	db *gorm.DB
}

func NewOTPRepo(db *gorm.DB) *OTPRepo {
	return &OTPRepo{db}
}

// Save stores otp as the user's only pending code for its purpose
func (r *OTPRepo) Save(ctx context.Context, otp *models.OTP) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "purpose"}},
		DoUpdates: clause.AssignmentColumns([]string{"code_hash", "attempts", "expires_at", "created_at"}),
	}).Omit("User").Create(otp).Error
}

func (r *OTPRepo) Find(ctx context.Context, userID uuid.UUID, purpose models.OTPPurpose) (*models.OTP, error) {
	var otp models.OTP
	err := r.db.WithContext(ctx).First(&otp, "user_id = ? AND purpose = ?", userID, purpose).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

// IncrementAttempts spends one attempt on the code while fewer than limit have been spent.
// The check and the increment are a single statement so concurrent guesses cannot overrun limit.
func (r *OTPRepo) IncrementAttempts(ctx context.Context, id uuid.UUID, limit int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.OTP{}).
		Where("id = ? AND attempts < ?", id, limit).
		UpdateColumn("attempts", gorm.Expr("attempts + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *OTPRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.OTP{}, "id = ?", id).Error
}
