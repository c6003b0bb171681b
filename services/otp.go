package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/zakdoc/blog-backend/config"
	"github.com/zakdoc/blog-backend/errs"
	"github.com/zakdoc/blog-backend/models"
)

const (
	otpDigits      = 6
	maxOTPAttempts = 5
)

// OTPProvider issues one-time codes to a user's email and checks them
type OTPProvider interface {
	Issue(ctx context.Context, user *models.User, purpose models.OTPPurpose) error
	Verify(ctx context.Context, user *models.User, purpose models.OTPPurpose, code string) error
}

// OTPStore persists pending codes; database.OTPRepo implements it
type OTPStore interface {
	Save(ctx context.Context, otp *models.OTP) error
	Find(ctx context.Context, userID uuid.UUID, purpose models.OTPPurpose) (*models.OTP, error)
	// IncrementAttempts bumps the attempt count only while it is below limit and reports
	// whether it did.
	IncrementAttempts(ctx context.Context, id uuid.UUID, limit int) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NewOTPProvider returns the Twilio Verify provider when OTP_PROVIDER=twilio and the
// local provider otherwise
func NewOTPProvider(cfg map[string]string, store OTPStore, mailer Mailer) OTPProvider {
	if config.GetString(cfg, "OTP_PROVIDER", "local") == "twilio" {
		log.Info().Msg("Using Twilio Verify for one-time codes")
		return NewTwilioOTP(
			config.GetString(cfg, "TWILIO_ACCOUNT_SID", ""),
			config.GetString(cfg, "TWILIO_AUTH_TOKEN", ""),
			config.GetString(cfg, "TWILIO_VERIFY_SERVICE_SID", ""),
		)
	}
	return NewLocalOTP(store, mailer, config.GetDuration(cfg, "OTP_TTL_MINUTES", time.Minute, 10))
}

// LocalOTP keeps a bcrypt hash of the code in the database and emails the code itself
type LocalOTP struct {
	store  OTPStore
	mailer Mailer
	ttl    time.Duration
	now    func() time.Time
}

func NewLocalOTP(store OTPStore, mailer Mailer, ttl time.Duration) *LocalOTP {
	return &LocalOTP{store: store, mailer: mailer, ttl: ttl, now: time.Now}
}

func (p *LocalOTP) Issue(ctx context.Context, user *models.User, purpose models.OTPPurpose) error {
	code, err := generateCode(otpDigits)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}

	otp := &models.OTP{
		UserID:    user.ID,
		Purpose:   purpose,
		CodeHash:  string(hash),
		ExpiresAt: p.now().Add(p.ttl),
	}
	if err := p.store.Save(ctx, otp); err != nil {
		return errs.NewDatabaseError("create", "otp", err)
	}

	subject, body := OTPEmail(user.Name, code, purpose, p.ttl)
	if err := p.mailer.Send(ctx, user.Email, subject, body); err != nil {
		return errs.NewInternalErrorWithCause("could not send verification code", err)
	}
	return nil
}

// Verify consumes the pending code on success. Every check spends one of maxOTPAttempts
// before the code is compared; once they are spent the code is discarded and a new one
// must be issued.
func (p *LocalOTP) Verify(ctx context.Context, user *models.User, purpose models.OTPPurpose, code string) error {
	otp, err := p.store.Find(ctx, user.ID, purpose)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewInvalidOTPError()
	}
	if err != nil {
		return errs.NewDatabaseError("fetch", "otp", err)
	}

	if otp.Expired(p.now()) {
		p.discard(ctx, otp)
		return errs.NewInvalidOTPError()
	}

	ok, err := p.store.IncrementAttempts(ctx, otp.ID, maxOTPAttempts)
	if err != nil {
		return errs.NewDatabaseError("update", "otp", err)
	}
	if !ok {
		p.discard(ctx, otp)
		return errs.NewInvalidOTPError()
	}

	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		return errs.NewInvalidOTPError()
	}

	if err := p.store.Delete(ctx, otp.ID); err != nil {
		return errs.NewDatabaseError("delete", "otp", err)
	}
	return nil
}

func (p *LocalOTP) discard(ctx context.Context, otp *models.OTP) {
	if err := p.store.Delete(ctx, otp.ID); err != nil {
		log.Warn().Err(err).Str("otpId", otp.ID.String()).Msg("Failed to discard stale otp")
	}
}

func generateCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
