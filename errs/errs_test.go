package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestNewDatabaseError(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		status int
		check  func(error) bool
	}{
		{"not found", gorm.ErrRecordNotFound, http.StatusNotFound, IsNotFound},
		{"wrapped not found", fmt.Errorf("find: %w", gorm.ErrRecordNotFound), http.StatusNotFound, IsNotFound},
		{"duplicate key", gorm.ErrDuplicatedKey, http.StatusConflict, IsConflict},
		{"duplicate key text", errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`), http.StatusConflict, IsConflict},
		{"foreign key", gorm.ErrForeignKeyViolated, http.StatusBadRequest, IsValidation},
		{"connection", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable, nil},
		{"other", errors.New("syntax error"), http.StatusInternalServerError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("fetch", "blog", tt.cause)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Equal(t, tt.status, StatusCode(err))
			if tt.check != nil {
				assert.True(t, tt.check(err))
			}
		})
	}
}

func TestNewDatabaseErrorPassesApiErrThrough(t *testing.T) {
	original := NewForbiddenError("not yours")
	assert.Same(t, original, NewDatabaseError("update", "blog", original))
}

func TestClassifiers(t *testing.T) {
	assert.True(t, IsValidation(NewMissingRequiredFieldError("title")))
	assert.True(t, IsValidation(NewInvalidFieldError("status", "bad")))
	assert.False(t, IsValidation(NewConflictError("taken")))

	assert.True(t, IsConflict(NewConflictError("already published")))
	assert.True(t, IsConflict(NewUniqueConstraintViolationError("blog", "slug", nil)))
	assert.True(t, IsUniqueConstraintViolationError(NewUniqueConstraintViolationError("blog", "slug", nil)))
	assert.True(t, IsForbidden(NewInsufficientRoleError("admin")))
	assert.True(t, IsInsufficientRoleError(NewInsufficientRoleError("admin")))
	assert.True(t, IsInvalidOTPError(NewInvalidOTPError()))
	assert.True(t, IsValidation(NewInvalidOTPError()))
	assert.True(t, IsForbidden(NewForbiddenError("no")))
	assert.True(t, IsUnauthorized(NewUnauthorizedError("no")))

	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("plain")))
	assert.Equal(t, http.StatusForbidden, StatusCode(fmt.Errorf("wrapped: %w", NewInactiveAccountError())))
}

func TestApiErrMessages(t *testing.T) {
	err := NewInvalidFieldError("email", "must be a valid email address")
	assert.Equal(t, "email", err.Field)
	assert.Contains(t, err.Error(), "email")

	withCause := NewInternalErrorWithCause("could not store image", errors.New("s3 down"))
	assert.Contains(t, withCause.GetFullError(), "s3 down")
}
