package api

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/zakdoc/blog-backend/errs"
	"github.com/zakdoc/blog-backend/models"
	"github.com/zakdoc/blog-backend/services"
)

const (
	minPasswordLength = 6
	// bcrypt refuses longer input.
	maxPasswordBytes = 72
)

type userHandler struct {
	responder     Responder
	logger        zerolog.Logger
	users         userStore
	otp           services.OTPProvider
	tokens        tokenIssuer
	secureCookies bool
}

func newUserHandler(users userStore, otp services.OTPProvider, tokens tokenIssuer, secureCookies bool) userHandler {
	logger := log.With().Str("handlerName", "userHandler").Logger()

	return userHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		users:         users,
		otp:           otp,
		tokens:        tokens,
		secureCookies: secureCookies,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *registerRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	switch {
	case req.Name == "":
		return errs.NewMissingRequiredFieldError("name")
	case req.Email == "":
		return errs.NewMissingRequiredFieldError("email")
	case req.Password == "":
		return errs.NewMissingRequiredFieldError("password")
	}
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	return validatePassword("password", req.Password)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

type statusRequest struct {
	Status models.UserStatus `json:"status"`
}

type roleRequest struct {
	Role models.Role `json:"role"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errs.NewInvalidFieldError("email", "must be a valid email address")
	}
	return nil
}

func validatePassword(field, password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return errs.NewInvalidFieldError(field, "must be at least 6 characters")
	}
	if len(password) > maxPasswordBytes {
		return errs.NewInvalidFieldError(field, "must be at most 72 bytes")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errs.NewInternalErrorWithCause("could not hash password", err)
	}
	return string(hash), nil
}

// register creates an unverified account and emails it a verification code
func (h userHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := req.validate(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		hash, err := hashPassword(req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user := models.User{
			Name:     req.Name,
			Email:    req.Email,
			Password: hash,
			Role:     models.RoleUser,
			Status:   models.UserActive,
		}
		if err := h.users.Add(r.Context(), &user); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "user", err))
			return
		}

		if err := h.otp.Issue(r.Context(), &user, models.OTPVerifyEmail); err != nil {
			// the account exists; the user can ask for a new code
			h.logger.Error().Err(err).Str("userId", user.ID.String()).Msg("Failed to issue verification code")
		}

		h.responder.WriteCreated(w, map[string]interface{}{
			"success": true,
			"message": "Registration successful. Check your email for the verification code.",
			"user":    user,
		})
	}
}

func (h userHandler) verifyOTP() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyOTPRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if strings.TrimSpace(req.OTP) == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("otp"))
			return
		}

		user, err := h.users.FindByEmail(r.Context(), req.Email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.responder.WriteError(w, errs.NewInvalidOTPError())
			return
		}
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "user", err))
			return
		}
		if user.EmailVerified {
			h.responder.WriteMessage(w, "Email already verified")
			return
		}

		if err := h.otp.Verify(r.Context(), user, models.OTPVerifyEmail, strings.TrimSpace(req.OTP)); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if _, err := h.users.Update(r.Context(), user.ID, map[string]interface{}{"email_verified": true}); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "user", err))
			return
		}

		h.responder.WriteMessage(w, "Email verified successfully")
	}
}

func (h userHandler) resendOTP() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req emailRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.users.FindByEmail(r.Context(), req.Email)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "user", err))
			return
		}
		if user.EmailVerified {
			h.responder.WriteError(w, errs.NewConflictError("email already verified"))
			return
		}

		if err := h.otp.Issue(r.Context(), user, models.OTPVerifyEmail); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, "Verification code sent")
	}
}

func (h userHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if req.Email == "" || req.Password == "" {
			h.responder.WriteError(w, errs.NewInvalidCredentialsError())
			return
		}

		user, err := h.users.FindByEmail(r.Context(), req.Email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.responder.WriteError(w, errs.NewInvalidCredentialsError())
			return
		}
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "user", err))
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
			h.responder.WriteError(w, errs.NewInvalidCredentialsError())
			return
		}
		if user.Status != models.UserActive {
			h.responder.WriteError(w, errs.NewInactiveAccountError())
			return
		}
		if !user.EmailVerified {
			h.responder.WriteError(w, errs.NewEmailNotVerifiedError())
			return
		}

		token, expires, err := h.tokens.issue(user)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("could not issue token", err))
			return
		}
		setTokenCookie(w, token, expires, h.secureCookies)

		h.responder.WriteJSON(w, loginResponse{
			Success: true,
			Message: "Login successful",
			Token:   token,
			User:    user,
		})
	}
}

func (h userHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clearTokenCookie(w, h.secureCookies)
		h.responder.WriteMessage(w, "Logged out successfully")
	}
}

// forgetPassword always answers 200 so the endpoint cannot be used to probe for accounts
func (h userHandler) forgetPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req emailRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.users.FindByEmail(r.Context(), req.Email)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			h.responder.WriteError(w, wrapDatabaseError("fetch", "user", err))
			return
		default:
			if err := h.otp.Issue(r.Context(), user, models.OTPResetPassword); err != nil {
				h.logger.Error().Err(err).Str("userId", user.ID.String()).Msg("Failed to issue reset code")
			}
		}

		h.responder.WriteMessage(w, "If the account exists, a reset code has been sent")
	}
}

func (h userHandler) resetPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if strings.TrimSpace(req.OTP) == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("otp"))
			return
		}
		if err := validatePassword("newPassword", req.NewPassword); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.users.FindByEmail(r.Context(), req.Email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.responder.WriteError(w, errs.NewInvalidOTPError())
			return
		}
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "user", err))
			return
		}
		if err := h.otp.Verify(r.Context(), user, models.OTPResetPassword, strings.TrimSpace(req.OTP)); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		hash, err := hashPassword(req.NewPassword)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if _, err := h.users.Update(r.Context(), user.ID, map[string]interface{}{"password": hash}); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "user", err))
			return
		}

		h.responder.WriteMessage(w, "Password reset successfully")
	}
}

func (h userHandler) userDetails() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, map[string]interface{}{"success": true, "user": user})
	}
}

func (h userHandler) updateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req updateProfileRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		fields := map[string]interface{}{}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				h.responder.WriteError(w, errs.NewInvalidFieldError("name", "cannot be empty"))
				return
			}
			fields["name"] = name
		}
		if req.Password != nil {
			if err := validatePassword("password", *req.Password); err != nil {
				h.responder.WriteError(w, err)
				return
			}
			hash, err := hashPassword(*req.Password)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			fields["password"] = hash
		}
		if len(fields) == 0 {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("name or password"))
			return
		}

		updated, err := h.users.Update(r.Context(), user.ID, fields)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "user", err))
			return
		}
		h.responder.WriteJSON(w, map[string]interface{}{"success": true, "message": "Profile updated successfully", "user": updated})
	}
}

func (h userHandler) getAllUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.users.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "users", err))
			return
		}
		h.responder.WriteJSON(w, map[string]interface{}{"success": true, "total": len(users), "users": users})
	}
}

func (h userHandler) getUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		user, err := h.users.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "user", err))
			return
		}
		h.responder.WriteJSON(w, map[string]interface{}{"success": true, "user": user})
	}
}

func (h userHandler) updateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !req.Status.Valid() {
			h.responder.WriteError(w, errs.NewInvalidFieldError("status", "must be active or inactive"))
			return
		}
		h.updateUser(w, r, map[string]interface{}{"status": req.Status}, "User status updated")
	}
}

func (h userHandler) updateRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req roleRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !req.Role.Valid() {
			h.responder.WriteError(w, errs.NewInvalidFieldError("role", "must be user, author or admin"))
			return
		}
		h.updateUser(w, r, map[string]interface{}{"role": req.Role}, "User role updated")
	}
}

func (h userHandler) updateUser(w http.ResponseWriter, r *http.Request, fields map[string]interface{}, message string) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}
	user, err := h.users.Update(r.Context(), id, fields)
	if err != nil {
		h.responder.WriteError(w, wrapDatabaseError("update", "user", err))
		return
	}
	h.responder.WriteJSON(w, map[string]interface{}{"success": true, "message": message, "user": user})
}

func (h userHandler) deleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if current, err := ctxGetUser(r.Context()); err == nil && current.ID == id {
			h.responder.WriteError(w, errs.NewForbiddenError("admins cannot delete their own account"))
			return
		}
		if err := h.users.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "user", err))
			return
		}
		h.responder.WriteMessage(w, "User deleted successfully")
	}
}

// sameUser reports whether a and b name the same existing user
func sameUser(a, b uuid.UUID) bool {
	return a != uuid.Nil && a == b
}
