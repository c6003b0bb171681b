package services

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	verify "github.com/twilio/twilio-go/rest/verify/v2"

	"github.com/zakdoc/blog-backend/errs"
	"github.com/zakdoc/blog-backend/models"
)

// verifyAPI is the part of the Twilio Verify v2 client we call
type verifyAPI interface {
	CreateVerification(serviceSid string, params *verify.CreateVerificationParams) (*verify.VerifyV2Verification, error)
	CreateVerificationCheck(serviceSid string, params *verify.CreateVerificationCheckParams) (*verify.VerifyV2VerificationCheck, error)
}

// TwilioOTP delegates code generation and delivery to Twilio Verify's email channel.
// Twilio tracks expiry and attempts itself and has no notion of purpose.
type TwilioOTP struct {
	api        verifyAPI
	serviceSid string
}

func NewTwilioOTP(accountSid, authToken, serviceSid string) *TwilioOTP {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})
	return &TwilioOTP{api: client.VerifyV2, serviceSid: serviceSid}
}

func (p *TwilioOTP) Issue(_ context.Context, user *models.User, _ models.OTPPurpose) error {
	params := &verify.CreateVerificationParams{}
	params.SetTo(user.Email)
	params.SetChannel("email")

	if _, err := p.api.CreateVerification(p.serviceSid, params); err != nil {
		return errs.NewInternalErrorWithCause("could not send verification code", fmt.Errorf("twilio verify: %w", err))
	}
	return nil
}

func (p *TwilioOTP) Verify(_ context.Context, user *models.User, _ models.OTPPurpose, code string) error {
	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(user.Email)
	params.SetCode(code)

	resp, err := p.api.CreateVerificationCheck(p.serviceSid, params)
	if err != nil {
		// Twilio answers 404 once a verification expired or was already approved
		return errs.NewInvalidOTPError()
	}
	if resp.Status == nil || *resp.Status != "approved" {
		return errs.NewInvalidOTPError()
	}
	return nil
}
