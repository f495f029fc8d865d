package domain

import (
	"errors"
	"fmt"
	"time"
)

// OTP errors
var (
	ErrOTPNotFound    = errors.New("no active otp for phone number")
	ErrOTPExpired     = errors.New("otp has expired")
	ErrOTPInvalid     = errors.New("invalid otp code")
	ErrOTPMaxAttempts = errors.New("maximum otp attempts exceeded")
	ErrOTPThrottled   = errors.New("otp resend window not elapsed")
)

// InvalidOTPError is returned when a submitted code mismatches but attempts
// remain. It matches ErrOTPInvalid under errors.Is.
type InvalidOTPError struct {
	AttemptsLeft int
}

func (e *InvalidOTPError) Error() string {
	return fmt.Sprintf("invalid otp code, %d attempts left", e.AttemptsLeft)
}

func (e *InvalidOTPError) Is(target error) bool {
	return target == ErrOTPInvalid
}

// ThrottledError is returned when an OTP is requested inside the resend
// window. It matches ErrOTPThrottled under errors.Is.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("please wait %d seconds before requesting a new otp", int(e.RetryAfter.Seconds()))
}

func (e *ThrottledError) Is(target error) bool {
	return target == ErrOTPThrottled
}

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found or revoked")
)

// User errors
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserInactive           = errors.New("user account is inactive")
	ErrProfileAlreadyComplete = errors.New("profile is already complete")
)

// Authorization errors
var (
	ErrForbidden = errors.New("operation not permitted for this user")
)

// SMS transport errors. The orchestrator treats every kind as "delivery
// failed" for user-facing purposes; the kinds exist so logs and metrics can
// tell provider outages from bad recipients.
var ErrSMSDeliveryFailed = errors.New("sms delivery failed")

// SMSErrorKind classifies SMS transport failures.
type SMSErrorKind int

const (
	SMSErrorUnknown SMSErrorKind = iota
	SMSErrorInvalidRecipient
	SMSErrorProviderUnavailable
	SMSErrorInsufficientCredits
	SMSErrorMisconfigured
)

func (k SMSErrorKind) String() string {
	switch k {
	case SMSErrorInvalidRecipient:
		return "invalid_recipient"
	case SMSErrorProviderUnavailable:
		return "provider_unavailable"
	case SMSErrorInsufficientCredits:
		return "insufficient_credits"
	case SMSErrorMisconfigured:
		return "misconfigured"
	default:
		return "unknown"
	}
}

// SMSError wraps a transport failure with its classification and the
// provider's own error code. It matches ErrSMSDeliveryFailed under errors.Is.
type SMSError struct {
	Kind         SMSErrorKind
	ProviderCode string
	Message      string
}

func (e *SMSError) Error() string {
	if e.ProviderCode != "" {
		return fmt.Sprintf("sms send failed (%s, provider code %s): %s", e.Kind, e.ProviderCode, e.Message)
	}
	return fmt.Sprintf("sms send failed (%s): %s", e.Kind, e.Message)
}

func (e *SMSError) Is(target error) bool {
	return target == ErrSMSDeliveryFailed
}
