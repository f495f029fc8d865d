package domain

import "time"

// OTPStatus tracks the lifecycle of a pending one-time password.
type OTPStatus string

const (
	OTPStatusPending      OTPStatus = "PENDING"
	OTPStatusVerified     OTPStatus = "VERIFIED"
	OTPStatusExpired      OTPStatus = "EXPIRED"
	OTPStatusMaxAttempts  OTPStatus = "MAX_ATTEMPTS"
	OTPStatusErrorSending OTPStatus = "ERROR_SENDING"
)

// Terminal reports whether the status can no longer transition.
// Terminal rows are eligible for cleanup.
func (s OTPStatus) Terminal() bool {
	return s != OTPStatusPending
}

// PendingOTP represents one outstanding phone verification challenge.
// The code itself is stored only as a salted one-way hash.
type PendingOTP struct {
	ID           uint
	PhoneNumber  string
	HashedOTP    string
	Status       OTPStatus
	AttemptsLeft int
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Active reports whether the challenge can still be verified at the given instant.
func (o *PendingOTP) Active(now time.Time) bool {
	return o.Status == OTPStatusPending && o.AttemptsLeft > 0 && now.Before(o.ExpiresAt)
}

// UserSession represents one issued refresh token's validity window,
// i.e. one logged-in device. Keyed by the refresh token's JTI so the
// token string itself never needs to be persisted.
type UserSession struct {
	ID              uint
	UserID          uint
	RefreshTokenJTI string
	IsActive        bool
	UserAgent       string
	IPAddress       string
	ExpiresAt       time.Time
	CreatedAt       time.Time
}

// Usable reports whether the session may still mint access tokens.
func (s *UserSession) Usable(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}

// User represents a user identity record. Users are created implicitly on
// first successful OTP verification; there is no separate signup step.
type User struct {
	ID                uint
	PhoneNumber       string
	Email             string
	FirstName         string
	LastName          string
	IsActive          bool
	IsProfileComplete bool
	IsSuperuser       bool
	LastLoginAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Role returns the authorization role used for policy checks.
// Only owner-vs-superuser is modeled.
func (u *User) Role() string {
	if u.IsSuperuser {
		return "superuser"
	}
	return "user"
}

// TokenClaims carries the verified claim-set extracted from a signed token.
type TokenClaims struct {
	Subject   uint
	JTI       string
	IssuedAt  int64
	ExpiresAt int64
}

// AuthResult is the outcome of a successful login or token refresh.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
	IsNewUser    bool
}

// OTPDelivery is the outcome of an OTP request. DebugCode is populated
// only when the debug-OTP configuration short-circuits the SMS send.
type OTPDelivery struct {
	Message   string
	DebugCode string
}

// ProfileUpdate carries the fields a user supplies to complete their profile.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Email     string
}

// UserUpdate carries the mutable fields of a superuser-driven user update.
// Nil pointers leave the corresponding field unchanged.
type UserUpdate struct {
	Email       *string
	FirstName   *string
	LastName    *string
	IsActive    *bool
	IsSuperuser *bool
}
