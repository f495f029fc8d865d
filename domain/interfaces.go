package domain

import (
	"context"
	"time"
)

// OTPRepository persists pending one-time passwords keyed by phone number.
// Implementations must never store the plaintext code.
type OTPRepository interface {
	// InvalidateExisting marks every PENDING row for the phone number as
	// EXPIRED with no attempts left. Idempotent; returns the row count.
	InvalidateExisting(ctx context.Context, phone string) (int64, error)
	// Create hashes the plaintext code and persists a new PENDING row
	// expiring at now+ttl with the configured attempt budget.
	Create(ctx context.Context, phone, plainOTP string, ttl time.Duration, maxAttempts int) (*PendingOTP, error)
	// GetActive returns the most recent usable PENDING row for the phone,
	// or ErrOTPNotFound.
	GetActive(ctx context.Context, phone string) (*PendingOTP, error)
	// VerifyAndConsume atomically checks the submitted code against the
	// single active record. Every branch persists its state change before
	// returning: expiry marks EXPIRED, a mismatch decrements attempts (and
	// marks MAX_ATTEMPTS at zero), a match marks VERIFIED.
	VerifyAndConsume(ctx context.Context, phone, submittedOTP string) (*PendingOTP, error)
	// SetSendingError marks the row ERROR_SENDING with no attempts left, so
	// a code whose SMS never went out cannot be verified later.
	SetSendingError(ctx context.Context, otpID uint) error
	// CleanupExpired deletes rows past expiry or in any terminal status.
	CleanupExpired(ctx context.Context) (int64, error)
}

// SessionRepository persists refresh-token sessions keyed by JTI.
type SessionRepository interface {
	Create(ctx context.Context, session *UserSession) error
	// FindByJTI is an unscoped lookup used for logout consistency checks.
	FindByJTI(ctx context.Context, jti string) (*UserSession, error)
	// FindActiveByJTIAndUser returns the session only if it is active,
	// unexpired and owned by the given user; ErrSessionNotFound otherwise.
	FindActiveByJTIAndUser(ctx context.Context, jti string, userID uint) (*UserSession, error)
	// Invalidate sets is_active=false and expires the session immediately.
	Invalidate(ctx context.Context, session *UserSession) error
	// InvalidateByJTI invalidates the session with the given JTI. An already
	// inactive session is a no-op that still returns the unchanged record.
	// Returns ErrSessionNotFound when no session carries the JTI.
	InvalidateByJTI(ctx context.Context, jti string) (*UserSession, error)
	// InvalidateAllForUser bulk-revokes every active session of the user,
	// optionally sparing one JTI ("log out everywhere but here").
	InvalidateAllForUser(ctx context.Context, userID uint, excludeJTI string) (int64, error)
	// Cleanup deletes inactive or expired rows.
	Cleanup(ctx context.Context) (int64, error)
}

// UserRepository defines user identity data access.
type UserRepository interface {
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	// CreateForOTPFlow creates the minimal active user record minted on
	// first successful OTP verification.
	CreateForOTPFlow(ctx context.Context, phone string) (*User, error)
	UpdateLastLogin(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	List(ctx context.Context, offset, limit int) ([]User, int64, error)
	Delete(ctx context.Context, id uint) error
}

// TokenService creates and verifies signed, time-bound tokens. Access and
// refresh tokens are signed with distinct secrets so a leak of one class
// cannot mint the other.
type TokenService interface {
	CreateAccessToken(subject uint) (string, error)
	// CreateRefreshToken returns the signed token and its JTI so the caller
	// can persist a matching session.
	CreateRefreshToken(subject uint) (token string, jti string, err error)
	ParseAccessToken(token string) (*TokenClaims, error)
	ParseRefreshToken(token string) (*TokenClaims, error)
	// ParseRefreshTokenAllowExpired skips the expiry check; used at logout
	// so an expired token can still clean up its session record.
	ParseRefreshTokenAllowExpired(token string) (*TokenClaims, error)
}

// OTPHasher produces and verifies salted one-way hashes of OTP codes.
type OTPHasher interface {
	Hash(plainOTP string) (string, error)
	Verify(plainOTP, hashedOTP string) bool
}

// SMSService is the outbound SMS transport. Failures are *SMSError values.
type SMSService interface {
	SendSMS(ctx context.Context, to, body string) (messageID string, err error)
}

// OTPThrottle rate-limits OTP requests per phone number.
type OTPThrottle interface {
	// Allow reports whether a new OTP may be sent now; when false it also
	// returns how long the caller must wait.
	Allow(ctx context.Context, phone string) (bool, time.Duration, error)
}

// AuthService drives the OTP request/verify/refresh/logout flows.
type AuthService interface {
	RequestOTP(ctx context.Context, phone string) (*OTPDelivery, error)
	VerifyOTP(ctx context.Context, phone, code, userAgent, ip string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken, userAgent, ip string) (*AuthResult, error)
	Logout(ctx context.Context, currentUserID uint, refreshToken string) error
	// LogoutOthers revokes every other session of the user, keeping the one
	// bound to the supplied refresh token.
	LogoutOthers(ctx context.Context, currentUserID uint, keepRefreshToken string) (int64, error)
}

// UserService defines profile and superuser user-management operations.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*User, error)
	CompleteProfile(ctx context.Context, user *User, profile ProfileUpdate) (*User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]User, int64, error)
	UpdateUser(ctx context.Context, id uint, update UserUpdate) (*User, error)
	DeleteUser(ctx context.Context, id uint) error
}
