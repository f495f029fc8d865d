package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/Jonah-Douglas/Campfire/domain"
)

const (
	otpCodeDigits = 6
	otpCodeSpace  = 1_000_000 // codes are uniform over 000000-999999

	msgOTPSent      = "OTP sent successfully"
	msgOTPDebugMode = "OTP generated (debug mode)"
)

// AuthConfig carries the orchestrator's tunables.
type AuthConfig struct {
	OTPTTL              time.Duration
	OTPMaxAttempts      int
	AccessTTL           time.Duration
	RefreshTTL          time.Duration
	RotateRefreshTokens bool
	SMSSendTimeout      time.Duration

	// Env plus DebugOTPInResponse short-circuit the SMS send and echo the
	// plaintext code in the response. Dev only, never production.
	Env                string
	DebugOTPInResponse bool
}

func (c AuthConfig) debugOTP() bool {
	return c.Env == "dev" && c.DebugOTPInResponse
}

// AuthServiceImpl implements domain.AuthService. It is the single boundary
// that drives the OTP and session state machines; callers above it only see
// domain errors.
type AuthServiceImpl struct {
	otpRepo     domain.OTPRepository
	sessionRepo domain.SessionRepository
	userRepo    domain.UserRepository
	tokenSvc    domain.TokenService
	smsSvc      domain.SMSService
	throttle    domain.OTPThrottle
	config      AuthConfig
	logger      *slog.Logger
}

// NewAuthService creates the auth orchestrator.
func NewAuthService(
	otpRepo domain.OTPRepository,
	sessionRepo domain.SessionRepository,
	userRepo domain.UserRepository,
	tokenSvc domain.TokenService,
	smsSvc domain.SMSService,
	throttle domain.OTPThrottle,
	config AuthConfig,
	logger *slog.Logger,
) domain.AuthService {
	return &AuthServiceImpl{
		otpRepo:     otpRepo,
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		tokenSvc:    tokenSvc,
		smsSvc:      smsSvc,
		throttle:    throttle,
		config:      config,
		logger:      logger,
	}
}

// generateOTP returns a cryptographically random 6-digit code, uniform over
// the full code space.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpCodeSpace))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpCodeDigits, n.Int64()), nil
}

// RequestOTP implements domain.AuthService. Any previously pending challenge
// for the phone is invalidated before the new one is created, so at most one
// challenge is alive per phone at a time.
func (s *AuthServiceImpl) RequestOTP(ctx context.Context, phone string) (*domain.OTPDelivery, error) {
	ok, wait, err := s.throttle.Allow(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("otp throttle check: %w", err)
	}
	if !ok {
		return nil, &domain.ThrottledError{RetryAfter: wait}
	}

	if _, err := s.otpRepo.InvalidateExisting(ctx, phone); err != nil {
		return nil, fmt.Errorf("invalidate existing otps: %w", err)
	}

	code, err := generateOTP()
	if err != nil {
		return nil, err
	}

	record, err := s.otpRepo.Create(ctx, phone, code, s.config.OTPTTL, s.config.OTPMaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("create pending otp: %w", err)
	}

	if s.config.debugOTP() {
		s.logger.Debug("returning otp in response (debug mode)", "otp_id", record.ID)
		return &domain.OTPDelivery{Message: msgOTPDebugMode, DebugCode: code}, nil
	}

	body := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.",
		code, int(s.config.OTPTTL.Minutes()))

	smsCtx, cancel := context.WithTimeout(ctx, s.config.SMSSendTimeout)
	defer cancel()

	if _, err := s.smsSvc.SendSMS(smsCtx, phone, body); err != nil {
		// Keep the row auditable as ERROR_SENDING rather than letting an
		// unverifiable code linger as active.
		if markErr := s.otpRepo.SetSendingError(ctx, record.ID); markErr != nil {
			s.logger.Error("failed to mark otp sending error", "otp_id", record.ID, "error", markErr)
		}
		var smsErr *domain.SMSError
		if errors.As(err, &smsErr) {
			s.logger.Error("otp sms delivery failed",
				"otp_id", record.ID, "kind", smsErr.Kind.String(), "provider_code", smsErr.ProviderCode)
		}
		return nil, err
	}

	s.logger.Info("otp sent", "otp_id", record.ID)
	return &domain.OTPDelivery{Message: msgOTPSent}, nil
}

// VerifyOTP implements domain.AuthService. A successful verification logs
// the user in, creating their identity record on first contact.
func (s *AuthServiceImpl) VerifyOTP(ctx context.Context, phone, code, userAgent, ip string) (*domain.AuthResult, error) {
	record, err := s.otpRepo.VerifyAndConsume(ctx, phone, code)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByPhone(ctx, phone)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		user, err = s.userRepo.CreateForOTPFlow(ctx, phone)
		if err != nil {
			return nil, fmt.Errorf("create user for otp flow: %w", err)
		}
		s.logger.Info("registered new user via otp", "user_id", user.ID, "otp_id", record.ID)
	case err != nil:
		return nil, fmt.Errorf("find user by phone: %w", err)
	case !user.IsActive:
		s.logger.Warn("inactive user attempted login", "user_id", user.ID)
		return nil, domain.ErrUserInactive
	default:
		if err := s.userRepo.UpdateLastLogin(ctx, user); err != nil {
			return nil, fmt.Errorf("update last login: %w", err)
		}
	}

	// IsNewUser tells the client to route into onboarding; it tracks profile
	// completeness, not strictly row creation.
	return s.issueTokens(ctx, user, userAgent, ip, !user.IsProfileComplete)
}

// Refresh implements domain.AuthService.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken, userAgent, ip string) (*domain.AuthResult, error) {
	claims, err := s.tokenSvc.ParseRefreshToken(refreshToken)
	if err != nil {
		s.logger.Warn("refresh token rejected", "error", err)
		return nil, domain.ErrTokenInvalid
	}

	// The session lookup is what rejects replay: a rotated or logged-out
	// refresh token still carries a valid signature until exp, but its
	// session is gone.
	session, err := s.sessionRepo.FindActiveByJTIAndUser(ctx, claims.JTI, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			s.logger.Warn("refresh with no active session", "user_id", claims.Subject, "jti_suffix", suffix(claims.JTI))
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find active session: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		// Transient read failure; the session stays intact.
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err != nil || !user.IsActive {
		// A session for a deactivated or deleted user must not keep minting
		// access tokens.
		if invErr := s.sessionRepo.Invalidate(ctx, session); invErr != nil {
			s.logger.Error("failed to invalidate stale session", "session_id", session.ID, "error", invErr)
		}
		s.logger.Warn("refresh for inactive or missing user", "user_id", session.UserID)
		return nil, domain.ErrUserInactive
	}

	accessToken, err := s.tokenSvc.CreateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	if !s.config.RotateRefreshTokens {
		return &domain.AuthResult{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "bearer",
			ExpiresIn:    int64(s.config.AccessTTL.Seconds()),
			IsNewUser:    !user.IsProfileComplete,
		}, nil
	}

	// Rotation: invalidate the old session before the new one exists, so a
	// crash mid-rotation leaves the user with no valid session rather than two.
	if err := s.sessionRepo.Invalidate(ctx, session); err != nil {
		return nil, fmt.Errorf("invalidate rotated session: %w", err)
	}

	newRefreshToken, newJTI, err := s.tokenSvc.CreateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}
	newSession := &domain.UserSession{
		UserID:          user.ID,
		RefreshTokenJTI: newJTI,
		UserAgent:       userAgent,
		IPAddress:       ip,
		ExpiresAt:       time.Now().Add(s.config.RefreshTTL),
	}
	if err := s.sessionRepo.Create(ctx, newSession); err != nil {
		return nil, fmt.Errorf("create rotated session: %w", err)
	}

	s.logger.Info("refresh token rotated",
		"user_id", user.ID, "old_jti_suffix", suffix(claims.JTI), "new_jti_suffix", suffix(newJTI))

	return &domain.AuthResult{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.config.AccessTTL.Seconds()),
		IsNewUser:    !user.IsProfileComplete,
	}, nil
}

// Logout implements domain.AuthService. Logout is best-effort from the
// client's perspective: a garbled or expired token returns success; only the
// cross-user ownership check fails hard.
func (s *AuthServiceImpl) Logout(ctx context.Context, currentUserID uint, refreshToken string) error {
	claims, err := s.tokenSvc.ParseRefreshTokenAllowExpired(refreshToken)
	if err != nil {
		s.logger.Warn("logout with undecodable refresh token", "user_id", currentUserID, "error", err)
		return nil
	}
	if claims.JTI == "" || claims.Subject == 0 {
		s.logger.Warn("logout with malformed refresh token", "user_id", currentUserID)
		return nil
	}

	if claims.Subject != currentUserID {
		s.logger.Error("logout attempt for another user's session",
			"requesting_user_id", currentUserID, "target_user_id", claims.Subject, "jti_suffix", suffix(claims.JTI))
		return domain.ErrForbidden
	}

	session, err := s.sessionRepo.InvalidateByJTI(ctx, claims.JTI)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			// Already logged out.
			s.logger.Info("logout found no session for jti", "user_id", currentUserID, "jti_suffix", suffix(claims.JTI))
			return nil
		}
		return fmt.Errorf("invalidate session by jti: %w", err)
	}

	if session.UserID != claims.Subject {
		// The ownership check above passed, so a stored session pointing at a
		// different user signals data corruption. Never surfaced to the client.
		s.logger.Error("CRITICAL: session owner does not match token subject",
			"session_user_id", session.UserID, "token_user_id", claims.Subject, "jti_suffix", suffix(claims.JTI))
		return nil
	}

	s.logger.Info("session invalidated on logout", "user_id", currentUserID, "jti_suffix", suffix(claims.JTI))
	return nil
}

// LogoutOthers implements domain.AuthService: "log out everywhere but here".
func (s *AuthServiceImpl) LogoutOthers(ctx context.Context, currentUserID uint, keepRefreshToken string) (int64, error) {
	claims, err := s.tokenSvc.ParseRefreshToken(keepRefreshToken)
	if err != nil {
		return 0, domain.ErrTokenInvalid
	}
	if claims.Subject != currentUserID {
		s.logger.Error("logout-others attempt with another user's token",
			"requesting_user_id", currentUserID, "target_user_id", claims.Subject)
		return 0, domain.ErrForbidden
	}

	count, err := s.sessionRepo.InvalidateAllForUser(ctx, currentUserID, claims.JTI)
	if err != nil {
		return 0, fmt.Errorf("invalidate all sessions: %w", err)
	}
	return count, nil
}

func (s *AuthServiceImpl) issueTokens(ctx context.Context, user *domain.User, userAgent, ip string, isNewUser bool) (*domain.AuthResult, error) {
	accessToken, err := s.tokenSvc.CreateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}
	refreshToken, jti, err := s.tokenSvc.CreateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	session := &domain.UserSession{
		UserID:          user.ID,
		RefreshTokenJTI: jti,
		UserAgent:       userAgent,
		IPAddress:       ip,
		ExpiresAt:       time.Now().Add(s.config.RefreshTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("tokens issued", "user_id", user.ID, "jti_suffix", suffix(jti), "is_new_user", isNewUser)

	return &domain.AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.config.AccessTTL.Seconds()),
		IsNewUser:    isNewUser,
	}, nil
}

func suffix(jti string) string {
	if len(jti) <= 6 {
		return jti
	}
	return jti[len(jti)-6:]
}
