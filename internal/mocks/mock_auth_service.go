package mocks

import (
	"context"

	"github.com/Jonah-Douglas/Campfire/domain"
)

// MockAuthService implements domain.AuthService for testing.
type MockAuthService struct {
	RequestOTPFunc   func(ctx context.Context, phone string) (*domain.OTPDelivery, error)
	VerifyOTPFunc    func(ctx context.Context, phone, code, userAgent, ip string) (*domain.AuthResult, error)
	RefreshFunc      func(ctx context.Context, refreshToken, userAgent, ip string) (*domain.AuthResult, error)
	LogoutFunc       func(ctx context.Context, currentUserID uint, refreshToken string) error
	LogoutOthersFunc func(ctx context.Context, currentUserID uint, keepRefreshToken string) (int64, error)
}

// NewMockAuthService creates a MockAuthService with default behaviors.
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) RequestOTP(ctx context.Context, phone string) (*domain.OTPDelivery, error) {
	if m.RequestOTPFunc != nil {
		return m.RequestOTPFunc(ctx, phone)
	}
	return &domain.OTPDelivery{Message: "OTP sent successfully"}, nil
}

func (m *MockAuthService) VerifyOTP(ctx context.Context, phone, code, userAgent, ip string) (*domain.AuthResult, error) {
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, phone, code, userAgent, ip)
	}
	return nil, domain.ErrOTPNotFound
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken, userAgent, ip string) (*domain.AuthResult, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken, userAgent, ip)
	}
	return nil, domain.ErrTokenInvalid
}

func (m *MockAuthService) Logout(ctx context.Context, currentUserID uint, refreshToken string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, currentUserID, refreshToken)
	}
	return nil
}

func (m *MockAuthService) LogoutOthers(ctx context.Context, currentUserID uint, keepRefreshToken string) (int64, error) {
	if m.LogoutOthersFunc != nil {
		return m.LogoutOthersFunc(ctx, currentUserID, keepRefreshToken)
	}
	return 0, nil
}
