package mocks

import (
	"fmt"
	"time"

	"github.com/Jonah-Douglas/Campfire/domain"
)

// MockTokenService implements domain.TokenService for testing.
type MockTokenService struct {
	CreateAccessTokenFunc             func(subject uint) (string, error)
	CreateRefreshTokenFunc            func(subject uint) (string, string, error)
	ParseAccessTokenFunc              func(token string) (*domain.TokenClaims, error)
	ParseRefreshTokenFunc             func(token string) (*domain.TokenClaims, error)
	ParseRefreshTokenAllowExpiredFunc func(token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a MockTokenService with default behaviors.
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

func (m *MockTokenService) CreateAccessToken(subject uint) (string, error) {
	if m.CreateAccessTokenFunc != nil {
		return m.CreateAccessTokenFunc(subject)
	}
	return fmt.Sprintf("access-token-%d", subject), nil
}

func (m *MockTokenService) CreateRefreshToken(subject uint) (string, string, error) {
	if m.CreateRefreshTokenFunc != nil {
		return m.CreateRefreshTokenFunc(subject)
	}
	jti := fmt.Sprintf("jti-%d-%d", subject, time.Now().UnixNano())
	return fmt.Sprintf("refresh-token-%d", subject), jti, nil
}

func (m *MockTokenService) ParseAccessToken(token string) (*domain.TokenClaims, error) {
	if m.ParseAccessTokenFunc != nil {
		return m.ParseAccessTokenFunc(token)
	}
	return nil, domain.ErrTokenInvalid
}

func (m *MockTokenService) ParseRefreshToken(token string) (*domain.TokenClaims, error) {
	if m.ParseRefreshTokenFunc != nil {
		return m.ParseRefreshTokenFunc(token)
	}
	return nil, domain.ErrTokenInvalid
}

func (m *MockTokenService) ParseRefreshTokenAllowExpired(token string) (*domain.TokenClaims, error) {
	if m.ParseRefreshTokenAllowExpiredFunc != nil {
		return m.ParseRefreshTokenAllowExpiredFunc(token)
	}
	return nil, domain.ErrTokenInvalid
}
