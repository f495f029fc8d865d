package mocks

import (
	"context"
	"time"
)

// MockOTPThrottle implements domain.OTPThrottle for testing.
type MockOTPThrottle struct {
	AllowFunc func(ctx context.Context, phone string) (bool, time.Duration, error)
}

// NewMockOTPThrottle creates a MockOTPThrottle that allows everything.
func NewMockOTPThrottle() *MockOTPThrottle {
	return &MockOTPThrottle{}
}

func (m *MockOTPThrottle) Allow(ctx context.Context, phone string) (bool, time.Duration, error) {
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, phone)
	}
	return true, 0, nil
}
