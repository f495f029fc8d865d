package mocks

import (
	"context"
	"time"

	"github.com/Jonah-Douglas/Campfire/domain"
)

// MockOTPRepository implements domain.OTPRepository for testing.
type MockOTPRepository struct {
	InvalidateExistingFunc func(ctx context.Context, phone string) (int64, error)
	CreateFunc             func(ctx context.Context, phone, plainOTP string, ttl time.Duration, maxAttempts int) (*domain.PendingOTP, error)
	GetActiveFunc          func(ctx context.Context, phone string) (*domain.PendingOTP, error)
	VerifyAndConsumeFunc   func(ctx context.Context, phone, submittedOTP string) (*domain.PendingOTP, error)
	SetSendingErrorFunc    func(ctx context.Context, otpID uint) error
	CleanupExpiredFunc     func(ctx context.Context) (int64, error)
}

// NewMockOTPRepository creates a MockOTPRepository with default behaviors.
func NewMockOTPRepository() *MockOTPRepository {
	return &MockOTPRepository{}
}

func (m *MockOTPRepository) InvalidateExisting(ctx context.Context, phone string) (int64, error) {
	if m.InvalidateExistingFunc != nil {
		return m.InvalidateExistingFunc(ctx, phone)
	}
	return 0, nil
}

func (m *MockOTPRepository) Create(ctx context.Context, phone, plainOTP string, ttl time.Duration, maxAttempts int) (*domain.PendingOTP, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, phone, plainOTP, ttl, maxAttempts)
	}
	return &domain.PendingOTP{
		ID:           1,
		PhoneNumber:  phone,
		Status:       domain.OTPStatusPending,
		AttemptsLeft: maxAttempts,
		ExpiresAt:    time.Now().Add(ttl),
		CreatedAt:    time.Now(),
	}, nil
}

func (m *MockOTPRepository) GetActive(ctx context.Context, phone string) (*domain.PendingOTP, error) {
	if m.GetActiveFunc != nil {
		return m.GetActiveFunc(ctx, phone)
	}
	return nil, domain.ErrOTPNotFound
}

func (m *MockOTPRepository) VerifyAndConsume(ctx context.Context, phone, submittedOTP string) (*domain.PendingOTP, error) {
	if m.VerifyAndConsumeFunc != nil {
		return m.VerifyAndConsumeFunc(ctx, phone, submittedOTP)
	}
	return nil, domain.ErrOTPNotFound
}

func (m *MockOTPRepository) SetSendingError(ctx context.Context, otpID uint) error {
	if m.SetSendingErrorFunc != nil {
		return m.SetSendingErrorFunc(ctx, otpID)
	}
	return nil
}

func (m *MockOTPRepository) CleanupExpired(ctx context.Context) (int64, error) {
	if m.CleanupExpiredFunc != nil {
		return m.CleanupExpiredFunc(ctx)
	}
	return 0, nil
}
