package mocks

import (
	"context"

	"github.com/Jonah-Douglas/Campfire/domain"
)

// MockSessionRepository implements domain.SessionRepository for testing.
type MockSessionRepository struct {
	CreateFunc                 func(ctx context.Context, session *domain.UserSession) error
	FindByJTIFunc              func(ctx context.Context, jti string) (*domain.UserSession, error)
	FindActiveByJTIAndUserFunc func(ctx context.Context, jti string, userID uint) (*domain.UserSession, error)
	InvalidateFunc             func(ctx context.Context, session *domain.UserSession) error
	InvalidateByJTIFunc        func(ctx context.Context, jti string) (*domain.UserSession, error)
	InvalidateAllForUserFunc   func(ctx context.Context, userID uint, excludeJTI string) (int64, error)
	CleanupFunc                func(ctx context.Context) (int64, error)
}

// NewMockSessionRepository creates a MockSessionRepository with default behaviors.
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.UserSession) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return nil
}

func (m *MockSessionRepository) FindByJTI(ctx context.Context, jti string) (*domain.UserSession, error) {
	if m.FindByJTIFunc != nil {
		return m.FindByJTIFunc(ctx, jti)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) FindActiveByJTIAndUser(ctx context.Context, jti string, userID uint) (*domain.UserSession, error) {
	if m.FindActiveByJTIAndUserFunc != nil {
		return m.FindActiveByJTIAndUserFunc(ctx, jti, userID)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) Invalidate(ctx context.Context, session *domain.UserSession) error {
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx, session)
	}
	session.IsActive = false
	return nil
}

func (m *MockSessionRepository) InvalidateByJTI(ctx context.Context, jti string) (*domain.UserSession, error) {
	if m.InvalidateByJTIFunc != nil {
		return m.InvalidateByJTIFunc(ctx, jti)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) InvalidateAllForUser(ctx context.Context, userID uint, excludeJTI string) (int64, error) {
	if m.InvalidateAllForUserFunc != nil {
		return m.InvalidateAllForUserFunc(ctx, userID, excludeJTI)
	}
	return 0, nil
}

func (m *MockSessionRepository) Cleanup(ctx context.Context) (int64, error) {
	if m.CleanupFunc != nil {
		return m.CleanupFunc(ctx)
	}
	return 0, nil
}
