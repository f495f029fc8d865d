package mocks

import (
	"context"

	"github.com/Jonah-Douglas/Campfire/domain"
)

// MockUserRepository implements domain.UserRepository for testing.
type MockUserRepository struct {
	FindByPhoneFunc      func(ctx context.Context, phone string) (*domain.User, error)
	FindByIDFunc         func(ctx context.Context, id uint) (*domain.User, error)
	CreateForOTPFlowFunc func(ctx context.Context, phone string) (*domain.User, error)
	UpdateLastLoginFunc  func(ctx context.Context, user *domain.User) error
	UpdateFunc           func(ctx context.Context, user *domain.User) error
	ListFunc             func(ctx context.Context, offset, limit int) ([]domain.User, int64, error)
	DeleteFunc           func(ctx context.Context, id uint) error
}

// NewMockUserRepository creates a MockUserRepository with default behaviors.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	if m.FindByPhoneFunc != nil {
		return m.FindByPhoneFunc(ctx, phone)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) CreateForOTPFlow(ctx context.Context, phone string) (*domain.User, error) {
	if m.CreateForOTPFlowFunc != nil {
		return m.CreateForOTPFlowFunc(ctx, phone)
	}
	return &domain.User{ID: 1, PhoneNumber: phone, IsActive: true}, nil
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, user *domain.User) error {
	if m.UpdateLastLoginFunc != nil {
		return m.UpdateLastLoginFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, offset, limit)
	}
	return nil, 0, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}
