package mocks

import (
	"context"

	"github.com/Jonah-Douglas/Campfire/domain"
)

// MockUserService implements domain.UserService for testing.
type MockUserService struct {
	GetUserFunc         func(ctx context.Context, id uint) (*domain.User, error)
	CompleteProfileFunc func(ctx context.Context, user *domain.User, profile domain.ProfileUpdate) (*domain.User, error)
	ListUsersFunc       func(ctx context.Context, offset, limit int) ([]domain.User, int64, error)
	UpdateUserFunc      func(ctx context.Context, id uint, update domain.UserUpdate) (*domain.User, error)
	DeleteUserFunc      func(ctx context.Context, id uint) error
}

// NewMockUserService creates a MockUserService with default behaviors.
func NewMockUserService() *MockUserService {
	return &MockUserService{}
}

func (m *MockUserService) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserService) CompleteProfile(ctx context.Context, user *domain.User, profile domain.ProfileUpdate) (*domain.User, error) {
	if m.CompleteProfileFunc != nil {
		return m.CompleteProfileFunc(ctx, user, profile)
	}
	return user, nil
}

func (m *MockUserService) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, offset, limit)
	}
	return nil, 0, nil
}

func (m *MockUserService) UpdateUser(ctx context.Context, id uint, update domain.UserUpdate) (*domain.User, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, id, update)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserService) DeleteUser(ctx context.Context, id uint) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, id)
	}
	return nil
}
