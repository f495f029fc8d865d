package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jonah-Douglas/Campfire/domain"
)

// UserServiceImpl implements domain.UserService.
type UserServiceImpl struct {
	userRepo domain.UserRepository
	logger   *slog.Logger
}

func NewUserService(userRepo domain.UserRepository, logger *slog.Logger) domain.UserService {
	return &UserServiceImpl{userRepo: userRepo, logger: logger}
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// CompleteProfile fills in the onboarding fields. It is a one-shot
// transition; a completed profile is edited through UpdateUser instead.
func (s *UserServiceImpl) CompleteProfile(ctx context.Context, user *domain.User, profile domain.ProfileUpdate) (*domain.User, error) {
	if user.IsProfileComplete {
		return nil, domain.ErrProfileAlreadyComplete
	}

	user.FirstName = profile.FirstName
	user.LastName = profile.LastName
	user.Email = profile.Email
	user.IsProfileComplete = true

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("complete profile: %w", err)
	}

	s.logger.Info("profile completed", "user_id", user.ID)
	return user, nil
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.List(ctx, offset, limit)
}

func (s *UserServiceImpl) UpdateUser(ctx context.Context, id uint, update domain.UserUpdate) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.IsActive != nil {
		user.IsActive = *update.IsActive
	}
	if update.IsSuperuser != nil {
		user.IsSuperuser = *update.IsSuperuser
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("user updated", "user_id", user.ID)
	return user, nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}
