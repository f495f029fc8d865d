package repositories

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/Jonah-Douglas/Campfire/domain"
)

// DBUser is the database model for User.
type DBUser struct {
	ID                uint    `gorm:"primaryKey"`
	PhoneNumber       string  `gorm:"uniqueIndex;size:30;not null"`
	Email             *string `gorm:"uniqueIndex;size:255"`
	FirstName         string  `gorm:"size:50"`
	LastName          string  `gorm:"size:50"`
	IsActive          bool    `gorm:"index;not null"`
	IsProfileComplete bool    `gorm:"not null"`
	IsSuperuser       bool    `gorm:"not null"`
	LastLoginAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName returns the table name for GORM.
func (DBUser) TableName() string {
	return "users"
}

// UserRepositoryImpl implements domain.UserRepository using GORM.
type UserRepositoryImpl struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB, logger *slog.Logger) domain.UserRepository {
	return &UserRepositoryImpl{db: db, logger: logger}
}

// FindByPhone implements domain.UserRepository.
func (r *UserRepositoryImpl) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	var row DBUser
	err := r.db.WithContext(ctx).Where("phone_number = ?", phone).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.toDomain(&row), nil
}

// FindByID implements domain.UserRepository.
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var row DBUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.toDomain(&row), nil
}

// CreateForOTPFlow implements domain.UserRepository. Creates the minimal
// active record for a phone number seen for the first time; the profile is
// completed in a later request.
func (r *UserRepositoryImpl) CreateForOTPFlow(ctx context.Context, phone string) (*domain.User, error) {
	row := &DBUser{
		PhoneNumber:       phone,
		IsActive:          true,
		IsProfileComplete: false,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	r.logger.Info("user created via otp flow", "user_id", row.ID)
	return r.toDomain(row), nil
}

// UpdateLastLogin implements domain.UserRepository.
func (r *UserRepositoryImpl) UpdateLastLogin(ctx context.Context, user *domain.User) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Model(&DBUser{}).
		Where("id = ?", user.ID).
		Update("last_login_at", now).Error
	if err != nil {
		return err
	}
	user.LastLoginAt = &now
	return nil
}

// Update implements domain.UserRepository.
func (r *UserRepositoryImpl) Update(ctx context.Context, user *domain.User) error {
	row := r.toDB(user)
	return r.db.WithContext(ctx).Save(row).Error
}

// List implements domain.UserRepository. Returns the page and the total count.
func (r *UserRepositoryImpl) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&DBUser{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []DBUser
	err := r.db.WithContext(ctx).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	users := make([]domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, *r.toDomain(&rows[i]))
	}
	return users, total, nil
}

// Delete implements domain.UserRepository. Sessions cascade through cleanup.
func (r *UserRepositoryImpl) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&DBUser{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	r.logger.Info("user deleted", "user_id", id)
	return nil
}

func (r *UserRepositoryImpl) toDB(user *domain.User) *DBUser {
	var email *string
	if user.Email != "" {
		email = &user.Email
	}
	return &DBUser{
		ID:                user.ID,
		PhoneNumber:       user.PhoneNumber,
		Email:             email,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		IsActive:          user.IsActive,
		IsProfileComplete: user.IsProfileComplete,
		IsSuperuser:       user.IsSuperuser,
		LastLoginAt:       user.LastLoginAt,
		CreatedAt:         user.CreatedAt,
	}
}

func (r *UserRepositoryImpl) toDomain(row *DBUser) *domain.User {
	email := ""
	if row.Email != nil {
		email = *row.Email
	}
	return &domain.User{
		ID:                row.ID,
		PhoneNumber:       row.PhoneNumber,
		Email:             email,
		FirstName:         row.FirstName,
		LastName:          row.LastName,
		IsActive:          row.IsActive,
		IsProfileComplete: row.IsProfileComplete,
		IsSuperuser:       row.IsSuperuser,
		LastLoginAt:       row.LastLoginAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}
