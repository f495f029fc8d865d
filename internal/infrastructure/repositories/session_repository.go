package repositories

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/Jonah-Douglas/Campfire/domain"
)

// DBUserSession is the database model for UserSession.
type DBUserSession struct {
	ID              uint      `gorm:"primaryKey"`
	UserID          uint      `gorm:"index;not null"`
	RefreshTokenJTI string    `gorm:"uniqueIndex;size:64;not null"`
	IsActive        bool      `gorm:"index;not null"`
	UserAgent       string    `gorm:"size:512"`
	IPAddress       string    `gorm:"size:64"`
	ExpiresAt       time.Time `gorm:"index;not null"`
	CreatedAt       time.Time
}

// TableName returns the table name for GORM.
func (DBUserSession) TableName() string {
	return "user_sessions"
}

// SessionRepositoryImpl implements domain.SessionRepository using GORM.
type SessionRepositoryImpl struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewSessionRepository creates a new user-session repository.
func NewSessionRepository(db *gorm.DB, logger *slog.Logger) domain.SessionRepository {
	return &SessionRepositoryImpl{db: db, logger: logger}
}

// Create implements domain.SessionRepository.
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *domain.UserSession) error {
	row := &DBUserSession{
		UserID:          session.UserID,
		RefreshTokenJTI: session.RefreshTokenJTI,
		IsActive:        true,
		UserAgent:       session.UserAgent,
		IPAddress:       session.IPAddress,
		ExpiresAt:       session.ExpiresAt,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	session.ID = row.ID
	session.IsActive = true
	session.CreatedAt = row.CreatedAt

	r.logger.Info("user session created",
		"session_id", row.ID, "user_id", row.UserID, "jti_suffix", jtiSuffix(row.RefreshTokenJTI))
	return nil
}

// FindByJTI implements domain.SessionRepository. Unscoped lookup used by the
// logout consistency check.
func (r *SessionRepositoryImpl) FindByJTI(ctx context.Context, jti string) (*domain.UserSession, error) {
	var row DBUserSession
	err := r.db.WithContext(ctx).Where("refresh_token_jti = ?", jti).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return r.toDomain(&row), nil
}

// FindActiveByJTIAndUser implements domain.SessionRepository. The scoped
// lookup used for refresh validation: a revoked or expired session is
// indistinguishable from a missing one.
func (r *SessionRepositoryImpl) FindActiveByJTIAndUser(ctx context.Context, jti string, userID uint) (*domain.UserSession, error) {
	var row DBUserSession
	err := r.db.WithContext(ctx).
		Where("refresh_token_jti = ? AND user_id = ? AND is_active = ? AND expires_at > ?",
			jti, userID, true, time.Now()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return r.toDomain(&row), nil
}

// Invalidate implements domain.SessionRepository. Sets is_active=false and
// expires the session immediately.
func (r *SessionRepositoryImpl) Invalidate(ctx context.Context, session *domain.UserSession) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&DBUserSession{}).
		Where("id = ?", session.ID).
		Updates(map[string]interface{}{"is_active": false, "expires_at": now})
	if res.Error != nil {
		return res.Error
	}
	session.IsActive = false
	session.ExpiresAt = now

	r.logger.Info("user session invalidated",
		"session_id", session.ID, "user_id", session.UserID, "jti_suffix", jtiSuffix(session.RefreshTokenJTI))
	return nil
}

// InvalidateByJTI implements domain.SessionRepository. Invalidating an
// already-inactive session is a no-op that still returns the record.
func (r *SessionRepositoryImpl) InvalidateByJTI(ctx context.Context, jti string) (*domain.UserSession, error) {
	session, err := r.FindByJTI(ctx, jti)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return session, nil
	}
	if err := r.Invalidate(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// InvalidateAllForUser implements domain.SessionRepository.
func (r *SessionRepositoryImpl) InvalidateAllForUser(ctx context.Context, userID uint, excludeJTI string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&DBUserSession{}).
		Where("user_id = ? AND is_active = ?", userID, true)
	if excludeJTI != "" {
		q = q.Where("refresh_token_jti <> ?", excludeJTI)
	}
	res := q.Updates(map[string]interface{}{"is_active": false, "expires_at": time.Now()})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		r.logger.Info("bulk session invalidation",
			"user_id", userID, "count", res.RowsAffected, "excluded_jti_suffix", jtiSuffix(excludeJTI))
	}
	return res.RowsAffected, nil
}

// Cleanup implements domain.SessionRepository. Deletes inactive or expired rows.
func (r *SessionRepositoryImpl) Cleanup(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_active = ? OR expires_at < ?", false, time.Now()).
		Delete(&DBUserSession{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *SessionRepositoryImpl) toDomain(row *DBUserSession) *domain.UserSession {
	return &domain.UserSession{
		ID:              row.ID,
		UserID:          row.UserID,
		RefreshTokenJTI: row.RefreshTokenJTI,
		IsActive:        row.IsActive,
		UserAgent:       row.UserAgent,
		IPAddress:       row.IPAddress,
		ExpiresAt:       row.ExpiresAt,
		CreatedAt:       row.CreatedAt,
	}
}

// jtiSuffix truncates a JTI for logs.
func jtiSuffix(jti string) string {
	if jti == "" {
		return "N/A"
	}
	if len(jti) <= 6 {
		return jti
	}
	return jti[len(jti)-6:]
}
