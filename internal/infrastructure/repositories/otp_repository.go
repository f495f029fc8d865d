package repositories

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Jonah-Douglas/Campfire/domain"
)

// DBPendingOTP is the database model for PendingOTP.
type DBPendingOTP struct {
	ID           uint      `gorm:"primaryKey"`
	PhoneNumber  string    `gorm:"index;size:30;not null"`
	HashedOTP    string    `gorm:"not null"`
	Status       string    `gorm:"index;size:20;not null;default:PENDING"`
	AttemptsLeft int       `gorm:"not null"`
	ExpiresAt    time.Time `gorm:"index;not null"`
	CreatedAt    time.Time
}

// TableName returns the table name for GORM.
func (DBPendingOTP) TableName() string {
	return "pending_otps"
}

// OTPRepositoryImpl implements domain.OTPRepository using GORM.
type OTPRepositoryImpl struct {
	db     *gorm.DB
	hasher domain.OTPHasher
	logger *slog.Logger
}

// NewOTPRepository creates a new pending-OTP repository.
func NewOTPRepository(db *gorm.DB, hasher domain.OTPHasher, logger *slog.Logger) domain.OTPRepository {
	return &OTPRepositoryImpl{db: db, hasher: hasher, logger: logger}
}

// InvalidateExisting implements domain.OTPRepository. It marks every PENDING
// row for the phone as EXPIRED so at most one challenge is alive at a time.
func (r *OTPRepositoryImpl) InvalidateExisting(ctx context.Context, phone string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&DBPendingOTP{}).
		Where("phone_number = ? AND status = ?", phone, string(domain.OTPStatusPending)).
		Updates(map[string]interface{}{
			"status":        string(domain.OTPStatusExpired),
			"attempts_left": 0,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		r.logger.Info("invalidated existing pending otps",
			"phone_prefix", phonePrefix(phone), "count", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

// Create implements domain.OTPRepository. The plaintext code is hashed
// before it touches the database.
func (r *OTPRepositoryImpl) Create(ctx context.Context, phone, plainOTP string, ttl time.Duration, maxAttempts int) (*domain.PendingOTP, error) {
	hashed, err := r.hasher.Hash(plainOTP)
	if err != nil {
		return nil, err
	}

	row := &DBPendingOTP{
		PhoneNumber:  phone,
		HashedOTP:    hashed,
		Status:       string(domain.OTPStatusPending),
		AttemptsLeft: maxAttempts,
		ExpiresAt:    time.Now().Add(ttl),
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}

	r.logger.Info("pending otp created", "otp_id", row.ID, "phone_prefix", phonePrefix(phone))
	return r.toDomain(row), nil
}

// GetActive implements domain.OTPRepository.
func (r *OTPRepositoryImpl) GetActive(ctx context.Context, phone string) (*domain.PendingOTP, error) {
	var row DBPendingOTP
	err := r.activeQuery(r.db.WithContext(ctx), phone).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOTPNotFound
		}
		return nil, err
	}
	return r.toDomain(&row), nil
}

// VerifyAndConsume implements domain.OTPRepository. The full check runs in
// one transaction with the active row locked, so concurrent submissions for
// the same phone see a consistent attempts counter. Every branch persists
// its state change before returning: domain outcomes are carried out of the
// callback in a variable because a non-nil return would roll the
// transaction back and undo the attempt bookkeeping.
func (r *OTPRepositoryImpl) VerifyAndConsume(ctx context.Context, phone, submittedOTP string) (*domain.PendingOTP, error) {
	var verified *domain.PendingOTP
	var outcome error

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row DBPendingOTP
		err := r.activeQuery(tx.Clauses(clause.Locking{Strength: "UPDATE"}), phone).First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				outcome = domain.ErrOTPNotFound
				return nil
			}
			return err
		}

		now := time.Now()

		// The active query already filters on expiry, but the row may have
		// crossed the deadline between SELECT and this check.
		if !row.ExpiresAt.After(now) {
			row.Status = string(domain.OTPStatusExpired)
			row.AttemptsLeft = 0
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
			outcome = domain.ErrOTPExpired
			return nil
		}

		if !r.hasher.Verify(submittedOTP, row.HashedOTP) {
			row.AttemptsLeft--
			if row.AttemptsLeft <= 0 {
				row.AttemptsLeft = 0
				row.Status = string(domain.OTPStatusMaxAttempts)
				if err := tx.Save(&row).Error; err != nil {
					return err
				}
				outcome = domain.ErrOTPMaxAttempts
				return nil
			}
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
			outcome = &domain.InvalidOTPError{AttemptsLeft: row.AttemptsLeft}
			return nil
		}

		row.Status = string(domain.OTPStatusVerified)
		row.AttemptsLeft = 0
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		verified = r.toDomain(&row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		r.logger.Warn("otp verification failed",
			"phone_prefix", phonePrefix(phone), "reason", outcome.Error())
		return nil, outcome
	}

	r.logger.Info("otp verified", "otp_id", verified.ID, "phone_prefix", phonePrefix(phone))
	return verified, nil
}

// SetSendingError implements domain.OTPRepository.
func (r *OTPRepositoryImpl) SetSendingError(ctx context.Context, otpID uint) error {
	res := r.db.WithContext(ctx).Model(&DBPendingOTP{}).
		Where("id = ?", otpID).
		Updates(map[string]interface{}{
			"status":        string(domain.OTPStatusErrorSending),
			"attempts_left": 0,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOTPNotFound
	}
	r.logger.Warn("otp marked with sending error", "otp_id", otpID)
	return nil
}

// CleanupExpired implements domain.OTPRepository. Deletes rows past expiry
// or in any terminal status.
func (r *OTPRepositoryImpl) CleanupExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ? OR status <> ?", time.Now(), string(domain.OTPStatusPending)).
		Delete(&DBPendingOTP{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *OTPRepositoryImpl) activeQuery(tx *gorm.DB, phone string) *gorm.DB {
	return tx.Model(&DBPendingOTP{}).
		Where("phone_number = ? AND status = ? AND expires_at > ? AND attempts_left > 0",
			phone, string(domain.OTPStatusPending), time.Now()).
		Order("created_at DESC")
}

func (r *OTPRepositoryImpl) toDomain(row *DBPendingOTP) *domain.PendingOTP {
	return &domain.PendingOTP{
		ID:           row.ID,
		PhoneNumber:  row.PhoneNumber,
		HashedOTP:    row.HashedOTP,
		Status:       domain.OTPStatus(row.Status),
		AttemptsLeft: row.AttemptsLeft,
		ExpiresAt:    row.ExpiresAt,
		CreatedAt:    row.CreatedAt,
	}
}

// phonePrefix truncates a phone number for logs.
func phonePrefix(phone string) string {
	if len(phone) <= 7 {
		return phone
	}
	return phone[:7]
}
