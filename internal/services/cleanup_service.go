package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Jonah-Douglas/Campfire/domain"
)

// CleanupService periodically expires stale OTP challenges and sweeps
// dead sessions so the tables stay bounded.
type CleanupService struct {
	otpRepo     domain.OTPRepository
	sessionRepo domain.SessionRepository
	interval    time.Duration
	logger      *slog.Logger
}

func NewCleanupService(otpRepo domain.OTPRepository, sessionRepo domain.SessionRepository, interval time.Duration, logger *slog.Logger) *CleanupService {
	return &CleanupService{
		otpRepo:     otpRepo,
		sessionRepo: sessionRepo,
		interval:    interval,
		logger:      logger,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval. Call it in
// its own goroutine.
func (s *CleanupService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("cleanup worker started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *CleanupService) sweep(ctx context.Context) {
	otps, err := s.otpRepo.CleanupExpired(ctx)
	if err != nil {
		s.logger.Error("otp cleanup failed", "error", err)
	}
	sessions, err := s.sessionRepo.Cleanup(ctx)
	if err != nil {
		s.logger.Error("session cleanup failed", "error", err)
	}
	if otps > 0 || sessions > 0 {
		s.logger.Info("cleanup sweep done", "expired_otps", otps, "removed_sessions", sessions)
	}
}
