package services

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Jonah-Douglas/Campfire/internal/mocks"
)

func TestCleanupService_SweepsBothStores(t *testing.T) {
	otpRepo := mocks.NewMockOTPRepository()
	sessionRepo := mocks.NewMockSessionRepository()

	var otpSweeps, sessionSweeps atomic.Int32
	otpRepo.CleanupExpiredFunc = func(ctx context.Context) (int64, error) {
		otpSweeps.Add(1)
		return 2, nil
	}
	sessionRepo.CleanupFunc = func(ctx context.Context) (int64, error) {
		sessionSweeps.Add(1)
		return 1, nil
	}

	svc := NewCleanupService(otpRepo, sessionRepo, 5*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return otpSweeps.Load() >= 2 && sessionSweeps.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup worker did not stop on context cancel")
	}
}

func TestCleanupService_ErrorsDoNotStopWorker(t *testing.T) {
	otpRepo := mocks.NewMockOTPRepository()
	sessionRepo := mocks.NewMockSessionRepository()

	var sweeps atomic.Int32
	otpRepo.CleanupExpiredFunc = func(ctx context.Context) (int64, error) {
		sweeps.Add(1)
		return 0, assert.AnError
	}

	svc := NewCleanupService(otpRepo, sessionRepo, 5*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	assert.Eventually(t, func() bool { return sweeps.Load() >= 3 }, time.Second, 5*time.Millisecond)
}
