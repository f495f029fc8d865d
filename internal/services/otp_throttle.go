package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Jonah-Douglas/Campfire/domain"
)

const otpThrottlePrefix = "otp_resend:"

// RedisOTPThrottle rate-limits OTP requests per phone using a Redis key with
// a resend-window TTL. The first request in a window wins the SetNX; repeats
// are told how long to wait.
type RedisOTPThrottle struct {
	client *redis.Client
	window time.Duration
}

func NewRedisOTPThrottle(client *redis.Client, window time.Duration) *RedisOTPThrottle {
	return &RedisOTPThrottle{client: client, window: window}
}

// Allow implements domain.OTPThrottle.
func (t *RedisOTPThrottle) Allow(ctx context.Context, phone string) (bool, time.Duration, error) {
	key := otpThrottlePrefix + phone

	ok, err := t.client.SetNX(ctx, key, "1", t.window).Result()
	if err != nil {
		return false, 0, fmt.Errorf("otp throttle setnx: %w", err)
	}
	if ok {
		return true, 0, nil
	}

	ttl, err := t.client.TTL(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("otp throttle ttl: %w", err)
	}
	if ttl < 0 {
		// Key vanished or has no expiry between the two calls; let it through.
		return true, 0, nil
	}
	return false, ttl, nil
}

var _ domain.OTPThrottle = (*RedisOTPThrottle)(nil)
