package domain

import (
	"testing"
	"time"
)

func TestPendingOTPActive(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		otp  PendingOTP
		want bool
	}{
		{
			name: "pending with attempts and time left",
			otp:  PendingOTP{Status: OTPStatusPending, AttemptsLeft: 3, ExpiresAt: now.Add(5 * time.Minute)},
			want: true,
		},
		{
			name: "pending but expired",
			otp:  PendingOTP{Status: OTPStatusPending, AttemptsLeft: 3, ExpiresAt: now.Add(-time.Second)},
			want: false,
		},
		{
			name: "pending but no attempts left",
			otp:  PendingOTP{Status: OTPStatusPending, AttemptsLeft: 0, ExpiresAt: now.Add(5 * time.Minute)},
			want: false,
		},
		{
			name: "verified is never active",
			otp:  PendingOTP{Status: OTPStatusVerified, AttemptsLeft: 3, ExpiresAt: now.Add(5 * time.Minute)},
			want: false,
		},
		{
			name: "sending error is never active",
			otp:  PendingOTP{Status: OTPStatusErrorSending, AttemptsLeft: 3, ExpiresAt: now.Add(5 * time.Minute)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.otp.Active(now); got != tt.want {
				t.Errorf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOTPStatusTerminal(t *testing.T) {
	if OTPStatusPending.Terminal() {
		t.Error("PENDING must not be terminal")
	}
	for _, s := range []OTPStatus{OTPStatusVerified, OTPStatusExpired, OTPStatusMaxAttempts, OTPStatusErrorSending} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}

func TestUserSessionUsable(t *testing.T) {
	now := time.Now()

	active := UserSession{IsActive: true, ExpiresAt: now.Add(time.Hour)}
	if !active.Usable(now) {
		t.Error("active unexpired session must be usable")
	}

	revoked := UserSession{IsActive: false, ExpiresAt: now.Add(time.Hour)}
	if revoked.Usable(now) {
		t.Error("revoked session must not be usable")
	}

	expired := UserSession{IsActive: true, ExpiresAt: now.Add(-time.Minute)}
	if expired.Usable(now) {
		t.Error("expired session must not be usable")
	}
}

func TestUserRole(t *testing.T) {
	su := User{IsSuperuser: true}
	if su.Role() != "superuser" {
		t.Errorf("expected superuser role, got %s", su.Role())
	}
	regular := User{}
	if regular.Role() != "user" {
		t.Errorf("expected user role, got %s", regular.Role())
	}
}
