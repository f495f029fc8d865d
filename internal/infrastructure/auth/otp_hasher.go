package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/Jonah-Douglas/Campfire/domain"
)

// BcryptOTPHasher implements domain.OTPHasher. bcrypt embeds a per-hash salt
// and compares in constant time, so the stored value never reveals the code.
type BcryptOTPHasher struct {
	cost int
}

// NewOTPHasher creates an OTP hasher with the default bcrypt cost.
func NewOTPHasher() domain.OTPHasher {
	return &BcryptOTPHasher{cost: bcrypt.DefaultCost}
}

// Hash implements domain.OTPHasher.
func (h *BcryptOTPHasher) Hash(plainOTP string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainOTP), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify implements domain.OTPHasher.
func (h *BcryptOTPHasher) Verify(plainOTP, hashedOTP string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedOTP), []byte(plainOTP)) == nil
}
