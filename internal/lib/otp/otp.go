package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"internship_portal/internal/models"
)

// Window is the default validity window of a freshly generated code.
const Window = 10 * time.Minute

const (
	codeMin = 100000
	codeMax = 999999
)

var (
	ErrNotNumeric = errors.New("otp is not numeric")
	ErrInvalid    = errors.New("otp is invalid")
	ErrExpired    = errors.New("otp has expired")
)

// Generate draws a 6-digit code uniformly from [100000, 999999].
func Generate() (int, error) {
	const op = "otp.Generate"

	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return codeMin + int(n.Int64()), nil
}

// ParseCode converts user-supplied input into a numeric code. Non-numeric
// input is rejected before any comparison happens.
func ParseCode(s string) (int, error) {
	code, err := strconv.Atoi(s)
	if err != nil || code < 0 {
		return 0, ErrNotNumeric
	}

	return code, nil
}

// Validate checks a supplied code against the stored pair. It is pure so it
// can back both a verifying and a check-only path; consuming the code is a
// separate explicit step (Clear).
func Validate(code *int, expiresAt *time.Time, supplied int, now time.Time) error {
	if code == nil || expiresAt == nil {
		return ErrInvalid
	}

	if now.After(*expiresAt) {
		return ErrExpired
	}

	if *code != supplied {
		return ErrInvalid
	}

	return nil
}

// Clear drops the OTP pair from the user record. This is the only place OTP
// state is cleared; called exactly once on successful verification.
func Clear(u *models.User) {
	u.OTPCode = nil
	u.OTPExpiresAt = nil
}
