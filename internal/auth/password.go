package auth

import (
	"internship_portal/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func hashPassword(pass string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
}

// verifyPassword compares against the stored hash. The hash itself is never
// returned or logged.
func verifyPassword(u models.User, plaintext string) bool {
	return bcrypt.CompareHashAndPassword(u.PassHash, []byte(plaintext)) == nil
}
