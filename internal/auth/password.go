package auth

import (
	"smartpos/internal/apperror"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the bcrypt input limit.
const MaxPasswordBytes = 72

func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", apperror.InvalidInput("password too long")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperror.Wrap(apperror.KindInternal, err, "failed to hash password")
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash. Over-long input never matches.
func CheckPassword(hash, password string) bool {
	if len(password) > MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
