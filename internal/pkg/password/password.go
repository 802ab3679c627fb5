package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost used for account passwords.
const DefaultCost = 12

// MinLength is the shortest password sign-up accepts.
const MinLength = 6

var ErrTooShort = errors.New("password is too short")

// Hash hashes password using bcrypt with DefaultCost
func Hash(password string) (string, error) {
	return HashWithCost(password, DefaultCost)
}

// HashWithCost hashes with an explicit bcrypt cost; tests use bcrypt.MinCost.
func HashWithCost(password string, cost int) (string, error) {
	if len(password) < MinLength {
		return "", ErrTooShort
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// Verify compares password with hash
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
