package util

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt cost used for account passwords.
const DefaultHashCost = 8

// HashPassword hashes an account password at the default cost.
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, DefaultHashCost)
}

// HashPasswordCost hashes an account password at an explicit bcrypt
// cost.
func HashPasswordCost(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
