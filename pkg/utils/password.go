package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt，DefaultCost
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
