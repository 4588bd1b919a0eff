package auth

import "golang.org/x/crypto/bcrypt"

// PasswordVerifier defines the interface for comparing a password with a hash.
type PasswordVerifier interface {
	// Compare checks whether the given plaintext password matches the stored
	// hash. Returns nil on match and an error otherwise.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier implements PasswordVerifier using bcrypt.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new bcrypt-based password verifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare checks the password against the bcrypt hash.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
