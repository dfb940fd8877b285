package auth

import "golang.org/x/crypto/bcrypt"

// PasswordVerifier compares a stored password hash against a candidate
// plaintext. The login flow depends only on this interface so tests can
// substitute a cheap verifier.
type PasswordVerifier interface {
	// Compare returns nil when password matches hashedPassword, or an
	// error on mismatch or a malformed hash.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier implements PasswordVerifier with bcrypt, matching how the
// user store hashes passwords on write.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare implements PasswordVerifier.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
