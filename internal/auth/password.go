package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"github.com/southcentralhub/supportdesk/internal/config"
)

// PasswordVerifier checks candidate passwords against the configured staff
// secret. A bcrypt hash takes precedence over the plaintext secret; with
// neither configured every attempt fails.
type PasswordVerifier struct {
	plain string
	hash  string
}

// NewPasswordVerifier builds a verifier from auth config.
func NewPasswordVerifier(cfg config.AuthConfig) *PasswordVerifier {
	return &PasswordVerifier{plain: cfg.StaffPassword, hash: cfg.StaffPasswordHash}
}

// Verify reports whether candidate matches the staff secret.
func (v *PasswordVerifier) Verify(candidate string) bool {
	if v.hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(v.hash), []byte(candidate)) == nil
	}
	if v.plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(v.plain), []byte(candidate)) == 1
}

// HashPassword hashes a plaintext password for use as AUTH_STAFF_PASSWORD_HASH.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
