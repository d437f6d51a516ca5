package domain

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Operator is the single administrative identity allowed to manage the
// portfolio. Passwords are stored as bcrypt hashes only.
type Operator struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CheckPassword compares a plaintext password against the stored hash.
func (o *Operator) CheckPassword(password string) bool {
	if o == nil || o.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password)) == nil
}

// HashPassword produces a bcrypt hash suitable for Operator.PasswordHash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Session is a cached login session stored in Redis; its ID doubles as the
// JWT session claim.
type Session struct {
	ID         string    `json:"id"`
	OperatorID string    `json:"operator_id"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}
