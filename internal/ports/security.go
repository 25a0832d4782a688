package ports

import (
	"time"

	"github.com/google/uuid"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// SessionClaims is the signed bearer envelope tying a token to a session
// record. Validity is decided against the record, not the token alone.
type SessionClaims struct {
	AccountID uuid.UUID `json:"account_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	SessionID uuid.UUID `json:"session_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type TokenSigner interface {
	Sign(claims SessionClaims) (string, error)
	ParseAndValidate(token string) (SessionClaims, error)
}
