package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionRevocationStore keeps destroyed-session markers with a TTL.
// A request racing a timeout-triggered destroy sees the marker even if
// the row delete has not replicated yet.
type SessionRevocationStore interface {
	MarkRevoked(ctx context.Context, sessionID uuid.UUID, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID uuid.UUID) (bool, error)
}
