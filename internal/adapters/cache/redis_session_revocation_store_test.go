package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*RedisSessionRevocationStore, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionRevocationStore(client), srv
}

func TestMarkRevokedThenIsRevoked(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()
	sessionID := uuid.New()

	revoked, err := store.IsRevoked(ctx, sessionID)
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("fresh session reported revoked")
	}

	if err := store.MarkRevoked(ctx, sessionID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("MarkRevoked: %v", err)
	}

	revoked, err = store.IsRevoked(ctx, sessionID)
	if err != nil {
		t.Fatalf("IsRevoked after mark: %v", err)
	}
	if !revoked {
		t.Fatal("marked session not reported revoked")
	}
}

func TestRevocationExpires(t *testing.T) {
	t.Parallel()
	store, srv := newTestStore(t)
	ctx := context.Background()
	sessionID := uuid.New()

	if err := store.MarkRevoked(ctx, sessionID, time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("MarkRevoked: %v", err)
	}

	srv.FastForward(2 * time.Minute)

	revoked, err := store.IsRevoked(ctx, sessionID)
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("revocation flag survived its TTL")
	}
}

func TestMarkRevokedPastExpiryStillSticks(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()
	sessionID := uuid.New()

	// Already-expired tokens still get a floor TTL so a replayed token
	// cannot slip through immediately after logout.
	if err := store.MarkRevoked(ctx, sessionID, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("MarkRevoked: %v", err)
	}

	revoked, err := store.IsRevoked(ctx, sessionID)
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Fatal("expected revocation flag with floor TTL")
	}
}
