// Package revocation maintains the set of session tokens that were logged
// out before their natural expiry. Verification consults this set before
// trusting a signature; the reaper deletes records once the token they
// refer to has expired anyway.
package revocation

import (
	"context"
	"time"
)

// Store is safe for concurrent lookups, inserts and reaping. Revoke is
// idempotent: revoking an already-revoked token is a no-op, not an error.
type Store interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	// Reap deletes records whose expiry has passed and reports how many
	// were removed. The predicate is evaluated per row at delete time, so
	// a record inserted mid-sweep with a future expiry survives.
	Reap(ctx context.Context, now time.Time) (int64, error)
}
