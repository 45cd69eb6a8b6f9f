package auth

import (
	"context"
	"time"
)

// RevocationList tracks token ids withdrawn before their natural expiry.
// Entries only need to live until the token would have expired anyway.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
