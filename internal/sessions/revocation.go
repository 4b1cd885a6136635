package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "catatan:revoked:"

// Blacklist records access tokens revoked by logout until they would have
// expired anyway. A Blacklist with a nil client accepts every call and
// revokes nothing.
type Blacklist struct {
	client *redis.Client
}

func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client}
}

// Enabled reports whether revocations are persisted.
func (b *Blacklist) Enabled() bool { return b != nil && b.client != nil }

// revokedKey hashes raw so tokens never appear in Redis.
func revokedKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return revokedPrefix + hex.EncodeToString(sum[:])
}

// Revoke blacklists raw for ttl. Non-positive ttls are ignored since the
// token has already expired.
func (b *Blacklist) Revoke(ctx context.Context, raw string, ttl time.Duration) error {
	if !b.Enabled() || ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, revokedKey(raw), "1", ttl).Err()
}

// IsRevoked implements middleware.RevocationChecker.
func (b *Blacklist) IsRevoked(ctx context.Context, raw string) (bool, error) {
	if !b.Enabled() {
		return false, nil
	}
	n, err := b.client.Exists(ctx, revokedKey(raw)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
