package utils

import (
	"context"
	"sync"
	"time"
)

// blacklistEntry keeps expiration metadata for a revoked session.
type blacklistEntry struct {
	expiresAt time.Time
}

var (
	blacklist   = map[string]blacklistEntry{}
	blacklistMu sync.RWMutex
)

func blacklistKey(jti string) string {
	return "jwt:blacklist:" + jti
}

// BlacklistToken revokes a session by its JTI until natural token expiration
// to support logout semantics. The entry goes to Redis so revocation is
// visible across instances; when the Redis write fails, the in-memory map
// keeps this process rejecting the session.
func BlacklistToken(jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}

	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, blacklistKey(jti), "1", ttl).Err(); err == nil {
			return
		}
		if Sugar != nil {
			Sugar.Warnf("blacklist write fell back to memory jti=%s", jti)
		}
	}

	blacklistMu.Lock()
	blacklist[jti] = blacklistEntry{expiresAt: expiresAt}
	blacklistMu.Unlock()
}

// IsTokenBlacklisted checks if a session was revoked before natural
// expiration. The local map is consulted first so revocations that never
// reached Redis still hold.
func IsTokenBlacklisted(jti string) bool {
	if jti == "" {
		return false
	}

	if memoryBlacklisted(jti) {
		return true
	}

	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := rc.Exists(ctx, blacklistKey(jti)).Result()
		if err == nil {
			return n > 0
		}
	}

	// Redis unreachable and not in the local map: fail open rather than
	// locking out every session.
	return false
}

func memoryBlacklisted(jti string) bool {
	blacklistMu.RLock()
	entry, ok := blacklist[jti]
	blacklistMu.RUnlock()
	if !ok {
		return false
	}

	if time.Now().After(entry.expiresAt) {
		blacklistMu.Lock()
		delete(blacklist, jti)
		blacklistMu.Unlock()
		return false
	}

	return true
}
