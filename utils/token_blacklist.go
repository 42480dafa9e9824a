package utils

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes tokens before their natural expiry to support logout.
// It prefers Redis and falls back to process memory when no client is configured.
type TokenBlacklist struct {
	rc  *redis.Client
	mu  sync.RWMutex
	mem map[string]time.Time
	// users maps a user id to the time before which its tokens are invalid.
	users map[uint]time.Time
	now   func() time.Time
}

// NewTokenBlacklist creates a blacklist; rc may be nil.
func NewTokenBlacklist(rc *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rc: rc, mem: map[string]time.Time{}, users: map[uint]time.Time{}, now: time.Now}
}

func blacklistKey(token string) string {
	return "jwt:blacklist:" + token
}

// Revoke stores token until expiresAt.
func (b *TokenBlacklist) Revoke(token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(b.now())
	if ttl <= 0 {
		return nil
	}
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return b.rc.Set(ctx, blacklistKey(token), "1", ttl).Err()
	}
	b.mu.Lock()
	b.mem[token] = expiresAt
	b.mu.Unlock()
	return nil
}

// IsRevoked checks if a token was revoked before natural expiration.
func (b *TokenBlacklist) IsRevoked(token string) bool {
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := b.rc.Exists(ctx, blacklistKey(token)).Result()
		if err != nil {
			// fail-open to avoid locking everyone out while redis is down
			Sugar.Warnf("blacklist lookup failed err=%v", err)
			return false
		}
		return n > 0
	}

	b.mu.RLock()
	expiresAt, ok := b.mem[token]
	b.mu.RUnlock()
	if !ok {
		return false
	}
	if b.now().After(expiresAt) {
		b.mu.Lock()
		delete(b.mem, token)
		b.mu.Unlock()
		return false
	}
	return true
}

func userCutoffKey(userID uint) string {
	return fmt.Sprintf("jwt:user_cutoff:%d", userID)
}

// RevokeUser invalidates every token of userID issued before the current second.
// The cutoff is kept for TokenTTL, after which those tokens have expired anyway.
func (b *TokenBlacklist) RevokeUser(userID uint) error {
	cutoff := b.now().Truncate(time.Second)
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return b.rc.Set(ctx, userCutoffKey(userID), cutoff.Unix(), TokenTTL).Err()
	}
	b.mu.Lock()
	b.users[userID] = cutoff
	b.mu.Unlock()
	return nil
}

// IsUserRevoked reports whether a token of userID issued at issuedAt predates a RevokeUser call.
func (b *TokenBlacklist) IsUserRevoked(userID uint, issuedAt time.Time) bool {
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		v, err := b.rc.Get(ctx, userCutoffKey(userID)).Result()
		if err != nil {
			if err != redis.Nil {
				Sugar.Warnf("user cutoff lookup failed user=%d err=%v", userID, err)
			}
			return false
		}
		sec, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return false
		}
		return issuedAt.Before(time.Unix(sec, 0))
	}

	b.mu.RLock()
	cutoff, ok := b.users[userID]
	b.mu.RUnlock()
	if !ok {
		return false
	}
	if b.now().After(cutoff.Add(TokenTTL)) {
		b.mu.Lock()
		delete(b.users, userID)
		b.mu.Unlock()
		return false
	}
	return issuedAt.Before(cutoff)
}
