package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const presenceTTL = 5 * time.Minute

// PresenceService tracks which users are currently online in Redis. It is
// purely best-effort: the durable online timestamp on the user row is the
// source of truth, this only feeds the live is_online flag in search
// results. All methods are safe on a nil client.
type PresenceService struct {
	client *redis.Client
}

// NewPresenceService creates a new PresenceService instance
func NewPresenceService(client *redis.Client) *PresenceService {
	return &PresenceService{client: client}
}

// Touch marks the user online for the presence TTL. Errors are ignored.
func (s *PresenceService) Touch(ctx context.Context, userID uint) {
	if s == nil || s.client == nil {
		return
	}
	s.client.Set(ctx, presenceKey(userID), 1, presenceTTL)
}

// IsOnline reports whether the user has an unexpired presence key. Any
// error reads as offline.
func (s *PresenceService) IsOnline(ctx context.Context, userID uint) bool {
	if s == nil || s.client == nil {
		return false
	}
	n, err := s.client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

func presenceKey(userID uint) string {
	return fmt.Sprintf("presence:%d", userID)
}
