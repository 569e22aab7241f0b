package auth

import (
	"context"

	"postmarket-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DestroyUserSessions deletes every session tracked under user_sessions:<userID> and
// the set itself. Returns how many sessions were tracked.
func DestroyUserSessions(ctx context.Context, rdb *redis.Client, userID string) (int, error) {
	if userID == "" {
		return 0, ErrNotAuthenticated
	}
	key := middleware.UserSessionsPrefix + userID
	sessionIDs, err := rdb.SMembers(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	pipe := rdb.TxPipeline()
	for _, sid := range sessionIDs {
		pipe.Del(ctx, middleware.SessionRedisPrefix+sid)
	}
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return len(sessionIDs), nil
}
