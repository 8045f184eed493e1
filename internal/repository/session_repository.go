package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	sessionKeyPrefix  = "session:"
	presenceKeyPrefix = "user:online:"
)

// SessionRepository 以 jti 为键在 Redis 中登记会话，登出即删除
type SessionRepository struct {
	Redis *redis.Client
}

func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{Redis: rdb}
}

func (r *SessionRepository) Save(ctx context.Context, sessionID string, userID uint, ttl time.Duration) error {
	return r.Redis.Set(ctx, sessionKeyPrefix+sessionID, userID, ttl).Err()
}

func (r *SessionRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.Redis.Exists(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.Redis.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

func presenceKey(userID uint) string {
	return presenceKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// UpdatePresence 批量写入上线/下线状态，在线键带 TTL 需要定期续期
func (r *SessionRepository) UpdatePresence(ctx context.Context, online, offline []uint, ttl time.Duration) error {
	if len(online) == 0 && len(offline) == 0 {
		return nil
	}
	pipe := r.Redis.Pipeline()
	for _, id := range online {
		pipe.Set(ctx, presenceKey(id), "true", ttl)
	}
	for _, id := range offline {
		pipe.Del(ctx, presenceKey(id))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *SessionRepository) RefreshPresence(ctx context.Context, userIDs []uint, ttl time.Duration) error {
	if len(userIDs) == 0 {
		return nil
	}
	pipe := r.Redis.Pipeline()
	for _, id := range userIDs {
		pipe.Expire(ctx, presenceKey(id), ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *SessionRepository) IsOnline(ctx context.Context, userID uint) (bool, error) {
	n, err := r.Redis.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("check presence: %w", err)
	}
	return n > 0, nil
}
