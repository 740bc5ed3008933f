package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iiuc-platform/interview-service/internal/utils"
	"github.com/redis/go-redis/v9"
)

// SessionCache tracks which session, if any, is currently active for an
// interview. It backs the single-active-session guard so two clients
// cannot run the same interview at once.
type SessionCache interface {
	SetActive(ctx context.Context, interviewID, sessionID string, ttl time.Duration) error
	ActiveSession(ctx context.Context, interviewID string) (string, error)
	Clear(ctx context.Context, interviewID string) error
}

type redisSessionCache struct {
	client *redis.Client
	logger utils.Logger
}

func NewRedisSessionCache(client *redis.Client, logger utils.Logger) SessionCache {
	return &redisSessionCache{
		client: client,
		logger: logger,
	}
}

func sessionKey(interviewID string) string {
	return fmt.Sprintf("interview:%s:active_session", interviewID)
}

func (c *redisSessionCache) SetActive(ctx context.Context, interviewID, sessionID string, ttl time.Duration) error {
	if err := c.client.Set(ctx, sessionKey(interviewID), sessionID, ttl).Err(); err != nil {
		c.logger.ErrorContext(ctx, "Failed to mark session active",
			"interview_id", interviewID,
			"session_id", sessionID,
			"error", err)
		return err
	}
	return nil
}

// ActiveSession returns the active session id for the interview, or ""
// when none is cached.
func (c *redisSessionCache) ActiveSession(ctx context.Context, interviewID string) (string, error) {
	val, err := c.client.Get(ctx, sessionKey(interviewID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (c *redisSessionCache) Clear(ctx context.Context, interviewID string) error {
	return c.client.Del(ctx, sessionKey(interviewID)).Err()
}
