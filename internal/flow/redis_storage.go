package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPattern  = "flow:session:%s"
	sessionScanPattern = "flow:session:*"
	sessionScanBatch   = 100
	sessionTTL         = time.Hour
)

// RedisStorage persists flow session snapshots in Redis.
type RedisStorage struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedisStorage initializes a Redis-backed Storage implementation.
func NewRedisStorage(client *redis.Client, log *slog.Logger) Storage {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStorage{
		client: client,
		log:    log,
	}
}

// GetSession returns the stored snapshot or ErrSessionNotFound when absent.
func (s *RedisStorage) GetSession(ctx context.Context, id string) (*Session, error) {
	key := redisSessionKey(id)

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}

		s.log.Error("failed to get session from redis", "session_id", id, "error", err)
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		s.log.Error("failed to decode session snapshot", "session_id", id, "error", err)
		return nil, err
	}

	return &sess, nil
}

// SetSession saves the snapshot with a one-hour TTL. The live pipeline is
// excluded by the Session json tags.
func (s *RedisStorage) SetSession(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		s.log.Error("failed to encode session snapshot", "session_id", sess.ID, "error", err)
		return err
	}

	key := redisSessionKey(sess.ID)
	if err := s.client.Set(ctx, key, data, sessionTTL).Err(); err != nil {
		s.log.Error("failed to save session in redis", "session_id", sess.ID, "error", err)
		return err
	}

	return nil
}

// ClearSession removes the stored snapshot for the given session.
func (s *RedisStorage) ClearSession(ctx context.Context, id string) error {
	key := redisSessionKey(id)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.log.Error("failed to clear session snapshot", "session_id", id, "error", err)
		return err
	}

	return nil
}

// ListSessions retrieves every stored snapshot by scanning Redis keys.
func (s *RedisStorage) ListSessions(ctx context.Context) ([]*Session, error) {
	var (
		cursor uint64
		result []*Session
	)

	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, sessionScanPattern, sessionScanBatch).Result()
		if err != nil {
			s.log.Error("failed to scan session snapshots", "error", err)
			return nil, err
		}

		for _, key := range keys {
			data, err := s.client.Get(ctx, key).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}

				s.log.Error("failed to fetch session snapshot", "key", key, "error", err)
				return nil, err
			}

			var sess Session
			if err := json.Unmarshal([]byte(data), &sess); err != nil {
				s.log.Error("failed to decode session snapshot", "key", key, "error", err)
				continue
			}

			copied := sess
			result = append(result, &copied)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return result, nil
}

func redisSessionKey(id string) string {
	return fmt.Sprintf(sessionKeyPattern, id)
}
