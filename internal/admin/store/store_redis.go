package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"sangham/internal/admin/models"
	"sangham/pkg/platform/sentinel"
)

const keyPrefix = "sangham:admin:session:"

// RedisStore keeps admin sessions in Redis so every replica sees the same
// set. Keys carry a SHA-256 of the token, never the token itself. Sessions
// have no TTL; they live until logout.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, token string, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal admin session: %w", err)
	}
	if err := s.client.Set(ctx, Key(token), payload, 0).Err(); err != nil {
		return fmt.Errorf("save admin session: %w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, token string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, Key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find admin session: %w: %v", sentinel.ErrUnavailable, err)
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode admin session: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, Key(token)).Err(); err != nil {
		return fmt.Errorf("delete admin session: %w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

// Key returns the Redis key for token.
func Key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}
