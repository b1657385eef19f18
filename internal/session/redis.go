package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hm-community/hmnet/internal/model"
)

// keyPrefix はRedisキーの名前空間。
const keyPrefix = "hmnet:session:"

// RedisStore はRedisをバックエンドにしたセッションストア。
// セッションはJSONで直列化し、有効期限はRedisのTTLに委譲する。
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore はRedisStoreを生成する。
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Create はセッションを保存する。
// ExpiresAtが設定されている場合はTTL付きで保存する。
func (s *RedisStore) Create(ctx context.Context, sess *model.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = time.Until(sess.ExpiresAt)
		if ttl <= 0 {
			return fmt.Errorf("session already expired")
		}
	}

	if err := s.client.Set(ctx, keyPrefix+sess.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Find は指定IDのセッションを取得する。見つからない場合はnilを返す。
func (s *RedisStore) Find(ctx context.Context, id string) (*model.Session, error) {
	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return &sess, nil
}

// Delete は指定IDのセッションを破棄する。
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// compile-time interface check
var _ Store = (*RedisStore)(nil)
