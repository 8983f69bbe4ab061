package refreshtokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cryptobulldev/userdash/internal/common"
	"github.com/cryptobulldev/userdash/internal/server/models"
)

// ErrRedisUnavailable wraps transport failures talking to Redis.
var ErrRedisUnavailable = errors.New("redis unavailable")

const DefaultRedisPrefix = "userdash"

// RedisRepository stores each token under prefix:rt:<digest> with a TTL
// matching its validity, and indexes digests per user in prefix:rtu:<user>.
type RedisRepository struct {
	redis  redis.UniversalClient
	prefix string
}

type redisRecord struct {
	UserID    string `json:"user_id"`
	ExpiresAt int64  `json:"expires_at"`
	CreatedAt int64  `json:"created_at"`
}

func NewRedisRepository(client redis.UniversalClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisRepository{redis: client, prefix: prefix}
}

func (r *RedisRepository) key(digest string) string {
	return r.prefix + ":rt:" + digest
}

func (r *RedisRepository) userKey(userID string) string {
	return r.prefix + ":rtu:" + userID
}

func (r *RedisRepository) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	now := time.Now()
	data, err := json.Marshal(redisRecord{
		UserID:    userID,
		ExpiresAt: now.Add(validity).Unix(),
		CreatedAt: now.Unix(),
	})
	if err != nil {
		return err
	}

	digest := hashToken(token)
	userKey := r.userKey(userID)

	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(digest), data, validity)
		pipe.SAdd(ctx, userKey, digest)
		pipe.Expire(ctx, userKey, validity)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *RedisRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	rec, err := r.get(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	return &models.RefreshToken{
		UserID:    rec.UserID,
		Token:     token,
		Expires:   time.Unix(rec.ExpiresAt, 0),
		CreatedAt: time.Unix(rec.CreatedAt, 0),
	}, nil
}

func (r *RedisRepository) get(ctx context.Context, digest string) (*redisRecord, error) {
	data, err := r.redis.Get(ctx, r.key(digest)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode refresh token: %w", err)
	}
	return &rec, nil
}

func (r *RedisRepository) Delete(ctx context.Context, token string) error {
	digest := hashToken(token)
	rec, err := r.get(ctx, digest)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key(digest))
		pipe.SRem(ctx, r.userKey(rec.UserID), digest)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// DeleteByUser reads the user's index then deletes the indexed tokens and
// the index in one transaction. A token issued between the two steps
// survives.
func (r *RedisRepository) DeleteByUser(ctx context.Context, userID string) error {
	userKey := r.userKey(userID)

	digests, err := r.redis.SMembers(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	keys := make([]string, 0, len(digests)+1)
	for _, d := range digests {
		keys = append(keys, r.key(d))
	}
	keys = append(keys, userKey)

	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
