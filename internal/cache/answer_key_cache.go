package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/lshigami/eps-topik/config"
	"github.com/lshigami/eps-topik/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

const (
	answerKeyPrefix = "answer_key:"

	// Invalidate leaves a tombstone instead of deleting the key. SetMany
	// only writes absent keys, so a key read from the database before an
	// edit cannot be cached over the tombstone once the edit is committed.
	tombstone    = ""
	tombstoneTTL = time.Minute
)

// AnswerKeyCache holds question answer keys for scoring. Misses are not
// errors; GetMany simply leaves them out of the returned map.
type AnswerKeyCache interface {
	GetMany(ctx context.Context, ids []uint) (map[uint]model.AnswerKey, error)
	// SetMany never overwrites a cached key or a tombstone.
	SetMany(ctx context.Context, keys []model.AnswerKey) error
	Invalidate(ctx context.Context, ids ...uint) error
}

// NewRedisClient returns nil when no address is configured.
func NewRedisClient(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		log.Warn().Msg("REDIS_ADDR is not set. Answer keys will be read from the database on every submit.")
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing redis connection...")
			return client.Close()
		},
	})
	return client, nil
}

func NewAnswerKeyCache(client *redis.Client, cfg *config.Config) AnswerKeyCache {
	if client == nil {
		return noopCache{}
	}
	return &redisAnswerKeyCache{client: client, ttl: cfg.Redis.KeyTTL}
}

type redisAnswerKeyCache struct {
	client *redis.Client
	ttl    time.Duration
}

func answerKey(id uint) string {
	return answerKeyPrefix + strconv.FormatUint(uint64(id), 10)
}

func (c *redisAnswerKeyCache) GetMany(ctx context.Context, ids []uint) (map[uint]model.AnswerKey, error) {
	hits := make(map[uint]model.AnswerKey, len(ids))
	if len(ids) == 0 {
		return hits, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = answerKey(id)
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading answer keys from cache: %w", err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		if key, ok := decodeAnswerKey(ids[i], raw); ok {
			hits[ids[i]] = key
		}
	}
	return hits, nil
}

// decodeAnswerKey treats a tombstone or an undecodable value as a miss.
func decodeAnswerKey(id uint, raw string) (model.AnswerKey, bool) {
	var key model.AnswerKey
	if raw == tombstone {
		return key, false
	}
	if err := json.Unmarshal([]byte(raw), &key); err != nil {
		log.Warn().Err(err).Uint("questionID", id).Msg("Dropping undecodable answer key from cache")
		return key, false
	}
	return key, true
}

func (c *redisAnswerKeyCache) SetMany(ctx context.Context, keys []model.AnswerKey) error {
	if len(keys) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for _, k := range keys {
		val, err := json.Marshal(k)
		if err != nil {
			return fmt.Errorf("error encoding answer key %d: %w", k.QuestionID, err)
		}
		pipe.SetNX(ctx, answerKey(k.QuestionID), val, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("error saving answer keys to cache: %w", err)
	}
	return nil
}

func (c *redisAnswerKeyCache) Invalidate(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for _, id := range ids {
		pipe.Set(ctx, answerKey(id), tombstone, tombstoneTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("error invalidating answer keys in cache: %w", err)
	}
	return nil
}

type noopCache struct{}

func (noopCache) GetMany(context.Context, []uint) (map[uint]model.AnswerKey, error) {
	return map[uint]model.AnswerKey{}, nil
}

func (noopCache) SetMany(context.Context, []model.AnswerKey) error { return nil }

func (noopCache) Invalidate(context.Context, ...uint) error { return nil }
