package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"bundle-wizard/pkg/api"
)

// selectionTTL bounds how long an abandoned selection lingers in redis.
const selectionTTL = 30 * time.Minute

// RedisStore keeps the selection in redis so a session can survive a client
// restart. Keyed per session id; callers supply the context per operation.
type RedisStore struct {
	client    *redis.Client
	sessionID string
}

// NewRedisStore connects to redis at addr, scoping keys to sessionID.
func NewRedisStore(addr, sessionID string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisStore{
		client:    rdb,
		sessionID: sessionID,
	}
}

func (r *RedisStore) key() string {
	return "bundle-wizard:selection:" + r.sessionID
}

func (r *RedisStore) SaveSelection(ctx context.Context, c *api.RecommendationCandidate) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(), raw, selectionTTL).Err()
}

func (r *RedisStore) LoadSelection(ctx context.Context) (*api.RecommendationCandidate, bool, error) {
	raw, err := r.client.Get(ctx, r.key()).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var c api.RecommendationCandidate
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, false, err
	}
	return &c, true, nil
}

func (r *RedisStore) ClearSelection(ctx context.Context) error {
	return r.client.Del(ctx, r.key()).Err()
}
