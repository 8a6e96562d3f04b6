package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"timele/domain"

	"github.com/redis/go-redis/v9"
)

// PredictionCache keeps full predict responses for a short TTL. Misses and
// redis failures both surface as (nil, err-or-nil) so callers can treat the
// cache as best-effort.
type PredictionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPredictionCache(client *redis.Client, ttl time.Duration) *PredictionCache {
	return &PredictionCache{
		client: client,
		ttl:    ttl,
	}
}

func (r *PredictionCache) GetPrediction(ctx context.Context, key string) (*domain.PredictionResponse, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prediction from Redis: %w", err)
	}

	var resp domain.PredictionResponse
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached prediction: %w", err)
	}

	return &resp, nil
}

func (r *PredictionCache) SetPrediction(ctx context.Context, key string, resp domain.PredictionResponse) error {
	jsonData, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}

	if err := r.client.Set(ctx, key, jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store prediction in Redis: %w", err)
	}

	return nil
}
