package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smirnov-d/railbooking/config"
	"github.com/smirnov-d/railbooking/internal/domain"
	"github.com/smirnov-d/railbooking/internal/service/predict"
)

type RedisCache struct {
	client        *redis.Client
	predictionTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, predictionTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:        redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		predictionTTL: predictionTTL,
	}
}

func (c *RedisCache) GetPrediction(ctx context.Context, q predict.Query) (*predict.Result, error) {
	data, err := c.client.Get(ctx, predictionKey(q)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var result predict.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *RedisCache) SetPrediction(ctx context.Context, q predict.Query, r predict.Result) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, predictionKey(q), payload, c.predictionTTL).Err()
}

// predictionKey covers every field the models score on; the booking date
// matters because days-to-departure is derived from it.
func predictionKey(q predict.Query) string {
	return fmt.Sprintf("cache:predict:%s:%s:%s:%s:%s:%s:%d",
		q.TrainID, q.Origin, q.Destination, q.ClassName,
		q.TravelDate.Format(domain.DateLayout), q.BookingDate.Format(domain.DateLayout),
		q.SeatsRequested)
}
