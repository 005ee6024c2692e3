package sinks

import (
	"context"
	"encoding/json"

	"market-breadth/src/logger"
	"market-breadth/src/models"

	"github.com/redis/go-redis/v9"
)

// -----------------------------------------------------------------------------
// RedisSink keeps the latest snapshot under a key and publishes every
// snapshot on a channel, in one pipeline.
// -----------------------------------------------------------------------------

type RedisSink struct {
	Client  *redis.Client
	Key     string
	Channel string
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewRedisSink(cfg models.MRedisSinkConfig, log *logger.Logger) *RedisSink {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisSink{Client: rdb, Key: cfg.Key, Channel: cfg.Channel, Logger: log}
}

func (r *RedisSink) Name() string { return "redis" }

// -----------------------------------------------------------------------------

func (r *RedisSink) Publish(ctx context.Context, s models.MBreadthSnapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}

	pipe := r.Client.Pipeline()
	pipe.Set(ctx, r.Key, payload, 0)
	pipe.Publish(ctx, r.Channel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	r.Logger.Debug("Published snapshot %s to %s", s.LocalTime().Format(models.TimeLayout), r.Channel)
	return nil
}

// -----------------------------------------------------------------------------

func (r *RedisSink) Close() error {
	return r.Client.Close()
}
