// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package inject

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/sar/internal/config"
	"github.com/tomtom215/sar/internal/database"
)

// RedisSink stores each user's recommendations as a sorted set scored by
// rank, so ZRANGE returns the list best first with ties kept in rank order.
// The recommendation scores live in a hash at the same key plus ":scores".
type RedisSink struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisSink connects to cfg.Addr and verifies the connection.
func NewRedisSink(ctx context.Context, cfg config.RedisConfig) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewRedisSinkFromClient(client, cfg.KeyPrefix, cfg.TTL), nil
}

// NewRedisSinkFromClient wraps an existing client.
func NewRedisSinkFromClient(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisSink {
	return &RedisSink{client: client, prefix: prefix, ttl: ttl}
}

// Name implements Sink.
func (s *RedisSink) Name() string { return "redis" }

// Key returns the sorted set key for a user.
func (s *RedisSink) Key(userID string) string {
	return s.prefix + userID
}

// ScoresKey returns the hash key holding a user's item scores.
func (s *RedisSink) ScoresKey(userID string) string {
	return s.Key(userID) + ":scores"
}

// Write implements Sink. A row with rank 1 starts the user's list and clears
// any previous set, so a list is replaced rather than merged across runs.
func (s *RedisSink) Write(ctx context.Context, rows []database.RecommendationRow) error {
	if len(rows) == 0 {
		return nil
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		touched := make(map[string]struct{})
		for _, row := range rows {
			key, scores := s.Key(row.UserID), s.ScoresKey(row.UserID)
			if row.Rank == 1 {
				pipe.Del(ctx, key, scores)
			}
			pipe.ZAdd(ctx, key, redis.Z{Score: float64(row.Rank), Member: row.ItemID})
			pipe.HSet(ctx, scores, row.ItemID, row.Score)
			touched[key] = struct{}{}
			touched[scores] = struct{}{}
		}
		if s.ttl > 0 {
			for key := range touched {
				pipe.Expire(ctx, key, s.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis write %d rows: %w", len(rows), err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
