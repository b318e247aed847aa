// Package cache keeps hot game logs in Redis in front of Alexandria.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/XavierBriggs/Athena/pkg/contracts"
	"github.com/XavierBriggs/Athena/pkg/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// GameLogs is a read-through cache over a game log source. Redis failures
// degrade to the source; they never fail a read.
type GameLogs struct {
	redis  *redis.Client
	source contracts.GameLogSource
	ttl    time.Duration
	log    *logrus.Entry
}

// NewGameLogs creates a read-through cache
func NewGameLogs(redisClient *redis.Client, source contracts.GameLogSource, ttl time.Duration, log *logrus.Entry) *GameLogs {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &GameLogs{
		redis:  redisClient,
		source: source,
		ttl:    ttl,
		log:    log,
	}
}

// GetGameLogs returns a player's season logs, most recent first
func (c *GameLogs) GetGameLogs(ctx context.Context, playerID int, season string) ([]models.GameLogEntry, error) {
	logs, err := c.GetGameLogsBatch(ctx, []int{playerID}, season)
	if err != nil {
		return nil, err
	}
	return logs[playerID], nil
}

// GetGameLogsBatch resolves several players with one MGET, loading misses from the source
func (c *GameLogs) GetGameLogsBatch(ctx context.Context, playerIDs []int, season string) (map[int][]models.GameLogEntry, error) {
	result := make(map[int][]models.GameLogEntry, len(playerIDs))
	if len(playerIDs) == 0 {
		return result, nil
	}

	keys := make([]string, len(playerIDs))
	for i, id := range playerIDs {
		keys[i] = buildKey(id, season)
	}

	cached, err := c.redis.MGet(ctx, keys...).Result()
	if err != nil && err != redis.Nil {
		c.log.WithError(err).Warn("game log cache read failed, falling back to store")
		cached = make([]interface{}, len(keys))
	}

	var misses []int
	for i, id := range playerIDs {
		logs, ok := decode(cached[i])
		if !ok {
			misses = append(misses, id)
			continue
		}
		result[id] = logs
	}

	if len(misses) == 0 {
		return result, nil
	}

	loaded := make(map[int][]models.GameLogEntry, len(misses))
	for _, id := range misses {
		if _, done := loaded[id]; done {
			continue
		}
		logs, err := c.source.GetGameLogs(ctx, id, season)
		if err != nil {
			return nil, fmt.Errorf("load game logs for player %d: %w", id, err)
		}
		loaded[id] = logs
		result[id] = logs
	}

	if err := c.store(ctx, loaded, season); err != nil {
		c.log.WithError(err).Warn("game log cache write failed")
	}

	return result, nil
}

func (c *GameLogs) store(ctx context.Context, logs map[int][]models.GameLogEntry, season string) error {
	pipe := c.redis.Pipeline()

	for id, entries := range logs {
		if entries == nil {
			entries = []models.GameLogEntry{}
		}
		data, err := json.Marshal(entries)
		if err != nil {
			return fmt.Errorf("marshal game logs: %w", err)
		}
		pipe.Set(ctx, buildKey(id, season), data, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline exec: %w", err)
	}
	return nil
}

// buildKey creates the Redis key for a player's season
// Format: gamelogs:{season}:{player_id}
func buildKey(playerID int, season string) string {
	return fmt.Sprintf("gamelogs:%s:%d", season, playerID)
}

// decode parses a cached value. A missing or corrupt entry is a miss.
func decode(value interface{}) ([]models.GameLogEntry, bool) {
	if value == nil {
		return nil, false
	}

	str, ok := value.(string)
	if !ok {
		return nil, false
	}

	var logs []models.GameLogEntry
	if err := json.Unmarshal([]byte(str), &logs); err != nil {
		return nil, false
	}
	return logs, true
}
