// Package prefs holds per-user dashboard state: starred players and the
// last-used drilldown filters. State is loaded once per container and saved
// after every change.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/XavierBriggs/Athena/pkg/models"
	"github.com/redis/go-redis/v9"
)

const (
	prefsKeyFormat  = "prefs:%s"
	FilterStreamKey = "filters.changed"

	maxUpdateAttempts = 5
)

// ErrUpdateConflict is returned when other writers keep changing a user's
// document while an Update is applying its change
var ErrUpdateConflict = errors.New("preferences changed concurrently")

// Store is the durable side-store behind a Container
type Store interface {
	Load(ctx context.Context, userID string) (models.Preferences, error)
	Save(ctx context.Context, userID string, prefs models.Preferences) error
}

// Updater is implemented by stores that can apply a change against the
// latest saved document atomically. Containers use it when available so
// concurrent requests for one user do not overwrite each other.
type Updater interface {
	Update(ctx context.Context, userID string, change func(models.Preferences) models.Preferences) (models.Preferences, error)
}

// Publisher announces applied filter changes to the settings collaborator
type Publisher interface {
	PublishFilterChange(ctx context.Context, event models.FilterChangeEvent) error
}

// RedisStore keeps one JSON document per user
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed store. A zero ttl keeps documents forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: client, ttl: ttl}
}

// Load returns the user's preferences, or empty preferences for a new user
func (s *RedisStore) Load(ctx context.Context, userID string) (models.Preferences, error) {
	return s.load(ctx, s.redis.Get, fmt.Sprintf(prefsKeyFormat, userID))
}

func (s *RedisStore) load(ctx context.Context, get func(context.Context, string) *redis.StringCmd, key string) (models.Preferences, error) {
	data, err := get(ctx, key).Bytes()
	if err == redis.Nil {
		return Default(), nil
	}
	if err != nil {
		return models.Preferences{}, fmt.Errorf("redis get preferences: %w", err)
	}

	prefs := Default()
	if err := json.Unmarshal(data, &prefs); err != nil {
		return models.Preferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	return prefs, nil
}

// Save overwrites the user's preferences
func (s *RedisStore) Save(ctx context.Context, userID string, prefs models.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	if err := s.redis.Set(ctx, fmt.Sprintf(prefsKeyFormat, userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set preferences: %w", err)
	}
	return nil
}

// Update applies change to the latest saved document under WATCH and retries
// when another writer commits first
func (s *RedisStore) Update(ctx context.Context, userID string, change func(models.Preferences) models.Preferences) (models.Preferences, error) {
	key := fmt.Sprintf(prefsKeyFormat, userID)

	var next models.Preferences
	txf := func(tx *redis.Tx) error {
		current, err := s.load(ctx, tx.Get, key)
		if err != nil {
			return err
		}

		next = change(current)
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal preferences: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.redis.Watch(ctx, txf, key)
		if err == nil {
			return next, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return models.Preferences{}, fmt.Errorf("redis update preferences: %w", err)
	}

	return models.Preferences{}, fmt.Errorf("%w: gave up after %d attempts", ErrUpdateConflict, maxUpdateAttempts)
}

// StreamPublisher appends filter changes to a Redis stream
type StreamPublisher struct {
	redis  *redis.Client
	stream string
}

// NewStreamPublisher publishes to the filters.changed stream
func NewStreamPublisher(client *redis.Client) *StreamPublisher {
	return &StreamPublisher{redis: client, stream: FilterStreamKey}
}

// PublishFilterChange appends the event as JSON under the "data" field
func (p *StreamPublisher) PublishFilterChange(ctx context.Context, event models.FilterChangeEvent) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal filter change: %w", err)
	}

	err = p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event_id": event.EventID,
			"user_id":  event.UserID,
			"data":     msg,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis xadd: %w", err)
	}
	return nil
}

// Default returns the preferences of a user with no saved state
func Default() models.Preferences {
	return models.Preferences{
		StarredPlayers: []int{},
		Filters: models.FilterState{
			QuickFilters:  []models.QuickFilter{},
			RangeFilters:  []models.RangeFilter{},
			InjuryFilters: []models.InjuryFilter{},
		},
	}
}
