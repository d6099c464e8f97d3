package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sahaplatform-push/internal/models"
)

const (
	// Listing changes only qualify for a notification for 5 minutes, so
	// the records expire on their own.
	listingEventTTL = 5 * time.Minute
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(opts *redis.Options) *RedisStore {
	rdb := redis.NewClient(opts)
	return &RedisStore{client: rdb}
}

func (s *RedisStore) RecordListingEvent(ctx context.Context, ev models.ListingEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("listing_event:%d:%d", ev.UserID, ev.CreatedAt.UnixNano())
	timeline := fmt.Sprintf("listing_events:%d", ev.UserID)

	// Store event with TTL and add to the per-user timeline (score = time)
	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, listingEventTTL)
	pipe.ZAdd(ctx, timeline, redis.Z{
		Score:  float64(ev.CreatedAt.UnixNano()),
		Member: key,
	})
	pipe.Expire(ctx, timeline, listingEventTTL)

	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) LatestListingEvent(ctx context.Context, userID int) (*models.ListingEvent, error) {
	timeline := fmt.Sprintf("listing_events:%d", userID)

	keys, err := s.client.ZRevRange(ctx, timeline, 0, -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		val, err := s.client.Get(ctx, key).Result()
		if err == redis.Nil {
			// Event expired, remove from the timeline
			s.client.ZRem(ctx, timeline, key)
			continue
		} else if err != nil {
			continue
		}

		var ev models.ListingEvent
		if err := json.Unmarshal([]byte(val), &ev); err != nil {
			continue
		}
		return &ev, nil
	}

	return nil, nil
}
