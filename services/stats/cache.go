package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const snapshotKey = "stats:snapshot:v1"

// Snapshot is the precomputed all-time report set served to admin dashboards.
type Snapshot struct {
	GeneratedAt time.Time     `json:"generated_at"`
	ByAffiliate []Rollup      `json:"by_affiliate"`
	ByHouse     []Rollup      `json:"by_house"`
	ByEvent     []EventRollup `json:"by_event"`
}

// Cache keeps the latest Snapshot in Redis. A nil *Cache is valid and never hits.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Store(ctx context.Context, snap *Snapshot) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return c.client.Set(ctx, snapshotKey, b, c.ttl).Err()
}

// Load returns the cached snapshot, or nil when there is none.
func (c *Cache) Load(ctx context.Context) (*Snapshot, error) {
	if c == nil {
		return nil, nil
	}
	b, err := c.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Fresh returns the cached snapshot when it is younger than maxAge.
// Cache errors are logged and treated as a miss.
func (c *Cache) Fresh(ctx context.Context, maxAge time.Duration) *Snapshot {
	snap, err := c.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Str("component", "stats").Msg("stats cache read failed")
		return nil
	}
	if snap == nil || time.Since(snap.GeneratedAt) > maxAge {
		return nil
	}
	return snap
}

// BuildSnapshot recomputes all rollups from the conversion table.
func BuildSnapshot(ctx context.Context, db *gorm.DB) (*Snapshot, error) {
	byAffiliate, err := ByAffiliate(ctx, db, Filter{})
	if err != nil {
		return nil, fmt.Errorf("rollup by affiliate: %w", err)
	}
	byHouse, err := ByHouse(ctx, db, Filter{})
	if err != nil {
		return nil, fmt.Errorf("rollup by house: %w", err)
	}
	byEvent, err := ByEventType(ctx, db, Filter{})
	if err != nil {
		return nil, fmt.Errorf("rollup by event: %w", err)
	}
	return &Snapshot{
		GeneratedAt: time.Now().UTC(),
		ByAffiliate: byAffiliate,
		ByHouse:     byHouse,
		ByEvent:     byEvent,
	}, nil
}

// Refresh rebuilds the snapshot and stores it. Safe to run repeatedly.
func Refresh(ctx context.Context, db *gorm.DB, cache *Cache) (*Snapshot, error) {
	snap, err := BuildSnapshot(ctx, db)
	if err != nil {
		return nil, err
	}
	if err := cache.Store(ctx, snap); err != nil {
		return snap, fmt.Errorf("store snapshot: %w", err)
	}
	return snap, nil
}
