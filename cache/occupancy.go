// Package cache keeps short-lived Redis state next to the database: rack
// occupancy snapshots and submit locks.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"Gin_postgres_redis_inventory/api"

	"github.com/redis/go-redis/v9"
)

// OccupancyCache holds one JSON page of location rows per (rack, query).
// All pages of a rack live in one hash so a mutation drops them together.
//
// Each rack also has a generation counter bumped by Invalidate. A reader
// takes the generation before querying the database and Put only writes if
// it is unchanged, so a page read before a mutation cannot land after it.
type OccupancyCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewOccupancyCache(rdb *redis.Client, ttl time.Duration) *OccupancyCache {
	return &OccupancyCache{rdb: rdb, ttl: ttl}
}

func occKey(rackID string) string { return fmt.Sprintf("rack:occ:%s", rackID) }
func genKey(rackID string) string { return fmt.Sprintf("rack:occgen:%s", rackID) }

func pageField(page, size int, label string) string {
	return fmt.Sprintf("%d:%d:%s", page, size, label)
}

// Get returns the cached page, or ok=false on a miss.
func (c *OccupancyCache) Get(ctx context.Context, rackID string, page, size int, label string) (api.LocationPage, bool, error) {
	b, err := c.rdb.HGet(ctx, occKey(rackID), pageField(page, size, label)).Bytes()
	if errors.Is(err, redis.Nil) {
		return api.LocationPage{}, false, nil
	}
	if err != nil {
		return api.LocationPage{}, false, err
	}
	var p api.LocationPage
	if err := json.Unmarshal(b, &p); err != nil {
		// 坏数据当作未命中，顺手清掉
		_ = c.Invalidate(ctx, rackID)
		return api.LocationPage{}, false, nil
	}
	return p, true, nil
}

// Generation returns the rack's current generation, 0 if never invalidated.
func (c *OccupancyCache) Generation(ctx context.Context, rackID string) (int64, error) {
	g, err := c.rdb.Get(ctx, genKey(rackID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return g, err
}

// KEYS: occ hash, gen counter. ARGV: expected gen, field, payload, ttl ms.
var putIfGen = redis.NewScript(`
local g = redis.call('GET', KEYS[2]) or '0'
if g ~= ARGV[1] then return 0 end
redis.call('HSET', KEYS[1], ARGV[2], ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return 1
`)

// Put stores a page read at generation gen. It reports false without
// writing when the rack was invalidated since.
func (c *OccupancyCache) Put(ctx context.Context, rackID string, gen int64, page, size int, label string, p api.LocationPage) (bool, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return false, err
	}
	n, err := putIfGen.Run(ctx, c.rdb,
		[]string{occKey(rackID), genKey(rackID)},
		strconv.FormatInt(gen, 10), pageField(page, size, label), b, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Invalidate drops every cached page of the given racks and bumps their
// generations. Empty ids are skipped.
func (c *OccupancyCache) Invalidate(ctx context.Context, rackIDs ...string) error {
	pipe := c.rdb.TxPipeline()
	n := 0
	for _, id := range rackIDs {
		if id == "" {
			continue
		}
		pipe.Del(ctx, occKey(id))
		pipe.Incr(ctx, genKey(id))
		n++
	}
	if n == 0 {
		return nil
	}
	_, err := pipe.Exec(ctx)
	return err
}
