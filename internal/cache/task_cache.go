package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/query"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tasks:"

// Page is one cached list result.
type Page struct {
	Tasks []dom.Task `json:"tasks"`
	Count int64      `json:"count"`
}

// TaskCache caches list pages in Redis, one key namespace per owner.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskCache returns a new TaskCache.
func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

// Key returns the cache key of q at generation gen. The owner is part of the
// key, so one owner's pages can never be served to another.
func Key(q query.Query, gen int64) (string, error) {
	owner, ok := q.Owner()
	if !ok {
		return "", errors.New("query is not scoped to an owner")
	}
	b, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return ownerPrefix(owner) + "list:" + strconv.FormatInt(gen, 10) + ":" + hex.EncodeToString(sum[:16]), nil
}

func ownerPrefix(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10) + ":"
}

func genKey(userID int64) string { return ownerPrefix(userID) + "gen" }

// Generation returns the owner's current cache generation. Read it before
// the store: a page filled from a read that raced a write is stored under
// the old generation and never looked up again.
func (c *TaskCache) Generation(ctx context.Context, userID int64) (int64, error) {
	gen, err := c.rdb.Get(ctx, genKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetPage returns the cached page for key, or nil on a miss.
func (c *TaskCache) GetPage(ctx context.Context, key string) (*Page, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p Page
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetPage stores a page under key.
func (c *TaskCache) SetPage(ctx context.Context, key string, p Page) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

// InvalidateUser moves the owner to a new generation and drops the pages of
// the old ones (cache invalidation on write).
func (c *TaskCache) InvalidateUser(ctx context.Context, userID int64) error {
	if err := c.rdb.Incr(ctx, genKey(userID)).Err(); err != nil {
		return err
	}
	iter := c.rdb.Scan(ctx, 0, ownerPrefix(userID)+"list:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
