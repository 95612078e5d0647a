package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"tugas-go/internal/models"
)

// tombstone marks a task that was just changed or deleted. A fill only
// succeeds on an empty key, so a read that started before the change cannot
// put the old task back while the tombstone lives.
const (
	tombstone    = "-"
	tombstoneTTL = 30 * time.Second
)

// TaskCache keeps single tasks in Redis under task:<id>. Failures are
// logged and otherwise ignored; the database stays the source of truth.
type TaskCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewTaskCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *TaskCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TaskCache{client: client, ttl: ttl, log: log}
}

func key(id string) string {
	return fmt.Sprintf("task:%s", id)
}

// Get returns the cached task, or false on a miss or any error.
func (c *TaskCache) Get(ctx context.Context, id string) (*models.Task, bool) {
	cached, err := c.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("Error reading task cache", zap.String("task_id", id), zap.Error(err))
		}
		return nil, false
	}
	if string(cached) == tombstone {
		return nil, false
	}
	var task models.Task
	if err := json.Unmarshal(cached, &task); err != nil {
		c.log.Warn("Corrupt task cache entry", zap.String("task_id", id), zap.Error(err))
		return nil, false
	}
	return &task, true
}

// Fill stores a task read from the database, unless the key already holds
// an entry or a tombstone.
func (c *TaskCache) Fill(ctx context.Context, task *models.Task) {
	taskJSON, err := json.Marshal(task)
	if err != nil {
		c.log.Warn("Error encoding task for cache", zap.String("task_id", task.ID), zap.Error(err))
		return
	}
	if err := c.client.SetNX(ctx, key(task.ID), taskJSON, c.ttl).Err(); err != nil {
		c.log.Warn("Error caching task", zap.String("task_id", task.ID), zap.Error(err))
	}
}

// Invalidate replaces the entries of ids with short-lived tombstones.
func (c *TaskCache) Invalidate(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Set(ctx, key(id), tombstone, tombstoneTTL)
		}
		return nil
	})
	if err != nil {
		c.log.Warn("Error invalidating cached tasks", zap.Strings("task_ids", ids), zap.Error(err))
	}
}
