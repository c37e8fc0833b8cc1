package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/gamyam/crm-tasks/domain"
	"github.com/gamyam/crm-tasks/repository"
)

type taskCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewTaskCache creates a Redis-backed read cache for tasks.
func NewTaskCache(client *redislib.Client, ttl time.Duration) repository.TaskCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &taskCache{
		client: client,
		prefix: "task:",
		ttl:    ttl,
	}
}

func (c *taskCache) Get(ctx context.Context, id string) (*domain.Task, error) {
	result, err := c.client.Get(ctx, c.key(id)).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, repository.ErrCacheMiss
		}
		return nil, err
	}

	var task domain.Task
	if err := json.Unmarshal([]byte(result), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *taskCache) Set(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(task.ID), payload, c.ttl).Err()
}

func (c *taskCache) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, c.key(id))
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *taskCache) key(id string) string {
	return fmt.Sprintf("%s%s", c.prefix, id)
}
