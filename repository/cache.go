package repository

import (
	"context"

	"github.com/gamyam/crm-tasks/domain"
)

// ErrCacheMiss is returned by TaskCache.Get when the id is not cached. It is
// not a domain error: callers fall through to the primary store.
var ErrCacheMiss = domain.NewError(domain.ErrCodeNotFound, "task not cached")

// TaskCache is a read-side cache in front of the task store. Implementations
// are best-effort; a failing cache must never fail the read path.
type TaskCache interface {
	Get(ctx context.Context, id string) (*domain.Task, error)
	Set(ctx context.Context, task *domain.Task) error
	Invalidate(ctx context.Context, ids ...string) error
}
