package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/gamyam/crm-tasks/domain"
	"github.com/gamyam/crm-tasks/repository"
	"github.com/gamyam/crm-tasks/usecase"
)

// PageMeta describes one page of a list-style result.
type PageMeta struct {
	Total           int  `json:"total"`
	Page            int  `json:"page"`
	LastPage        int  `json:"lastPage"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// Paginated is the envelope returned by List and Filter.
type Paginated struct {
	Data []domain.Task `json:"data"`
	Meta PageMeta      `json:"meta"`
}

// NewPageMeta derives the navigation metadata for a result window. A total
// of zero yields lastPage 0 with both flags false, whatever the requested
// page was.
func NewPageMeta(total, page, limit int) PageMeta {
	lastPage := 0
	if limit > 0 {
		lastPage = (total + limit - 1) / limit
	}
	return PageMeta{
		Total:           total,
		Page:            page,
		LastPage:        lastPage,
		HasNextPage:     page < lastPage,
		HasPreviousPage: page > 1 && total > 0,
	}
}

// UseCase owns the task lifecycle: the status state machine, the query
// surface, and the invariant that every mutation emits exactly one
// notification attempt.
type UseCase struct {
	tasks    repository.TaskRepository
	cache    repository.TaskCache
	notifier usecase.ActivityNotifier
	logger   *zap.Logger
}

func New(tasks repository.TaskRepository, cache repository.TaskCache, notifier usecase.ActivityNotifier, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
	}
}

// Create persists a new task with defaults applied and reports a
// TASK_CREATED event attributed to the creator. A failed notification fails
// the call even though the task already exists; the write is not rolled
// back.
func (uc *UseCase) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	task.ApplyDefaults()
	if err := task.Validate(); err != nil {
		return nil, err
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	event := domain.BuildTaskEvent(created, domain.ActivityTaskCreated, created.CreatedBy)
	if _, err := uc.notifier.LogActivity(ctx, event); err != nil {
		return nil, err
	}

	return created, nil
}

// GetByID reads through the cache when one is configured.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if uc.cache != nil {
		if task, err := uc.cache.Get(ctx, id); err == nil {
			return task, nil
		}
	}

	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, task); err != nil {
			uc.logger.Warn("failed to cache task", zap.String("task_id", id), zap.Error(err))
		}
	}
	return task, nil
}

// List serves the general query surface.
func (uc *UseCase) List(ctx context.Context, query repository.TaskQuery) (*Paginated, error) {
	query.Normalize()
	tasks, total, err := uc.tasks.List(ctx, query)
	if err != nil {
		return nil, err
	}
	return paginate(tasks, total, query.Page), nil
}

// Filter serves the cross-entity lookup.
func (uc *UseCase) Filter(ctx context.Context, filter repository.TaskFilter) (*Paginated, error) {
	filter.Normalize()
	tasks, total, err := uc.tasks.Filter(ctx, filter)
	if err != nil {
		return nil, err
	}
	return paginate(tasks, total, filter.Page), nil
}

// Update applies a partial patch and reports a TASK_UPDATED event attributed
// to the actor, or "system" when none was given.
func (uc *UseCase) Update(ctx context.Context, id string, patch domain.TaskUpdate) (*domain.Task, error) {
	if patch.Status != nil && !domain.ValidTaskStatus(*patch.Status) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown task status")
	}

	updated, err := uc.tasks.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx, id)

	event := domain.BuildTaskEvent(updated, domain.ActivityTaskUpdated, patch.UpdatedBy)
	if _, err := uc.notifier.LogActivity(ctx, event); err != nil {
		return nil, err
	}

	return updated, nil
}

// SoftDelete marks the task deleted without removing the row and reports a
// TASK_DELETED event. Deleted tasks stay visible to queries unless the
// caller filters them out.
func (uc *UseCase) SoftDelete(ctx context.Context, id string, deletedBy string) (*domain.Task, error) {
	deleted, err := uc.tasks.SoftDelete(ctx, id, deletedBy)
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx, id)

	event := domain.BuildTaskEvent(deleted, domain.ActivityTaskDeleted, deletedBy)
	if _, err := uc.notifier.LogActivity(ctx, event); err != nil {
		return nil, err
	}

	return deleted, nil
}

// UpdateStatus assigns the new status unconditionally; the state machine
// does not forbid reopening a Completed or Overdue task. The event kind is
// TASK_UPDATED, not TASK_STATUS_CHANGED.
func (uc *UseCase) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus, updatedBy string) (*domain.Task, error) {
	if !domain.ValidTaskStatus(status) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown task status")
	}

	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Status = status
	if updatedBy != "" {
		task.UpdatedBy = updatedBy
	}
	if err := uc.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	uc.invalidate(ctx, id)

	event := domain.BuildTaskEvent(task, domain.ActivityTaskUpdated, updatedBy)
	if _, err := uc.notifier.LogActivity(ctx, event); err != nil {
		return nil, err
	}

	return task, nil
}

func (uc *UseCase) invalidate(ctx context.Context, ids ...string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, ids...); err != nil {
		uc.logger.Warn("failed to invalidate task cache", zap.Strings("task_ids", ids), zap.Error(err))
	}
}

func paginate(tasks []domain.Task, total int, page repository.Page) *Paginated {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return &Paginated{
		Data: tasks,
		Meta: NewPageMeta(total, page.Page, page.Limit),
	}
}
