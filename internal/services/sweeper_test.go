package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamyam/crm-tasks/domain"
	"github.com/gamyam/crm-tasks/repository"
)

type sweepRepo struct {
	tasks     map[string]*domain.Task
	bulkCalls int
}

func newSweepRepo(tasks ...*domain.Task) *sweepRepo {
	r := &sweepRepo{tasks: map[string]*domain.Task{}}
	for _, t := range tasks {
		clone := *t
		r.tasks[t.ID] = &clone
	}
	return r
}

func (r *sweepRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	clone := *task
	r.tasks[task.ID] = &clone
	return task, nil
}

func (r *sweepRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}

func (r *sweepRepo) List(context.Context, repository.TaskQuery) ([]domain.Task, int, error) {
	return nil, 0, nil
}

func (r *sweepRepo) Filter(context.Context, repository.TaskFilter) ([]domain.Task, int, error) {
	return nil, 0, nil
}

func (r *sweepRepo) Update(_ context.Context, id string, patch domain.TaskUpdate) (*domain.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	patch.Apply(task)
	clone := *task
	return &clone, nil
}

func (r *sweepRepo) SoftDelete(_ context.Context, id string, deletedBy string) (*domain.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	task.DeletedBy = deletedBy
	clone := *task
	return &clone, nil
}

func (r *sweepRepo) Save(_ context.Context, task *domain.Task) error {
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *sweepRepo) FindOverdue(_ context.Context, now time.Time, lookback time.Duration) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range r.tasks {
		if task.Status != domain.TaskStatusPending {
			continue
		}
		if task.DueDate.Before(now) && !task.DueDate.Before(now.Add(-lookback)) {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (r *sweepRepo) UpdateStatusBulk(_ context.Context, ids []string, status domain.TaskStatus) (int64, error) {
	r.bulkCalls++
	var n int64
	for _, id := range ids {
		if task, ok := r.tasks[id]; ok {
			task.Status = status
			n++
		}
	}
	return n, nil
}

// sweepNotifier records deliveries; it is safe for the sweeper's concurrent
// per-task dispatch.
type sweepNotifier struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
	fail   map[string]bool
}

func (n *sweepNotifier) LogActivity(_ context.Context, event domain.ActivityEvent) ([]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail[event.TaskID] {
		return nil, errors.New("activity service unavailable")
	}
	n.events = append(n.events, event)
	return []byte(`{}`), nil
}

func (n *sweepNotifier) delivered() []domain.ActivityEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.ActivityEvent(nil), n.events...)
}

type sweepBuffer struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
	err    error
}

func (b *sweepBuffer) BufferEvent(event domain.ActivityEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.events = append(b.events, event)
	return nil
}

func pendingTask(id string, due time.Time) *domain.Task {
	return &domain.Task{
		ID:             id,
		Title:          "Follow up " + id,
		Type:           domain.TaskTypeReminder,
		Status:         domain.TaskStatusPending,
		Priority:       domain.TaskPriorityMedium,
		DueDate:        due,
		AssignedTo:     "u1",
		CreatedBy:      "u1",
		OrganizationID: "org1",
	}
}

func TestSweepMarksOverdueAndNotifies(t *testing.T) {
	repo := newSweepRepo(pendingTask("t1", time.Now().Add(-30*time.Second)))
	notifier := &sweepNotifier{}
	sweeper := NewSweeper(repo, nil, notifier, nil, nil, SweepConfig{Lookback: time.Minute})

	require.NoError(t, sweeper.Sweep(context.Background()))

	assert.Equal(t, domain.TaskStatusOverdue, repo.tasks["t1"].Status)

	events := notifier.delivered()
	require.Len(t, events, 1)
	assert.Equal(t, domain.ActivityTaskUpdated, events[0].ActivityType)
	assert.Equal(t, domain.SystemActor, events[0].PerformedBy)
	assert.Equal(t, "t1", events[0].TaskID)
}

func TestSweepIsIdempotent(t *testing.T) {
	repo := newSweepRepo(pendingTask("t1", time.Now().Add(-30*time.Second)))
	notifier := &sweepNotifier{}
	sweeper := NewSweeper(repo, nil, notifier, nil, nil, SweepConfig{Lookback: time.Minute})

	require.NoError(t, sweeper.Sweep(context.Background()))
	require.NoError(t, sweeper.Sweep(context.Background()))

	// the second pass finds nothing Pending and emits nothing
	assert.Len(t, notifier.delivered(), 1)
	assert.Equal(t, 1, repo.bulkCalls)
}

func TestSweepIgnoresTasksOutsideWindow(t *testing.T) {
	repo := newSweepRepo(
		pendingTask("stale", time.Now().Add(-2*time.Hour)),
		pendingTask("future", time.Now().Add(time.Hour)),
	)
	notifier := &sweepNotifier{}
	sweeper := NewSweeper(repo, nil, notifier, nil, nil, SweepConfig{Lookback: time.Minute})

	require.NoError(t, sweeper.Sweep(context.Background()))

	assert.Equal(t, domain.TaskStatusPending, repo.tasks["stale"].Status)
	assert.Equal(t, domain.TaskStatusPending, repo.tasks["future"].Status)
	assert.Empty(t, notifier.delivered())
	assert.Zero(t, repo.bulkCalls)
}

func TestSweepNotificationFailureIsIsolated(t *testing.T) {
	repo := newSweepRepo(
		pendingTask("t1", time.Now().Add(-10*time.Second)),
		pendingTask("t2", time.Now().Add(-20*time.Second)),
	)
	notifier := &sweepNotifier{fail: map[string]bool{"t1": true}}
	events := &sweepBuffer{}
	sweeper := NewSweeper(repo, nil, notifier, events, nil, SweepConfig{Lookback: time.Minute})

	// delivery failures never surface from the sweep
	require.NoError(t, sweeper.Sweep(context.Background()))

	// both tasks were still moved
	assert.Equal(t, domain.TaskStatusOverdue, repo.tasks["t1"].Status)
	assert.Equal(t, domain.TaskStatusOverdue, repo.tasks["t2"].Status)

	// the healthy notification went out, the failed one was buffered
	delivered := notifier.delivered()
	require.Len(t, delivered, 1)
	assert.Equal(t, "t2", delivered[0].TaskID)

	require.Len(t, events.events, 1)
	assert.Equal(t, "t1", events.events[0].TaskID)
}

func TestSweepEmptySelectionIsNoOp(t *testing.T) {
	repo := newSweepRepo()
	notifier := &sweepNotifier{}
	sweeper := NewSweeper(repo, nil, notifier, nil, nil, SweepConfig{Lookback: time.Minute})

	require.NoError(t, sweeper.Sweep(context.Background()))

	assert.Zero(t, repo.bulkCalls)
	assert.Empty(t, notifier.delivered())
}

func TestSweepConfigDefaults(t *testing.T) {
	cfg := SweepConfig{}
	cfg.normalize()
	assert.Equal(t, time.Hour, cfg.Interval)
	assert.Equal(t, time.Hour, cfg.Lookback)
	assert.Equal(t, time.Hour, cfg.RunTimeout)

	cfg = SweepConfig{Interval: 5 * time.Minute}
	cfg.normalize()
	assert.Equal(t, 5*time.Minute, cfg.Lookback)

	cfg = SweepConfig{Interval: 5 * time.Minute, Lookback: time.Hour}
	cfg.normalize()
	assert.Equal(t, time.Hour, cfg.Lookback)
}
