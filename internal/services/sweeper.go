package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gamyam/crm-tasks/domain"
	"github.com/gamyam/crm-tasks/repository"
	"github.com/gamyam/crm-tasks/usecase"
)

// EventBuffer accepts an activity event for later redelivery.
type EventBuffer interface {
	BufferEvent(event domain.ActivityEvent) error
}

// SweepConfig controls the overdue detection cadence and window.
type SweepConfig struct {
	// Interval is the sweep cadence.
	Interval time.Duration
	// Lookback bounds the due-date window ending at "now". Tasks whose due
	// date fell before the window are never picked up again; keeping
	// Lookback >= Interval avoids missing crossings between runs.
	Lookback time.Duration
	// RunTimeout caps a single sweep run.
	RunTimeout time.Duration
}

func (c *SweepConfig) normalize() {
	if c.Interval <= 0 {
		c.Interval = time.Hour
	}
	if c.Lookback <= 0 {
		c.Lookback = c.Interval
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = c.Interval
	}
}

// Sweeper periodically finds Pending tasks whose due date just elapsed,
// moves them to Overdue in one bulk write, and reports one event per task.
type Sweeper struct {
	tasks    repository.TaskRepository
	cache    repository.TaskCache
	notifier usecase.ActivityNotifier
	events   EventBuffer
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      SweepConfig
}

func NewSweeper(
	tasks repository.TaskRepository,
	cache repository.TaskCache,
	notifier usecase.ActivityNotifier,
	events EventBuffer,
	logger *zap.Logger,
	cfg SweepConfig,
) *Sweeper {
	cfg.normalize()
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Sweeper{
		tasks:    tasks,
		cache:    cache,
		notifier: notifier,
		events:   events,
		logger:   logger,
		cfg:      cfg,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = s.cron.AddFunc(schedule, s.run)

	return s
}

// Start launches the cron scheduler.
func (s *Sweeper) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("overdue sweeper started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Duration("lookback", s.cfg.Lookback))
}

// Stop gracefully stops the scheduler.
func (s *Sweeper) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("overdue sweeper stopped")
}

// run is the failure boundary around one tick: whatever Sweep returns is
// logged and swallowed so the schedule never dies.
func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()
	if err := s.Sweep(ctx); err != nil {
		s.logger.Error("error checking for overdue tasks", zap.Error(err))
	}
}

// Sweep executes one detection pass. The bulk status write lands before any
// notification goes out; notification failures never undo it.
func (s *Sweeper) Sweep(ctx context.Context) error {
	now := time.Now()

	overdue, err := s.tasks.FindOverdue(ctx, now, s.cfg.Lookback)
	if err != nil {
		return err
	}
	if len(overdue) == 0 {
		return nil
	}

	ids := make([]string, len(overdue))
	for i := range overdue {
		ids[i] = overdue[i].ID
	}

	if _, err := s.tasks.UpdateStatusBulk(ctx, ids, domain.TaskStatusOverdue); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, ids...); err != nil {
			s.logger.Warn("failed to invalidate swept tasks", zap.Error(err))
		}
	}

	// one event per task, dispatched concurrently; one failure never cancels
	// the others
	var wg sync.WaitGroup
	for i := range overdue {
		task := overdue[i]
		task.Status = domain.TaskStatusOverdue

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.notify(ctx, &task)
		}()
	}
	wg.Wait()

	s.logger.Debug("swept tasks to overdue",
		zap.Int("count", len(overdue)),
		zap.Time("at", now))
	for i := range overdue {
		s.logger.Debug("task marked overdue",
			zap.String("task_id", overdue[i].ID),
			zap.String("title", overdue[i].Title),
			zap.Time("due_date", overdue[i].DueDate))
	}
	return nil
}

func (s *Sweeper) notify(ctx context.Context, task *domain.Task) {
	event := domain.BuildTaskEvent(task, domain.ActivityTaskUpdated, domain.SystemActor)
	_, err := s.notifier.LogActivity(ctx, event)
	if err == nil {
		return
	}
	s.logger.Error("failed to notify overdue task",
		zap.String("task_id", task.ID),
		zap.Error(err))

	if s.events == nil {
		return
	}
	if err := s.events.BufferEvent(event); err != nil {
		s.logger.Error("failed to buffer overdue event",
			zap.String("task_id", task.ID),
			zap.Error(err))
	}
}
