package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gamyam/crm-tasks/domain"
	"github.com/gamyam/crm-tasks/internal/infrastructure/buffer"
	"github.com/gamyam/crm-tasks/usecase"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// RetryConfig controls how frequently buffered events are redelivered.
type RetryConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// RetryProcessor redelivers activity events that failed on the sweep path.
// Delivery stays best-effort: items past MaxRetries or Retention are dropped.
type RetryProcessor struct {
	store    *buffer.Store
	monitor  ConnectionHealth
	notifier usecase.ActivityNotifier
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      RetryConfig
}

func NewRetryProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	notifier usecase.ActivityNotifier,
	logger *zap.Logger,
	cfg RetryConfig,
) *RetryProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rp := &RetryProcessor{
		store:    store,
		monitor:  monitor,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = rp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := rp.Drain(ctx); err != nil {
			rp.logger.Error("activity redelivery failed", zap.Error(err))
		}
	})

	return rp
}

// Start launches the cron scheduler.
func (rp *RetryProcessor) Start() {
	if rp == nil || rp.cron == nil {
		return
	}
	rp.cron.Start()
	rp.logger.Info("activity retry processor started")
}

// Stop gracefully stops the scheduler.
func (rp *RetryProcessor) Stop(ctx context.Context) {
	if rp == nil || rp.cron == nil {
		return
	}
	stopCtx := rp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	rp.logger.Info("activity retry processor stopped")
}

// BufferEvent queues an undelivered event for a later drain.
func (rp *RetryProcessor) BufferEvent(event domain.ActivityEvent) error {
	if rp == nil || rp.store == nil {
		return fmt.Errorf("retry processor not configured")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return rp.store.Enqueue(buffer.Item{
		TaskID:       event.TaskID,
		ActivityType: string(event.ActivityType),
		Event:        payload,
		Priority:     4,
	})
}

// Drain re-sends buffered events synchronously.
func (rp *RetryProcessor) Drain(ctx context.Context) error {
	if rp == nil || rp.store == nil {
		return nil
	}
	if rp.monitor != nil && !rp.monitor.IsOnline() {
		rp.logger.Debug("skipping activity redelivery (offline)")
		return nil
	}

	if err := rp.store.Cleanup(time.Now().Add(-rp.cfg.Retention)); err != nil {
		rp.logger.Warn("failed to expire stale buffered events", zap.Error(err))
	}

	items, err := rp.store.GetBatch(rp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := rp.redeliver(ctx, item); err != nil {
			rp.logger.Error("failed to redeliver activity event",
				zap.String("item_id", item.ID),
				zap.String("task_id", item.TaskID),
				zap.Error(err))

			item.Retries++
			if item.Retries >= rp.cfg.MaxRetries {
				rp.logger.Warn("dropping activity event (max retries reached)",
					zap.String("item_id", item.ID))
				_ = rp.store.Remove(item)
				continue
			}

			if err := rp.store.Remove(item); err != nil {
				rp.logger.Warn("failed to remove buffered event", zap.Error(err))
			}
			if err := rp.store.Requeue(item); err != nil {
				rp.logger.Error("failed to requeue buffered event", zap.Error(err))
			}
			continue
		}

		if err := rp.store.Remove(item); err != nil {
			rp.logger.Warn("failed to purge redelivered event", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of buffered events.
func (rp *RetryProcessor) Size() int {
	if rp == nil || rp.store == nil {
		return 0
	}
	size, err := rp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (rp *RetryProcessor) redeliver(ctx context.Context, item buffer.Item) error {
	var event domain.ActivityEvent
	if err := json.Unmarshal(item.Event, &event); err != nil {
		return err
	}
	_, err := rp.notifier.LogActivity(ctx, event)
	return err
}

var _ EventBuffer = (*RetryProcessor)(nil)
