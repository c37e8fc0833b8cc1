package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamyam/crm-tasks/domain"
	"github.com/gamyam/crm-tasks/internal/infrastructure/buffer"
)

type staticHealth struct {
	online bool
}

func (h staticHealth) IsOnline() bool { return h.online }

func openTestStore(t *testing.T) *buffer.Store {
	t.Helper()
	store, err := buffer.Open(filepath.Join(t.TempDir(), "activity.db"), "activity")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func bufferedEvent(taskID string) domain.ActivityEvent {
	return domain.BuildTaskEvent(pendingTask(taskID, time.Now()), domain.ActivityTaskUpdated, domain.SystemActor)
}

func TestRetryProcessorRedeliversBufferedEvents(t *testing.T) {
	store := openTestStore(t)
	notifier := &sweepNotifier{}
	rp := NewRetryProcessor(store, staticHealth{online: true}, notifier, nil, RetryConfig{})

	require.NoError(t, rp.BufferEvent(bufferedEvent("t1")))
	require.NoError(t, rp.BufferEvent(bufferedEvent("t2")))
	assert.Equal(t, 2, rp.Size())

	require.NoError(t, rp.Drain(context.Background()))

	delivered := notifier.delivered()
	require.Len(t, delivered, 2)
	assert.Equal(t, domain.ActivityTaskUpdated, delivered[0].ActivityType)
	assert.Equal(t, domain.SystemActor, delivered[0].PerformedBy)
	assert.Equal(t, 0, rp.Size())
}

func TestRetryProcessorRequeuesUntilMaxRetries(t *testing.T) {
	store := openTestStore(t)
	notifier := &sweepNotifier{fail: map[string]bool{"t1": true}}
	rp := NewRetryProcessor(store, staticHealth{online: true}, notifier, nil, RetryConfig{MaxRetries: 2})

	require.NoError(t, rp.BufferEvent(bufferedEvent("t1")))

	// first drain fails delivery and requeues the item
	require.NoError(t, rp.Drain(context.Background()))
	assert.Equal(t, 1, rp.Size())

	// second failed drain hits the retry cap and drops it
	require.NoError(t, rp.Drain(context.Background()))
	assert.Equal(t, 0, rp.Size())
	assert.Empty(t, notifier.delivered())
}

func TestRetryProcessorSkipsWhenOffline(t *testing.T) {
	store := openTestStore(t)
	notifier := &sweepNotifier{}
	rp := NewRetryProcessor(store, staticHealth{online: false}, notifier, nil, RetryConfig{})

	require.NoError(t, rp.BufferEvent(bufferedEvent("t1")))
	require.NoError(t, rp.Drain(context.Background()))

	// nothing leaves the buffer while the backends are down
	assert.Equal(t, 1, rp.Size())
	assert.Empty(t, notifier.delivered())
}
