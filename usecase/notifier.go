package usecase

import (
	"context"

	"github.com/gamyam/crm-tasks/domain"
)

// ActivityNotifier reports one activity event to the external timeline
// service. Exactly one attempt is made per call; retry policy belongs to the
// caller. The downstream response body is returned on success.
type ActivityNotifier interface {
	LogActivity(ctx context.Context, event domain.ActivityEvent) ([]byte, error)
}
