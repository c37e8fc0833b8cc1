package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/gamyam/crm-tasks/domain"
	"github.com/gamyam/crm-tasks/usecase"
)

const apiKeyHeader = "x-api-key"

// Config carries the activity timeline endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client posts activity events to the timeline service.
type Client struct {
	http    *resty.Client
	baseURL string
	logger  *zap.Logger
}

// NewClient builds the gateway. A missing base URL is tolerated here and
// reported on the first send, so the service can boot without the timeline
// collaborator configured.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	http := resty.New()
	if cfg.Timeout > 0 {
		http.SetTimeout(cfg.Timeout)
	}
	if cfg.APIKey != "" {
		http.SetHeader(apiKeyHeader, cfg.APIKey)
	}

	return &Client{
		http:    http,
		baseURL: cfg.BaseURL,
		logger:  logger,
	}
}

// LogActivity performs the single outbound POST. It fails without a network
// attempt when the base URL is unconfigured, and classifies transport errors
// and non-2xx statuses as delivery failures.
func (c *Client) LogActivity(ctx context.Context, event domain.ActivityEvent) ([]byte, error) {
	if c.baseURL == "" {
		c.logger.Error("activity client base URL is not configured")
		return nil, domain.ErrActivityUnconfigured
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(event).
		Post(c.baseURL)
	if err != nil {
		c.logger.Error("error while logging activity",
			zap.String("activity_type", string(event.ActivityType)),
			zap.String("task_id", event.TaskID),
			zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeDelivery, "failed to log activity", err)
	}

	if resp.IsError() {
		c.logger.Error("activity service rejected event",
			zap.String("activity_type", string(event.ActivityType)),
			zap.String("task_id", event.TaskID),
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("body", resp.Body()))
		return nil, domain.WrapError(domain.ErrCodeDelivery, "failed to log activity",
			fmt.Errorf("activity service returned status %d", resp.StatusCode()))
	}

	return resp.Body(), nil
}

var _ usecase.ActivityNotifier = (*Client)(nil)
