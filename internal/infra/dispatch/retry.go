package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/dispatcher/internal/core/domain"
)

// RetryConfig defines retry behavior for one submission.
type RetryConfig struct {
	RetryCount int           // extra attempts after the first
	RetryDelay time.Duration // pause between attempts
}

// DefaultRetryConfig provides sensible defaults.
var DefaultRetryConfig = RetryConfig{
	RetryCount: 2,
	RetryDelay: 1 * time.Second,
}

// Controller wraps the adapter with bounded, transport-only retries.
// Business outcomes are final: retrying a submission the service has
// already accepted or rejected would double-dispatch the move.
type Controller struct {
	adapter Adapter
	config  RetryConfig
	log     *slog.Logger
}

// NewController creates a retry controller around an adapter.
func NewController(adapter Adapter, config RetryConfig, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{adapter: adapter, config: config, log: log}
}

// Attempt submits the task, retrying transport failures up to
// RetryCount extra times. Success or BusinessFailure on any attempt
// returns immediately; if every attempt is a transport failure the
// last one is the task's final outcome.
func (c *Controller) Attempt(ctx context.Context, task *domain.Task) domain.Outcome {
	var last domain.Outcome

	for attempt := 0; attempt <= c.config.RetryCount; attempt++ {
		outcome := c.adapter.Submit(ctx, task)
		if outcome.Kind != domain.OutcomeTransportFailure {
			return outcome
		}

		last = outcome
		if attempt == c.config.RetryCount {
			break
		}

		c.log.Warn("transport failure, retrying",
			"attempt", attempt+1,
			"max_attempts", c.config.RetryCount+1,
			"source", task.Source,
			"error", outcome.Err)

		select {
		case <-ctx.Done():
			return domain.TransportFailure(ctx.Err())
		case <-time.After(c.config.RetryDelay):
		}
	}

	return last
}
