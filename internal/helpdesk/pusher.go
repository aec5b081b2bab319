package helpdesk

import (
	"context"
	"log/slog"

	"github.com/nhle/helpdesk-import/internal/model"
	"github.com/nhle/helpdesk-import/internal/retry"
)

// Pusher submits tickets with exponential backoff on transient
// failures. It knows nothing about dedup state; recording a successful
// push is the caller's job.
type Pusher struct {
	client *Client
	policy retry.Policy
	sleep  retry.SleepFunc
	logger *slog.Logger
}

// NewPusher wraps a client with the given retry policy. sleep may be
// nil, defaulting to time.Sleep.
func NewPusher(client *Client, policy retry.Policy, sleep retry.SleepFunc, logger *slog.Logger) *Pusher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pusher{
		client: client,
		policy: policy,
		sleep:  sleep,
		logger: logger,
	}
}

// Push creates one ticket, retrying transient failures per the policy.
// After exhausting all attempts the last error is returned; fatal API
// errors propagate immediately.
func (p *Pusher) Push(ctx context.Context, payload model.TicketPayload) error {
	attempt := 0
	return retry.Do(ctx, p.policy, p.sleep, IsTransient,
		func(ctx context.Context) error {
			attempt++
			err := p.client.CreateTicket(ctx, payload)
			if err != nil && IsTransient(err) && attempt < p.policy.MaxAttempts {
				p.logger.Warn("ticket creation failed, will retry",
					"attempt", attempt,
					"max_attempts", p.policy.MaxAttempts,
					"error", err)
			}
			return err
		})
}
