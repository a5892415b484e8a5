package queue

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-travel/internal/resilience"
)

// Client enqueues background tasks on asynq.
type Client struct {
	inner   *asynq.Client
	breaker *resilience.Breaker
}

// NewClient connects an asynq client using the Redis connection options.
func NewClient(opt asynq.RedisConnOpt) *Client {
	return &Client{inner: asynq.NewClient(opt)}
}

// WithBreaker routes enqueue calls through b.
func (c *Client) WithBreaker(b *resilience.Breaker) *Client {
	c.breaker = b
	return c
}

// EnqueueBookingConfirmation schedules the confirmation email for a booking.
// A booking that already has a pending confirmation is not enqueued twice.
func (c *Client) EnqueueBookingConfirmation(ctx context.Context, p BookingConfirmation) error {
	task, err := NewBookingConfirmationTask(p)
	if err != nil {
		return err
	}
	enqueue := func(ctx context.Context) error {
		if _, err := c.inner.EnqueueContext(ctx, task); err != nil {
			if errors.Is(err, asynq.ErrTaskIDConflict) {
				return nil
			}
			return err
		}
		return nil
	}
	if c.breaker == nil {
		return enqueue(ctx)
	}
	return c.breaker.Execute(ctx, enqueue)
}

// Close releases the underlying Redis connection.
func (c *Client) Close() error {
	if c == nil || c.inner == nil {
		return nil
	}
	return c.inner.Close()
}
