package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-travel/internal/obs"
)

// Confirmer delivers booking confirmations.
type Confirmer interface {
	Confirm(ctx context.Context, p BookingConfirmation) error
}

// WorkerConfig configures the asynq worker server.
type WorkerConfig struct {
	Concurrency int
	Logger      zerolog.Logger
}

// NewServer builds an asynq server consuming the notification queue.
func NewServer(opt asynq.RedisConnOpt, cfg WorkerConfig) *asynq.Server {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	logger := cfg.Logger
	return asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueNotifications: 6,
			"default":          1,
		},
		Logger: zerologAdapter{logger: logger},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Warn().Err(err).
				Str("task_type", task.Type()).
				Int("retry", retried).
				Int("max_retry", maxRetry).
				Msg("task failed")
		}),
	})
}

// NewServeMux routes task types to their handlers.
func NewServeMux(confirmer Confirmer, logger zerolog.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeBookingConfirmation, ConfirmationHandler{Confirmer: confirmer, Logger: logger})
	return mux
}

// ConfirmationHandler processes booking confirmation tasks.
type ConfirmationHandler struct {
	Confirmer Confirmer
	Logger    zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (h ConfirmationHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := DecodeBookingConfirmation(task.Payload())
	if err != nil {
		obs.IncConfirmationJob("invalid")
		h.Logger.Error().Err(err).Str("task_type", task.Type()).Msg("dropping malformed confirmation task")
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if err := h.Confirmer.Confirm(ctx, payload); err != nil {
		obs.IncConfirmationJob("error")
		return err
	}
	obs.IncConfirmationJob("sent")
	h.Logger.Info().
		Str("booking_id", payload.BookingID.String()).
		Str("booking_code", payload.BookingCode).
		Msg("booking confirmation processed")
	return nil
}

type zerologAdapter struct {
	logger zerolog.Logger
}

func (a zerologAdapter) Debug(args ...any) { a.logger.Debug().Msg(fmt.Sprint(args...)) }
func (a zerologAdapter) Info(args ...any)  { a.logger.Info().Msg(fmt.Sprint(args...)) }
func (a zerologAdapter) Warn(args ...any)  { a.logger.Warn().Msg(fmt.Sprint(args...)) }
func (a zerologAdapter) Error(args ...any) { a.logger.Error().Msg(fmt.Sprint(args...)) }
func (a zerologAdapter) Fatal(args ...any) { a.logger.Fatal().Msg(fmt.Sprint(args...)) }
