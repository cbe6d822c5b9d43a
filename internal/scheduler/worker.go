package scheduler

import (
	"context"
	"fmt"

	"tinko-recovery-backend/internal/events"
	recoveryservice "tinko-recovery-backend/internal/recovery/service"
	"tinko-recovery-backend/platform/apperr"
	"tinko-recovery-backend/platform/config"
	"tinko-recovery-backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Worker consumes retry reminder tasks and republishes them as domain events
// for the notification handlers.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	recovery *recoveryservice.Service
	client   *Client
	bus      events.Bus
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, recovery *recoveryservice.Service, client *Client, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		recovery: recovery,
		client:   client,
		bus:      bus,
		log:      log,
	}

	mux.HandleFunc(TaskRecoveryRetryReminder, w.handleRetryReminder)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleRetryReminder fires a retry-due event for an attempt that is still
// open, then schedules the next reminder per the backoff policy. Attempts
// that were used or expired in the meantime end the chain silently.
func (w *Worker) handleRetryReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRecoveryRetryReminderPayload(task)
	if err != nil {
		return err
	}

	attemptID, err := uuid.Parse(payload.AttemptID)
	if err != nil {
		return err
	}

	attempt, err := w.recovery.GetAttemptByID(ctx, attemptID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	data, err := w.recovery.PageData(ctx, attempt.Token)
	if apperr.Is(err, apperr.KindNotFound) || apperr.Is(err, apperr.KindGone) {
		return nil
	}
	if err != nil {
		return err
	}

	if w.bus != nil {
		w.bus.Publish(ctx, events.RecoveryRetryDue{
			BaseEvent:      events.NewBaseEvent(),
			AttemptID:      attempt.ID,
			TransactionRef: attempt.TransactionRef,
			CustomerEmail:  data.CustomerEmail,
			MerchantName:   data.MerchantName,
			URL:            w.recovery.LinkURL(attempt.Token),
			RetryCount:     attempt.RetryCount,
		})
	}

	next, err := w.recovery.ScheduleNextRetry(ctx, attempt.ID)
	if err != nil {
		return err
	}
	if next == nil || w.client == nil {
		return nil
	}
	return w.client.EnqueueRetryReminder(ctx, attempt.ID, *next)
}
