package scheduler

import (
	"context"
	"fmt"

	"pj_commission_backend/internal/email"
	"pj_commission_backend/platform/config"
	"pj_commission_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sender email.Sender
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sender email.Sender, log *logger.Logger) (*Worker, error) {
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
		server: server,
		mux:    mux,
		sender: sender,
		log:    log,
	}

	mux.HandleFunc(TaskClaimNotification, w.handleClaimNotification)

	return w, nil
}

func (w *Worker) handleClaimNotification(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseClaimNotificationPayload(task)
	if err != nil {
		return err
	}

	if payload.AgentEmail == "" {
		w.log.Warn("claim notification skipped, agent has no email", "commission_id", payload.CommissionID)
		return nil
	}

	if payload.Success {
		err = w.sender.SendClaimSyncedEmail(ctx, payload.AgentEmail, payload.AgentName,
			payload.StudentName, payload.SchoolName, payload.DealName)
	} else {
		err = w.sender.SendClaimFailedEmail(ctx, payload.AgentEmail, payload.AgentName,
			payload.StudentName, payload.SchoolName, payload.Reason)
	}
	if err != nil {
		return fmt.Errorf("send claim notification: %w", err)
	}

	w.log.Info("claim notification sent",
		"commission_id", payload.CommissionID,
		"to", payload.AgentEmail,
		"success", payload.Success,
	)
	return nil
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
