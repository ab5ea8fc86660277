package jobs

import (
	"context"
	"time"

	"github.com/rescuelink/dispatch/internal/pkg/logger"
	"github.com/rescuelink/dispatch/internal/pkg/models"
	"github.com/rescuelink/dispatch/services/dispatch"
)

// RetryJob periodically re-runs dispatch for requests still pending, so
// requests submitted with no responder in range get matched once one comes
// available or moves close enough.
type RetryJob struct {
	cfg        *models.Config
	requests   dispatch.RequestStore
	dispatchUC dispatch.DispatchUC
	stop       chan struct{}
	done       chan struct{}
}

// NewRetryJob creates a new pending-request retry job
func NewRetryJob(cfg *models.Config, requests dispatch.RequestStore, dispatchUC dispatch.DispatchUC) *RetryJob {
	return &RetryJob{
		cfg:        cfg,
		requests:   requests,
		dispatchUC: dispatchUC,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the retry loop until Stop is called
func (j *RetryJob) Start() {
	interval := time.Duration(j.cfg.Dispatch.RetryIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go func() {
		defer close(j.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logger.Info("Dispatch retry job started",
			logger.Duration("interval", interval))

		for {
			select {
			case <-ticker.C:
				j.runOnce()
			case <-j.stop:
				logger.Info("Dispatch retry job stopped")
				return
			}
		}
	}()
}

// Stop signals the loop to exit and waits for it
func (j *RetryJob) Stop() {
	close(j.stop)
	<-j.done
}

func (j *RetryJob) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pending, err := j.requests.ListByStatuses(ctx, []models.RequestStatus{models.RequestStatusPending})
	if err != nil {
		logger.Error("Failed to list pending requests", logger.Err(err))
		return
	}
	if len(pending) == 0 {
		return
	}

	logger.Info("Retrying dispatch for pending requests",
		logger.Int("count", len(pending)))

	for _, req := range pending {
		outcome, err := j.dispatchUC.Dispatch(ctx, req.ID)
		if err != nil {
			// Conflicts mean another path just claimed the request
			logger.Warn("Retry dispatch attempt failed",
				logger.String("request_id", req.ID.String()),
				logger.Err(err))
			continue
		}
		if outcome.Reason == models.DispatchReasonAssigned {
			logger.Info("Retry dispatch assigned responder",
				logger.String("request_id", req.ID.String()),
				logger.String("responder_id", outcome.ResponderID.String()))
		}
	}
}
