package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rescuelink/dispatch/internal/pkg/logger"
	"github.com/rescuelink/dispatch/internal/pkg/models"
	"github.com/rescuelink/dispatch/services/dispatch"
)

// canTransition encodes the request lifecycle graph:
// pending -> accepted -> in-progress -> completed, with cancellation allowed
// from any non-terminal status.
func canTransition(from, to models.RequestStatus) bool {
	if to == models.RequestStatusCancelled {
		return !from.Terminal()
	}
	switch from {
	case models.RequestStatusPending:
		return to == models.RequestStatusAccepted
	case models.RequestStatusAccepted:
		return to == models.RequestStatusInProgress
	case models.RequestStatusInProgress:
		return to == models.RequestStatusCompleted
	}
	return false
}

// ApplyStatus moves a request through its lifecycle. Side effects (arrival
// and completion timestamps, responder release) commit in the same
// transaction as the status change, then the transition is broadcast on the
// request.status subject.
func (uc *DispatchUC) ApplyStatus(ctx context.Context, requestID uuid.UUID, status models.RequestStatus) (*models.EmergencyRequest, error) {
	if !status.Valid() {
		return nil, &dispatch.StateTransitionError{To: status}
	}

	req, err := uc.requestRepo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !canTransition(req.Status, status) {
		return nil, &dispatch.StateTransitionError{From: req.Status, To: status}
	}

	updated, released, err := uc.requestRepo.TransitionStatus(ctx, requestID, req.Status, status)
	if err != nil {
		return nil, err
	}

	if released != nil {
		if err := uc.responderRepo.MarkAvailable(ctx, *released, updated.ServiceType); err != nil {
			logger.WarnCtx(ctx, "Failed to return responder to availability pool",
				logger.String("responder_id", released.String()),
				logger.Err(err))
		}
	}

	event := models.RequestStatusEvent{
		RequestID:   updated.ID,
		Status:      updated.Status,
		ResponderID: updated.ResponderID,
		OccurredAt:  time.Now(),
	}
	if err := uc.dispatchGW.PublishRequestStatus(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish status event",
			logger.String("request_id", updated.ID.String()),
			logger.Err(err))
	}

	logger.InfoCtx(ctx, "Request status changed",
		logger.String("request_id", updated.ID.String()),
		logger.String("from", string(req.Status)),
		logger.String("to", string(updated.Status)))
	return updated, nil
}
