package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rescuelink/dispatch/internal/pkg/logger"
	"github.com/rescuelink/dispatch/internal/pkg/models"
	"github.com/rescuelink/dispatch/internal/utils"
	"github.com/rescuelink/dispatch/services/dispatch"
)

// DrainNotifications returns and removes all pending offers for the
// responder. Delivery is at-most-once: an offer drained here will never be
// seen again, by this poll or any concurrent one.
func (uc *DispatchUC) DrainNotifications(ctx context.Context, responderID uuid.UUID) ([]models.NotificationEntry, error) {
	return uc.notifyQueue.Drain(ctx, responderID)
}

// DeclineOffer releases an accepted assignment back to pending. The request
// re-enters the retry job's pending scan, which will look for another
// responder on its next tick.
func (uc *DispatchUC) DeclineOffer(ctx context.Context, requestID, responderID uuid.UUID) error {
	if err := uc.requestRepo.ReleaseAssignment(ctx, requestID, responderID); err != nil {
		return err
	}

	responder, err := uc.responderRepo.GetResponder(ctx, responderID)
	if err != nil {
		logger.WarnCtx(ctx, "Declined offer but responder lookup failed",
			logger.String("responder_id", responderID.String()),
			logger.Err(err))
		return nil
	}
	if err := uc.responderRepo.MarkAvailable(ctx, responderID, responder.ServiceType); err != nil {
		logger.WarnCtx(ctx, "Failed to return responder to availability pool",
			logger.String("responder_id", responderID.String()),
			logger.Err(err))
	}

	event := models.RequestStatusEvent{
		RequestID:  requestID,
		Status:     models.RequestStatusPending,
		OccurredAt: time.Now(),
	}
	if err := uc.dispatchGW.PublishRequestStatus(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish status event",
			logger.String("request_id", requestID.String()),
			logger.Err(err))
	}

	logger.InfoCtx(ctx, "Offer declined",
		logger.String("request_id", requestID.String()),
		logger.String("responder_id", responderID.String()))
	return nil
}

// UpdateResponderLocation normalizes a location ping of any accepted shape,
// repairs suspect coordinates, and stores the result. The stored location is
// returned so callers can echo what the system actually recorded.
func (uc *DispatchUC) UpdateResponderLocation(ctx context.Context, responderID uuid.UUID, location interface{}) (*models.Location, error) {
	lon, lat, err := utils.ParseCoordinate(location)
	if err != nil {
		logger.WarnCtx(ctx, "Unparseable location ping, using default coordinates",
			logger.String("responder_id", responderID.String()),
			logger.Err(err))
		lon = uc.cfg.Dispatch.DefaultLongitude
		lat = uc.cfg.Dispatch.DefaultLatitude
	}

	repairedLon, repairedLat, changed := utils.RepairCoordinate(lon, lat)
	if changed {
		logger.WarnCtx(ctx, "Repaired responder coordinates",
			logger.String("responder_id", responderID.String()),
			logger.Float64("original_longitude", lon),
			logger.Float64("original_latitude", lat),
			logger.Float64("longitude", repairedLon),
			logger.Float64("latitude", repairedLat))
	}

	stored := models.Location{
		Longitude: repairedLon,
		Latitude:  repairedLat,
		Timestamp: time.Now(),
	}
	if err := uc.responderRepo.UpdateLocation(ctx, responderID, stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// SetResponderAvailability flips a responder between offline, available and
// busy. Only available responders are matchable.
func (uc *DispatchUC) SetResponderAvailability(ctx context.Context, responderID uuid.UUID, availability models.Availability) error {
	if !availability.Valid() {
		return dispatch.ErrInvalidAvailability
	}
	return uc.responderRepo.SetAvailability(ctx, responderID, availability)
}
