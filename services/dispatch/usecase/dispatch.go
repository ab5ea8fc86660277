package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rescuelink/dispatch/internal/pkg/logger"
	"github.com/rescuelink/dispatch/internal/pkg/models"
	"github.com/rescuelink/dispatch/internal/utils"
	"github.com/rescuelink/dispatch/services/dispatch"
)

// SubmitRequest validates and persists a new emergency request in pending
// status. The caller follows up with Dispatch to run the first matching
// attempt.
func (uc *DispatchUC) SubmitRequest(ctx context.Context, req *models.EmergencyRequest) (*models.EmergencyRequest, error) {
	if req.ServiceType == "" {
		return nil, dispatch.ErrMissingServiceType
	}
	if !req.ServiceType.Valid() {
		return nil, dispatch.ErrInvalidServiceType
	}
	if req.RequesterID == uuid.Nil {
		return nil, dispatch.ErrMissingRequester
	}

	lon, lat, changed := utils.RepairCoordinate(req.Location.Longitude, req.Location.Latitude)
	if changed {
		logger.WarnCtx(ctx, "Repaired request coordinates on submit",
			logger.Float64("original_longitude", req.Location.Longitude),
			logger.Float64("original_latitude", req.Location.Latitude),
			logger.Float64("longitude", lon),
			logger.Float64("latitude", lat))
	}
	req.Location.Longitude = lon
	req.Location.Latitude = lat

	created, err := uc.requestRepo.CreateRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Emergency request submitted",
		logger.String("request_id", created.ID.String()),
		logger.String("service_type", string(created.ServiceType)))
	return created, nil
}

// GetRequest retrieves an emergency request by ID
func (uc *DispatchUC) GetRequest(ctx context.Context, requestID uuid.UUID) (*models.EmergencyRequest, error) {
	return uc.requestRepo.GetRequest(ctx, requestID)
}

// Dispatch runs one matching attempt for a pending request: pick the nearest
// available responder of the required service type within the search radius
// and claim it atomically. Losing a race is an outcome, not an error, so the
// retry job can simply run the attempt again.
func (uc *DispatchUC) Dispatch(ctx context.Context, requestID uuid.UUID) (*models.DispatchOutcome, error) {
	req, err := uc.requestRepo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestStatusPending {
		return nil, dispatch.ErrAssignmentConflict
	}

	location := uc.repairedRequestLocation(ctx, req)

	candidates, err := uc.responderRepo.FindCandidates(ctx, location, req.ServiceType, uc.cfg.Dispatch.SearchRadiusKm, 1)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		logger.InfoCtx(ctx, "No candidate responder in range",
			logger.String("request_id", req.ID.String()),
			logger.String("service_type", string(req.ServiceType)),
			logger.Float64("radius_km", uc.cfg.Dispatch.SearchRadiusKm))
		return &models.DispatchOutcome{Reason: models.DispatchReasonNoCandidate}, nil
	}

	candidate := candidates[0]
	etaMinutes := utils.EstimateMinutes(candidate.DistanceKm, uc.cfg.Dispatch.AvgSpeedKmh)
	eta := utils.FormatETA(etaMinutes)
	estimatedArrival := time.Now().Add(time.Duration(etaMinutes) * time.Minute)

	err = uc.requestRepo.AssignAtomically(ctx, req.ID, candidate.ID, estimatedArrival)
	if err != nil {
		if errors.Is(err, dispatch.ErrAssignmentConflict) {
			logger.InfoCtx(ctx, "Lost assignment race",
				logger.String("request_id", req.ID.String()),
				logger.String("responder_id", candidate.ID.String()))
			return &models.DispatchOutcome{Reason: models.DispatchReasonConflict}, nil
		}
		return nil, err
	}

	if err := uc.responderRepo.MarkBusy(ctx, candidate.ID, req.ServiceType); err != nil {
		logger.WarnCtx(ctx, "Failed to remove responder from availability pool",
			logger.String("responder_id", candidate.ID.String()),
			logger.Err(err))
	}

	entry := models.NotificationEntry{
		RequestID:      req.ID,
		ServiceType:    req.ServiceType,
		Location:       location,
		Address:        req.Address,
		Description:    req.Description,
		DistanceKm:     candidate.DistanceKm,
		ETA:            eta,
		TimeoutSeconds: uc.cfg.Dispatch.OfferTimeoutSeconds,
		CreatedAt:      time.Now(),
	}
	uc.deliverOffer(ctx, candidate.ID, entry)

	event := models.AssignmentEvent{
		RequestID:   req.ID,
		ResponderID: candidate.ID,
		ServiceType: req.ServiceType,
		DistanceKm:  candidate.DistanceKm,
		ETA:         eta,
		AssignedAt:  time.Now(),
	}
	if err := uc.dispatchGW.PublishAssigned(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish assignment event",
			logger.String("request_id", req.ID.String()),
			logger.Err(err))
	}

	logger.InfoCtx(ctx, "Responder assigned",
		logger.String("request_id", req.ID.String()),
		logger.String("responder_id", candidate.ID.String()),
		logger.Float64("distance_km", candidate.DistanceKm),
		logger.String("eta", eta))

	responderID := candidate.ID
	return &models.DispatchOutcome{
		ResponderID: &responderID,
		Reason:      models.DispatchReasonAssigned,
		DistanceKm:  candidate.DistanceKm,
		ETA:         eta,
	}, nil
}

const broadcastLimit = 10

// BroadcastNearby fans an advisory notice out to available responders within
// the broadcast radius of a still-pending request. None of them is assigned;
// the notice tells responders an emergency is nearby so they can move closer
// or come online, and the next dispatch attempt may then find a candidate.
func (uc *DispatchUC) BroadcastNearby(ctx context.Context, requestID uuid.UUID) (int, error) {
	req, err := uc.requestRepo.GetRequest(ctx, requestID)
	if err != nil {
		return 0, err
	}
	if req.Status != models.RequestStatusPending {
		return 0, nil
	}

	candidates, err := uc.responderRepo.FindCandidates(ctx, req.Location, req.ServiceType, uc.cfg.Dispatch.BroadcastRadiusKm, broadcastLimit)
	if err != nil {
		return 0, err
	}

	for _, candidate := range candidates {
		etaMinutes := utils.EstimateMinutes(candidate.DistanceKm, uc.cfg.Dispatch.AvgSpeedKmh)
		entry := models.NotificationEntry{
			RequestID:      req.ID,
			ServiceType:    req.ServiceType,
			Location:       req.Location,
			Address:        req.Address,
			Description:    req.Description,
			DistanceKm:     candidate.DistanceKm,
			ETA:            utils.FormatETA(etaMinutes),
			TimeoutSeconds: uc.cfg.Dispatch.OfferTimeoutSeconds,
			CreatedAt:      time.Now(),
		}
		uc.deliverOffer(ctx, candidate.ID, entry)
	}

	if len(candidates) > 0 {
		logger.InfoCtx(ctx, "Broadcast pending request to nearby responders",
			logger.String("request_id", req.ID.String()),
			logger.Int("responders", len(candidates)),
			logger.Float64("radius_km", uc.cfg.Dispatch.BroadcastRadiusKm))
	}
	return len(candidates), nil
}

// repairedRequestLocation validates the stored request location and repairs
// it if a swapped or out-of-range pair slipped through. Repairs are
// persisted so later attempts see the corrected coordinates.
func (uc *DispatchUC) repairedRequestLocation(ctx context.Context, req *models.EmergencyRequest) models.Location {
	location := req.Location
	lon, lat, changed := utils.RepairCoordinate(location.Longitude, location.Latitude)
	if !changed {
		return location
	}
	location.Longitude = lon
	location.Latitude = lat

	logger.WarnCtx(ctx, "Repaired request coordinates before matching",
		logger.String("request_id", req.ID.String()),
		logger.Float64("original_longitude", req.Location.Longitude),
		logger.Float64("original_latitude", req.Location.Latitude),
		logger.Float64("longitude", location.Longitude),
		logger.Float64("latitude", location.Latitude))

	if err := uc.requestRepo.UpdateRequestLocation(ctx, req.ID, location); err != nil {
		logger.WarnCtx(ctx, "Failed to persist repaired request location",
			logger.String("request_id", req.ID.String()),
			logger.Err(err))
	}
	return location
}

// deliverOffer pushes the offer over the live transport when configured and
// the responder is connected, falling back to the poll mailbox.
func (uc *DispatchUC) deliverOffer(ctx context.Context, responderID uuid.UUID, entry models.NotificationEntry) {
	if uc.transport != nil && uc.transport.DeliverOffer(responderID, entry) {
		logger.InfoCtx(ctx, "Offer pushed to responder",
			logger.String("responder_id", responderID.String()),
			logger.String("request_id", entry.RequestID.String()))
		return
	}

	if err := uc.notifyQueue.Push(ctx, responderID, entry); err != nil {
		logger.ErrorCtx(ctx, "Failed to enqueue offer",
			logger.String("responder_id", responderID.String()),
			logger.String("request_id", entry.RequestID.String()),
			logger.Err(err))
	}
}
