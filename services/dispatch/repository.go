package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rescuelink/dispatch/internal/pkg/models"
)

// ResponderDirectory defines responder registry and proximity operations.
// Profiles live in Postgres; the live location and availability pools live in
// Redis geo sets keyed per service type.
type ResponderDirectory interface {
	GetResponder(ctx context.Context, responderID uuid.UUID) (*models.Responder, error)
	UpdateLocation(ctx context.Context, responderID uuid.UUID, location models.Location) error
	SetAvailability(ctx context.Context, responderID uuid.UUID, availability models.Availability) error

	// FindCandidates returns matchable responders of the given service type
	// within radiusKm of the location, nearest first, ties broken by id
	// ascending, at most limit entries.
	FindCandidates(ctx context.Context, location models.Location, serviceType models.ServiceType, radiusKm float64, limit int) ([]models.Candidate, error)

	// MarkBusy and MarkAvailable maintain the Redis availability pool only;
	// the durable availability column is flipped inside the assignment and
	// status transactions.
	MarkBusy(ctx context.Context, responderID uuid.UUID, serviceType models.ServiceType) error
	MarkAvailable(ctx context.Context, responderID uuid.UUID, serviceType models.ServiceType) error
}

// RequestStore defines the durable lifecycle of emergency requests.
type RequestStore interface {
	CreateRequest(ctx context.Context, req *models.EmergencyRequest) (*models.EmergencyRequest, error)
	GetRequest(ctx context.Context, requestID uuid.UUID) (*models.EmergencyRequest, error)
	UpdateRequestLocation(ctx context.Context, requestID uuid.UUID, location models.Location) error

	// AssignAtomically claims the request for the responder in a single
	// transaction: the request must still be pending and the responder must
	// still be available, otherwise ErrAssignmentConflict.
	AssignAtomically(ctx context.Context, requestID, responderID uuid.UUID, estimatedArrival time.Time) error

	// TransitionStatus moves the request from exactly the from status to the
	// to status, applying side-effect columns in the same transaction. It
	// returns the updated request and, for terminal transitions, the id of
	// the responder released back to available.
	TransitionStatus(ctx context.Context, requestID uuid.UUID, from, to models.RequestStatus) (*models.EmergencyRequest, *uuid.UUID, error)

	// ReleaseAssignment undoes an accepted assignment after a decline,
	// returning the request to pending and the responder to available.
	ReleaseAssignment(ctx context.Context, requestID, responderID uuid.UUID) error

	ListByStatuses(ctx context.Context, statuses []models.RequestStatus) ([]*models.EmergencyRequest, error)
}

// NotificationQueue is the per-responder offer mailbox. Drain is destructive
// and atomic: two concurrent drains never return the same entry.
type NotificationQueue interface {
	Push(ctx context.Context, responderID uuid.UUID, entry models.NotificationEntry) error
	Drain(ctx context.Context, responderID uuid.UUID) ([]models.NotificationEntry, error)
	Clear(ctx context.Context, responderID uuid.UUID) error
}
