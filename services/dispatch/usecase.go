package dispatch

import (
	"context"

	"github.com/google/uuid"
	"github.com/rescuelink/dispatch/internal/pkg/models"
)

// DispatchUC defines the dispatch service business logic
type DispatchUC interface {
	SubmitRequest(ctx context.Context, req *models.EmergencyRequest) (*models.EmergencyRequest, error)
	GetRequest(ctx context.Context, requestID uuid.UUID) (*models.EmergencyRequest, error)

	// Dispatch runs one matching attempt for a pending request. A nil error
	// with a no_candidate or conflict outcome means the attempt ran but no
	// assignment was committed.
	Dispatch(ctx context.Context, requestID uuid.UUID) (*models.DispatchOutcome, error)

	// BroadcastNearby pushes an advisory notice about a still-pending request
	// to every available responder inside the wider broadcast radius. It
	// returns the number of responders notified.
	BroadcastNearby(ctx context.Context, requestID uuid.UUID) (int, error)

	ApplyStatus(ctx context.Context, requestID uuid.UUID, status models.RequestStatus) (*models.EmergencyRequest, error)

	DrainNotifications(ctx context.Context, responderID uuid.UUID) ([]models.NotificationEntry, error)
	DeclineOffer(ctx context.Context, requestID, responderID uuid.UUID) error

	UpdateResponderLocation(ctx context.Context, responderID uuid.UUID, location interface{}) (*models.Location, error)
	SetResponderAvailability(ctx context.Context, responderID uuid.UUID, availability models.Availability) error
}

// OfferTransport attempts real-time delivery of an assignment offer. It
// reports whether the offer reached a live connection; on false the caller
// falls back to the poll mailbox.
type OfferTransport interface {
	DeliverOffer(responderID uuid.UUID, entry models.NotificationEntry) bool
}
