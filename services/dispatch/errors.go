package dispatch

import (
	"errors"
	"fmt"

	"github.com/rescuelink/dispatch/internal/pkg/models"
)

// Sentinel errors returned by the dispatch service. Handlers map these to
// HTTP status codes; everything else surfaces as an internal error.
var (
	ErrMissingServiceType  = errors.New("service type is required")
	ErrInvalidServiceType  = errors.New("invalid service type")
	ErrMissingRequester    = errors.New("requester id is required")
	ErrInvalidLocation     = errors.New("invalid location")
	ErrInvalidAvailability = errors.New("invalid availability")

	ErrRequestNotFound   = errors.New("emergency request not found")
	ErrResponderNotFound = errors.New("responder not found")

	// ErrAssignmentConflict means the request or the responder was claimed by
	// a concurrent operation between candidate selection and commit.
	ErrAssignmentConflict = errors.New("assignment conflict")

	// ErrOfferNotHeld means a decline referenced an assignment the responder
	// does not currently hold.
	ErrOfferNotHeld = errors.New("offer not held by responder")
)

// StateTransitionError reports a status transition outside the allowed
// lifecycle graph.
type StateTransitionError struct {
	From models.RequestStatus
	To   models.RequestStatus
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// IsValidationError reports whether the error is a request validation
// failure, as opposed to a lookup or conflict failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingServiceType) ||
		errors.Is(err, ErrInvalidServiceType) ||
		errors.Is(err, ErrMissingRequester) ||
		errors.Is(err, ErrInvalidLocation) ||
		errors.Is(err, ErrInvalidAvailability)
}
