package http

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rescuelink/dispatch/internal/utils"
	"github.com/rescuelink/dispatch/services/dispatch"
)

// writeError maps service errors to HTTP responses: validation failures are
// 400, unknown ids are 404, lost races are 409, lifecycle violations are 422,
// everything else is a 500.
func writeError(c echo.Context, err error) error {
	var transitionErr *dispatch.StateTransitionError
	switch {
	case dispatch.IsValidationError(err):
		return utils.BadRequestResponse(c, err.Error())
	case errors.Is(err, dispatch.ErrRequestNotFound),
		errors.Is(err, dispatch.ErrResponderNotFound):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, dispatch.ErrAssignmentConflict),
		errors.Is(err, dispatch.ErrOfferNotHeld):
		return utils.ConflictResponse(c, err.Error())
	case errors.As(err, &transitionErr):
		return utils.UnprocessableEntityResponse(c, err.Error())
	default:
		return utils.InternalServerErrorResponse(c, err.Error())
	}
}

// callerID extracts the authenticated user id set by the JWT middleware
func callerID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get("user_id").(uuid.UUID)
	return id, ok
}
