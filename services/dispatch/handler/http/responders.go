package http

import (
	nethttp "net/http"

	"github.com/labstack/echo/v4"
	"github.com/rescuelink/dispatch/internal/pkg/models"
	"github.com/rescuelink/dispatch/internal/utils"
	"github.com/rescuelink/dispatch/services/dispatch"
)

// ResponderHandler handles HTTP requests for responder operations
type ResponderHandler struct {
	dispatchUC dispatch.DispatchUC
}

// NewResponderHandler creates a new responder HTTP handler
func NewResponderHandler(dispatchUC dispatch.DispatchUC) *ResponderHandler {
	return &ResponderHandler{
		dispatchUC: dispatchUC,
	}
}

// UpdateLocationBody is the request structure for location pings
type UpdateLocationBody struct {
	Location interface{} `json:"location"`
}

// UpdateLocation handles PUT /responders/location
func (h *ResponderHandler) UpdateLocation(c echo.Context) error {
	responderID, ok := callerID(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	var body UpdateLocationBody
	if err := c.Bind(&body); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	stored, err := h.dispatchUC.UpdateResponderLocation(c.Request().Context(), responderID, body.Location)
	if err != nil {
		return writeError(c, err)
	}

	return utils.SuccessResponse(c, nethttp.StatusOK, "Location updated", stored)
}

// SetAvailabilityBody is the request structure for availability changes
type SetAvailabilityBody struct {
	Availability models.Availability `json:"availability"`
}

// SetAvailability handles PUT /responders/availability
func (h *ResponderHandler) SetAvailability(c echo.Context) error {
	responderID, ok := callerID(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	var body SetAvailabilityBody
	if err := c.Bind(&body); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	if err := h.dispatchUC.SetResponderAvailability(c.Request().Context(), responderID, body.Availability); err != nil {
		return writeError(c, err)
	}

	return utils.SuccessResponse(c, nethttp.StatusOK, "Availability updated", echo.Map{
		"responder_id": responderID,
		"availability": body.Availability,
	})
}
