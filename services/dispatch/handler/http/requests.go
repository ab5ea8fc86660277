package http

import (
	nethttp "net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rescuelink/dispatch/internal/pkg/logger"
	"github.com/rescuelink/dispatch/internal/pkg/models"
	"github.com/rescuelink/dispatch/internal/utils"
	"github.com/rescuelink/dispatch/services/dispatch"
)

// RequestHandler handles HTTP requests for emergency request operations
type RequestHandler struct {
	dispatchUC dispatch.DispatchUC
	cfg        *models.Config
}

// NewRequestHandler creates a new request HTTP handler
func NewRequestHandler(dispatchUC dispatch.DispatchUC, cfg *models.Config) *RequestHandler {
	return &RequestHandler{
		dispatchUC: dispatchUC,
		cfg:        cfg,
	}
}

// SubmitRequestBody is the request structure for submitting an emergency
// request. Location accepts a "lon,lat" string, a [lon, lat] array, or an
// object with longitude/latitude keys.
type SubmitRequestBody struct {
	ServiceType models.ServiceType `json:"service_type"`
	Location    interface{}        `json:"location"`
	Address     string             `json:"address"`
	Description string             `json:"description"`
}

// SubmitRequest handles POST /requests
func (h *RequestHandler) SubmitRequest(c echo.Context) error {
	requesterID, ok := callerID(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	var body SubmitRequestBody
	if err := c.Bind(&body); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	lon, lat, err := utils.ParseCoordinate(body.Location)
	if err != nil {
		logger.WarnCtx(c.Request().Context(), "Unparseable request location, using default coordinates",
			logger.String("requester_id", requesterID.String()),
			logger.Err(err))
		lon = h.cfg.Dispatch.DefaultLongitude
		lat = h.cfg.Dispatch.DefaultLatitude
	}

	req := &models.EmergencyRequest{
		RequesterID: requesterID,
		ServiceType: body.ServiceType,
		Location: models.Location{
			Longitude: lon,
			Latitude:  lat,
			Address:   body.Address,
		},
		Address:     body.Address,
		Description: body.Description,
	}

	created, err := h.dispatchUC.SubmitRequest(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	// First matching attempt runs inline. No candidate in range is silent:
	// the request stays pending, nearby responders get a broadcast notice,
	// and the retry job picks it up.
	outcome, err := h.dispatchUC.Dispatch(c.Request().Context(), created.ID)
	switch {
	case err != nil:
		logger.WarnCtx(c.Request().Context(), "Initial dispatch attempt failed",
			logger.String("request_id", created.ID.String()),
			logger.Err(err))
	case outcome.Reason == models.DispatchReasonAssigned:
		if refreshed, err := h.dispatchUC.GetRequest(c.Request().Context(), created.ID); err == nil {
			created = refreshed
		}
	case outcome.Reason == models.DispatchReasonNoCandidate:
		if _, err := h.dispatchUC.BroadcastNearby(c.Request().Context(), created.ID); err != nil {
			logger.WarnCtx(c.Request().Context(), "Broadcast to nearby responders failed",
				logger.String("request_id", created.ID.String()),
				logger.Err(err))
		}
	}

	return utils.SuccessResponse(c, nethttp.StatusCreated, "Emergency request submitted", created)
}

// GetRequest handles GET /requests/:id
func (h *RequestHandler) GetRequest(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid request ID")
	}

	req, err := h.dispatchUC.GetRequest(c.Request().Context(), requestID)
	if err != nil {
		return writeError(c, err)
	}

	return utils.SuccessResponse(c, nethttp.StatusOK, "", req)
}

// DispatchRequest handles POST /requests/:id/dispatch
func (h *RequestHandler) DispatchRequest(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid request ID")
	}

	outcome, err := h.dispatchUC.Dispatch(c.Request().Context(), requestID)
	if err != nil {
		return writeError(c, err)
	}

	return utils.SuccessResponse(c, nethttp.StatusOK, "Dispatch attempt completed", outcome)
}

// UpdateStatusBody is the request structure for status transitions
type UpdateStatusBody struct {
	Status models.RequestStatus `json:"status"`
}

// UpdateStatus handles PUT /requests/:id/status
func (h *RequestHandler) UpdateStatus(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid request ID")
	}

	var body UpdateStatusBody
	if err := c.Bind(&body); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}
	if body.Status == "" {
		return utils.BadRequestResponse(c, "Status is required")
	}

	updated, err := h.dispatchUC.ApplyStatus(c.Request().Context(), requestID, body.Status)
	if err != nil {
		return writeError(c, err)
	}

	return utils.SuccessResponse(c, nethttp.StatusOK, "Status updated", updated)
}
