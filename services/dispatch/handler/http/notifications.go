package http

import (
	nethttp "net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rescuelink/dispatch/internal/pkg/models"
	"github.com/rescuelink/dispatch/internal/utils"
	"github.com/rescuelink/dispatch/services/dispatch"
)

// NotificationHandler handles HTTP requests for the offer mailbox
type NotificationHandler struct {
	dispatchUC dispatch.DispatchUC
}

// NewNotificationHandler creates a new notification HTTP handler
func NewNotificationHandler(dispatchUC dispatch.DispatchUC) *NotificationHandler {
	return &NotificationHandler{
		dispatchUC: dispatchUC,
	}
}

// DrainNotifications handles GET /notifications. The drain is destructive:
// entries returned here are gone, so the client must act on them.
func (h *NotificationHandler) DrainNotifications(c echo.Context) error {
	responderID, ok := callerID(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	entries, err := h.dispatchUC.DrainNotifications(c.Request().Context(), responderID)
	if err != nil {
		return writeError(c, err)
	}
	if entries == nil {
		entries = []models.NotificationEntry{}
	}

	return utils.SuccessResponse(c, nethttp.StatusOK, "", entries)
}

// DeclineOffer handles POST /notifications/:requestID/decline
func (h *NotificationHandler) DeclineOffer(c echo.Context) error {
	responderID, ok := callerID(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	requestID, err := uuid.Parse(c.Param("requestID"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid request ID")
	}

	if err := h.dispatchUC.DeclineOffer(c.Request().Context(), requestID, responderID); err != nil {
		return writeError(c, err)
	}

	return utils.SuccessResponse(c, nethttp.StatusOK, "Offer declined", nil)
}
