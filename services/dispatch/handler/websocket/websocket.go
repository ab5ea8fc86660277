package websocket

import (
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rescuelink/dispatch/internal/pkg/constants"
	"github.com/rescuelink/dispatch/internal/pkg/logger"
	"github.com/rescuelink/dispatch/internal/pkg/models"
	wsmanager "github.com/rescuelink/dispatch/internal/pkg/websocket"
)

// WebSocketHandler keeps responder connections registered for offer push.
// It implements the dispatch OfferTransport interface.
type WebSocketHandler struct {
	manager *wsmanager.Manager
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(manager *wsmanager.Manager) *WebSocketHandler {
	return &WebSocketHandler{manager: manager}
}

// HandleConnection handles GET /ws. The connection stays open until the
// client disconnects; inbound frames are read only to detect closure.
func (h *WebSocketHandler) HandleConnection(c echo.Context) error {
	return h.manager.HandleConnection(c, func(client *models.WebSocketClient, conn *ws.Conn) error {
		logger.Info("Responder connected",
			logger.String("responder_id", client.UserID))
		defer logger.Info("Responder disconnected",
			logger.String("responder_id", client.UserID))

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return nil
			}
		}
	})
}

// DeliverOffer pushes an assignment offer to a connected responder. False
// means the responder is not connected and the caller should use the poll
// mailbox instead.
func (h *WebSocketHandler) DeliverOffer(responderID uuid.UUID, entry models.NotificationEntry) bool {
	return h.manager.NotifyResponder(responderID.String(), constants.EventAssignmentOffer, entry)
}
