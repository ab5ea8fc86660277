package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/rescuelink/dispatch/internal/pkg/middleware"
	"github.com/rescuelink/dispatch/internal/pkg/models"
	natspkg "github.com/rescuelink/dispatch/internal/pkg/nats"
	wsmanager "github.com/rescuelink/dispatch/internal/pkg/websocket"
	"github.com/rescuelink/dispatch/services/dispatch"
	httpHandler "github.com/rescuelink/dispatch/services/dispatch/handler/http"
	natsHandler "github.com/rescuelink/dispatch/services/dispatch/handler/nats"
	wsHandler "github.com/rescuelink/dispatch/services/dispatch/handler/websocket"
)

// Handler combines all handlers for the dispatch service
type Handler struct {
	cfg           *models.Config
	requests      *httpHandler.RequestHandler
	responders    *httpHandler.ResponderHandler
	notifications *httpHandler.NotificationHandler
	ws            *wsHandler.WebSocketHandler
	dispatchNATS  *natsHandler.DispatchHandler
}

// NewHandler creates a new combined handler. wsManager may be nil when the
// deployment runs poll-only transport.
func NewHandler(
	cfg *models.Config,
	dispatchUC dispatch.DispatchUC,
	natsClient *natspkg.Client,
	wsManager *wsmanager.Manager,
) *Handler {
	h := &Handler{
		cfg:           cfg,
		requests:      httpHandler.NewRequestHandler(dispatchUC, cfg),
		responders:    httpHandler.NewResponderHandler(dispatchUC),
		notifications: httpHandler.NewNotificationHandler(dispatchUC),
		dispatchNATS:  natsHandler.NewDispatchHandler(dispatchUC, natsClient),
	}
	if wsManager != nil {
		h.ws = wsHandler.NewWebSocketHandler(wsManager)
	}
	return h
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	authenticated := e.Group("", middleware.JWTAuthMiddleware(h.cfg.JWT))

	requestGroup := authenticated.Group("/requests")
	requestGroup.POST("", h.requests.SubmitRequest)
	requestGroup.GET("/:id", h.requests.GetRequest)
	requestGroup.POST("/:id/dispatch", h.requests.DispatchRequest)
	requestGroup.PUT("/:id/status", h.requests.UpdateStatus)

	// Responder-facing endpoints additionally require the responder role
	responderGroup := authenticated.Group("/responders", middleware.RequireRole(models.RoleResponder))
	responderGroup.PUT("/location", h.responders.UpdateLocation)
	responderGroup.PUT("/availability", h.responders.SetAvailability)

	notificationGroup := authenticated.Group("/notifications", middleware.RequireRole(models.RoleResponder))
	notificationGroup.GET("", h.notifications.DrainNotifications)
	notificationGroup.POST("/:requestID/decline", h.notifications.DeclineOffer)

	// WebSocket auth happens inside the manager during the upgrade handshake
	if h.ws != nil {
		e.GET("/ws", h.ws.HandleConnection)
	}
}

// InitNATSConsumers initializes all NATS consumers
func (h *Handler) InitNATSConsumers() error {
	return h.dispatchNATS.InitNATSConsumers()
}

// StopNATSConsumers unsubscribes all NATS consumers
func (h *Handler) StopNATSConsumers() {
	h.dispatchNATS.Stop()
}
