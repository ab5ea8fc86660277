package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rescuelink/dispatch/internal/pkg/constants"
	"github.com/rescuelink/dispatch/internal/pkg/models"
	natspkg "github.com/rescuelink/dispatch/internal/pkg/nats"
	"github.com/rescuelink/dispatch/services/dispatch"
)

// DispatchHandler handles NATS subscriptions for the dispatch service
type DispatchHandler struct {
	dispatchUC dispatch.DispatchUC
	natsClient *natspkg.Client
	consumers  []*natspkg.Consumer
}

// NewDispatchHandler creates a new dispatch NATS handler
func NewDispatchHandler(dispatchUC dispatch.DispatchUC, client *natspkg.Client) *DispatchHandler {
	return &DispatchHandler{
		dispatchUC: dispatchUC,
		natsClient: client,
		consumers:  make([]*natspkg.Consumer, 0),
	}
}

// InitNATSConsumers initializes all NATS consumers for the dispatch service
func (h *DispatchHandler) InitNATSConsumers() error {
	consumer, err := natspkg.NewConsumerFromClient(
		h.natsClient,
		constants.SubjectResponderLocation,
		constants.QueueGroupDispatch,
		h.handleLocationUpdate,
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to responder location events: %w", err)
	}
	h.consumers = append(h.consumers, consumer)

	return nil
}

// handleLocationUpdate applies a responder location ping from the bus
func (h *DispatchHandler) handleLocationUpdate(data []byte) error {
	var update models.LocationUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		return fmt.Errorf("failed to unmarshal location update: %w", err)
	}

	responderID, err := uuid.Parse(update.ResponderID)
	if err != nil {
		return fmt.Errorf("invalid responder id %q: %w", update.ResponderID, err)
	}

	_, err = h.dispatchUC.UpdateResponderLocation(context.Background(), responderID, update.Location)
	return err
}

// Stop unsubscribes all consumers
func (h *DispatchHandler) Stop() {
	for _, consumer := range h.consumers {
		consumer.Stop()
	}
	h.consumers = nil
}
