package gateway

import (
	"context"

	"github.com/rescuelink/dispatch/internal/pkg/constants"
	"github.com/rescuelink/dispatch/internal/pkg/models"
	natspkg "github.com/rescuelink/dispatch/internal/pkg/nats"
	"github.com/rescuelink/dispatch/services/dispatch"
)

// dispatchGW publishes dispatch events to NATS
type dispatchGW struct {
	producer *natspkg.Producer
}

// NewDispatchGW creates a new NATS gateway instance
func NewDispatchGW(producer *natspkg.Producer) dispatch.DispatchGW {
	return &dispatchGW{
		producer: producer,
	}
}

// PublishAssigned publishes an assignment event to dispatch.assigned
func (g *dispatchGW) PublishAssigned(ctx context.Context, event models.AssignmentEvent) error {
	return g.producer.Publish(constants.SubjectDispatchAssigned, event)
}

// PublishRequestStatus publishes a status transition to request.status
func (g *dispatchGW) PublishRequestStatus(ctx context.Context, event models.RequestStatusEvent) error {
	return g.producer.Publish(constants.SubjectRequestStatus, event)
}
