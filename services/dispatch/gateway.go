package dispatch

import (
	"context"

	"github.com/rescuelink/dispatch/internal/pkg/models"
)

// DispatchGW defines the dispatch gateway interface for publishing events
type DispatchGW interface {
	PublishAssigned(ctx context.Context, event models.AssignmentEvent) error
	PublishRequestStatus(ctx context.Context, event models.RequestStatusEvent) error
}
