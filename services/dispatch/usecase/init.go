package usecase

import (
	"github.com/rescuelink/dispatch/internal/pkg/models"
	"github.com/rescuelink/dispatch/services/dispatch"
)

// DispatchUC implements the dispatch use case interface
type DispatchUC struct {
	cfg           *models.Config
	responderRepo dispatch.ResponderDirectory
	requestRepo   dispatch.RequestStore
	notifyQueue   dispatch.NotificationQueue
	dispatchGW    dispatch.DispatchGW
	transport     dispatch.OfferTransport
}

// NewDispatchUC creates a new dispatch use case. transport may be nil, in
// which case offers are delivered through the poll mailbox only.
func NewDispatchUC(
	cfg *models.Config,
	responderRepo dispatch.ResponderDirectory,
	requestRepo dispatch.RequestStore,
	notifyQueue dispatch.NotificationQueue,
	dispatchGW dispatch.DispatchGW,
	transport dispatch.OfferTransport,
) *DispatchUC {
	return &DispatchUC{
		cfg:           cfg,
		responderRepo: responderRepo,
		requestRepo:   requestRepo,
		notifyQueue:   notifyQueue,
		dispatchGW:    dispatchGW,
		transport:     transport,
	}
}
