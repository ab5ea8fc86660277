package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rescuelink/dispatch/internal/pkg/models"
	"github.com/rescuelink/dispatch/services/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRequestValidation(t *testing.T) {
	uc := NewDispatchUC(testConfig(), newFakeDirectory(), newFakeStore(), newFakeQueue(), newFakeGateway(), nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     *models.EmergencyRequest
		wantErr error
	}{
		{
			name:    "missing service type",
			req:     &models.EmergencyRequest{RequesterID: uuid.New()},
			wantErr: dispatch.ErrMissingServiceType,
		},
		{
			name:    "unknown service type",
			req:     &models.EmergencyRequest{RequesterID: uuid.New(), ServiceType: "plumbing"},
			wantErr: dispatch.ErrInvalidServiceType,
		},
		{
			name:    "missing requester",
			req:     &models.EmergencyRequest{ServiceType: models.ServiceTypeAmbulance},
			wantErr: dispatch.ErrMissingRequester,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.SubmitRequest(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, dispatch.IsValidationError(err))
		})
	}
}

func TestSubmitRequestRepairsSwappedCoordinates(t *testing.T) {
	store := newFakeStore()
	uc := NewDispatchUC(testConfig(), newFakeDirectory(), store, newFakeQueue(), newFakeGateway(), nil)

	created, err := uc.SubmitRequest(context.Background(), &models.EmergencyRequest{
		RequesterID: uuid.New(),
		ServiceType: models.ServiceTypeFire,
		Location:    models.Location{Longitude: 24.8607, Latitude: 67.0011},
	})
	require.NoError(t, err)

	assert.Equal(t, 67.0011, created.Location.Longitude)
	assert.Equal(t, 24.8607, created.Location.Latitude)
	assert.Equal(t, models.RequestStatusPending, created.Status)
}

func TestDispatchAssignsNearestCandidate(t *testing.T) {
	directory := newFakeDirectory()
	store := newFakeStore()
	queue := newFakeQueue()
	gateway := newFakeGateway()
	uc := NewDispatchUC(testConfig(), directory, store, queue, gateway, nil)

	req := pendingRequest(models.ServiceTypeAmbulance)
	store.put(req)

	nearest := uuid.New()
	farther := uuid.New()
	directory.candidates = []models.Candidate{
		{ID: nearest, DistanceKm: 0.6},
		{ID: farther, DistanceKm: 4.8},
	}

	outcome, err := uc.Dispatch(context.Background(), req.ID)
	require.NoError(t, err)

	assert.Equal(t, models.DispatchReasonAssigned, outcome.Reason)
	require.NotNil(t, outcome.ResponderID)
	assert.Equal(t, nearest, *outcome.ResponderID)
	assert.Equal(t, 0.6, outcome.DistanceKm)
	// 0.6 km at 30 km/h rounds up to 2 minutes
	assert.Equal(t, "2 minutes", outcome.ETA)

	stored, err := store.GetRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, stored.Status)
	require.NotNil(t, stored.ResponderID)
	assert.Equal(t, nearest, *stored.ResponderID)
	assert.NotNil(t, stored.EstimatedArrivalAt)

	assert.Equal(t, []uuid.UUID{nearest}, directory.markedBusy)

	offers := queue.pending(nearest)
	require.Len(t, offers, 1)
	assert.Equal(t, req.ID, offers[0].RequestID)
	assert.Equal(t, 15, offers[0].TimeoutSeconds)

	require.Len(t, gateway.assigned, 1)
	assert.Equal(t, req.ID, gateway.assigned[0].RequestID)
	assert.Equal(t, nearest, gateway.assigned[0].ResponderID)
}

func TestDispatchNoCandidateInRange(t *testing.T) {
	directory := newFakeDirectory()
	store := newFakeStore()
	gateway := newFakeGateway()
	uc := NewDispatchUC(testConfig(), directory, store, newFakeQueue(), gateway, nil)

	req := pendingRequest(models.ServiceTypePolice)
	store.put(req)

	outcome, err := uc.Dispatch(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DispatchReasonNoCandidate, outcome.Reason)
	assert.Nil(t, outcome.ResponderID)

	// Request stays pending for the retry job
	stored, err := store.GetRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, stored.Status)
	assert.Empty(t, gateway.assigned)
}

func TestDispatchAssignmentConflictIsAnOutcome(t *testing.T) {
	directory := newFakeDirectory()
	store := newFakeStore()
	uc := NewDispatchUC(testConfig(), directory, store, newFakeQueue(), newFakeGateway(), nil)

	req := pendingRequest(models.ServiceTypeAmbulance)
	store.put(req)
	store.assignErr = dispatch.ErrAssignmentConflict
	directory.candidates = []models.Candidate{{ID: uuid.New(), DistanceKm: 1.0}}

	outcome, err := uc.Dispatch(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DispatchReasonConflict, outcome.Reason)
	assert.Nil(t, outcome.ResponderID)
	assert.Empty(t, directory.markedBusy)
}

func TestDispatchNonPendingRequestFails(t *testing.T) {
	store := newFakeStore()
	uc := NewDispatchUC(testConfig(), newFakeDirectory(), store, newFakeQueue(), newFakeGateway(), nil)

	req := pendingRequest(models.ServiceTypeAmbulance)
	req.Status = models.RequestStatusAccepted
	store.put(req)

	_, err := uc.Dispatch(context.Background(), req.ID)
	assert.ErrorIs(t, err, dispatch.ErrAssignmentConflict)
}

func TestDispatchUnknownRequest(t *testing.T) {
	uc := NewDispatchUC(testConfig(), newFakeDirectory(), newFakeStore(), newFakeQueue(), newFakeGateway(), nil)

	_, err := uc.Dispatch(context.Background(), uuid.New())
	assert.ErrorIs(t, err, dispatch.ErrRequestNotFound)
}

func TestDispatchRepairsStoredLocationBeforeMatching(t *testing.T) {
	directory := newFakeDirectory()
	store := newFakeStore()
	uc := NewDispatchUC(testConfig(), directory, store, newFakeQueue(), newFakeGateway(), nil)

	req := pendingRequest(models.ServiceTypeFire)
	req.Location = models.Location{Longitude: 24.8607, Latitude: 67.0011}
	store.put(req)

	_, err := uc.Dispatch(context.Background(), req.ID)
	require.NoError(t, err)

	stored, err := store.GetRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, 67.0011, stored.Location.Longitude)
	assert.Equal(t, 24.8607, stored.Location.Latitude)
}

func TestDispatchConcurrentAttemptsAssignOnce(t *testing.T) {
	directory := newFakeDirectory()
	store := newFakeStore()
	queue := newFakeQueue()
	uc := NewDispatchUC(testConfig(), directory, store, queue, newFakeGateway(), nil)

	req := pendingRequest(models.ServiceTypeAmbulance)
	store.put(req)

	responderID := uuid.New()
	directory.candidates = []models.Candidate{{ID: responderID, DistanceKm: 1.5}}

	const attempts = 8
	var wg sync.WaitGroup
	outcomes := make([]*models.DispatchOutcome, attempts)
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = uc.Dispatch(context.Background(), req.ID)
		}(i)
	}
	wg.Wait()

	assigned := 0
	for i := 0; i < attempts; i++ {
		if errs[i] != nil {
			// Attempts that read the request after the winner committed
			assert.ErrorIs(t, errs[i], dispatch.ErrAssignmentConflict)
			continue
		}
		if outcomes[i].Reason == models.DispatchReasonAssigned {
			assigned++
		} else {
			assert.Equal(t, models.DispatchReasonConflict, outcomes[i].Reason)
		}
	}
	assert.Equal(t, 1, assigned)
	assert.Len(t, queue.pending(responderID), 1)
}

func TestDispatchPushTransportSkipsMailbox(t *testing.T) {
	directory := newFakeDirectory()
	store := newFakeStore()
	queue := newFakeQueue()
	transport := &fakeTransport{connected: true}
	uc := NewDispatchUC(testConfig(), directory, store, queue, newFakeGateway(), transport)

	req := pendingRequest(models.ServiceTypeAmbulance)
	store.put(req)

	responderID := uuid.New()
	directory.candidates = []models.Candidate{{ID: responderID, DistanceKm: 2.0}}

	outcome, err := uc.Dispatch(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DispatchReasonAssigned, outcome.Reason)

	require.Len(t, transport.delivered, 1)
	assert.Equal(t, req.ID, transport.delivered[0].RequestID)
	assert.Empty(t, queue.pending(responderID))
}

func TestDispatchPushTransportFallsBackWhenDisconnected(t *testing.T) {
	directory := newFakeDirectory()
	store := newFakeStore()
	queue := newFakeQueue()
	transport := &fakeTransport{connected: false}
	uc := NewDispatchUC(testConfig(), directory, store, queue, newFakeGateway(), transport)

	req := pendingRequest(models.ServiceTypeAmbulance)
	store.put(req)

	responderID := uuid.New()
	directory.candidates = []models.Candidate{{ID: responderID, DistanceKm: 2.0}}

	_, err := uc.Dispatch(context.Background(), req.ID)
	require.NoError(t, err)

	assert.Empty(t, transport.delivered)
	assert.Len(t, queue.pending(responderID), 1)
}

func TestBroadcastNearbyNotifiesEveryCandidate(t *testing.T) {
	directory := newFakeDirectory()
	store := newFakeStore()
	queue := newFakeQueue()
	uc := NewDispatchUC(testConfig(), directory, store, queue, newFakeGateway(), nil)

	req := pendingRequest(models.ServiceTypeAmbulance)
	store.put(req)

	first := uuid.New()
	second := uuid.New()
	directory.candidates = []models.Candidate{
		{ID: first, DistanceKm: 6.5},
		{ID: second, DistanceKm: 9.1},
	}

	count, err := uc.BroadcastNearby(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	firstEntries := queue.pending(first)
	require.Len(t, firstEntries, 1)
	assert.Equal(t, req.ID, firstEntries[0].RequestID)
	assert.Equal(t, 6.5, firstEntries[0].DistanceKm)

	require.Len(t, queue.pending(second), 1)

	// Nobody was assigned
	stored, err := store.GetRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, stored.Status)
	assert.Nil(t, stored.ResponderID)
}

func TestBroadcastNearbySkipsNonPendingRequests(t *testing.T) {
	directory := newFakeDirectory()
	store := newFakeStore()
	queue := newFakeQueue()
	uc := NewDispatchUC(testConfig(), directory, store, queue, newFakeGateway(), nil)

	responderID := uuid.New()
	req := pendingRequest(models.ServiceTypeAmbulance)
	req.Status = models.RequestStatusAccepted
	req.ResponderID = &responderID
	store.put(req)

	directory.candidates = []models.Candidate{{ID: uuid.New(), DistanceKm: 7.0}}

	count, err := uc.BroadcastNearby(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDispatchPropagatesCandidateLookupError(t *testing.T) {
	directory := newFakeDirectory()
	store := newFakeStore()
	uc := NewDispatchUC(testConfig(), directory, store, newFakeQueue(), newFakeGateway(), nil)

	req := pendingRequest(models.ServiceTypeAmbulance)
	store.put(req)
	directory.candidatesErr = errors.New("redis unavailable")

	_, err := uc.Dispatch(context.Background(), req.ID)
	assert.EqualError(t, err, "redis unavailable")
}
