package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rescuelink/dispatch/internal/pkg/models"
	"github.com/rescuelink/dispatch/services/dispatch"
)

// fakeDirectory is an in-memory dispatch.ResponderDirectory.
type fakeDirectory struct {
	mu             sync.Mutex
	responders     map[uuid.UUID]*models.Responder
	candidates     []models.Candidate
	candidatesErr  error
	markedBusy     []uuid.UUID
	markedFree     []uuid.UUID
	locations      map[uuid.UUID]models.Location
	availabilities map[uuid.UUID]models.Availability
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		responders:     make(map[uuid.UUID]*models.Responder),
		locations:      make(map[uuid.UUID]models.Location),
		availabilities: make(map[uuid.UUID]models.Availability),
	}
}

func (f *fakeDirectory) GetResponder(_ context.Context, responderID uuid.UUID) (*models.Responder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	responder, ok := f.responders[responderID]
	if !ok {
		return nil, dispatch.ErrResponderNotFound
	}
	return responder, nil
}

func (f *fakeDirectory) UpdateLocation(_ context.Context, responderID uuid.UUID, location models.Location) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locations[responderID] = location
	return nil
}

func (f *fakeDirectory) SetAvailability(_ context.Context, responderID uuid.UUID, availability models.Availability) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.availabilities[responderID] = availability
	return nil
}

func (f *fakeDirectory) FindCandidates(_ context.Context, _ models.Location, _ models.ServiceType, _ float64, limit int) ([]models.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.candidatesErr != nil {
		return nil, f.candidatesErr
	}
	if limit > 0 && len(f.candidates) > limit {
		return f.candidates[:limit], nil
	}
	return f.candidates, nil
}

func (f *fakeDirectory) MarkBusy(_ context.Context, responderID uuid.UUID, _ models.ServiceType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedBusy = append(f.markedBusy, responderID)
	return nil
}

func (f *fakeDirectory) MarkAvailable(_ context.Context, responderID uuid.UUID, _ models.ServiceType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedFree = append(f.markedFree, responderID)
	return nil
}

// fakeStore is an in-memory dispatch.RequestStore with the same
// compare-and-set behavior the SQL implementation enforces.
type fakeStore struct {
	mu        sync.Mutex
	requests  map[uuid.UUID]*models.EmergencyRequest
	assignErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{requests: make(map[uuid.UUID]*models.EmergencyRequest)}
}

func (f *fakeStore) put(req *models.EmergencyRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[req.ID] = req
}

func (f *fakeStore) CreateRequest(_ context.Context, req *models.EmergencyRequest) (*models.EmergencyRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.Status = models.RequestStatusPending
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	f.requests[req.ID] = req
	return req, nil
}

func (f *fakeStore) GetRequest(_ context.Context, requestID uuid.UUID) (*models.EmergencyRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[requestID]
	if !ok {
		return nil, dispatch.ErrRequestNotFound
	}
	copied := *req
	return &copied, nil
}

func (f *fakeStore) UpdateRequestLocation(_ context.Context, requestID uuid.UUID, location models.Location) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[requestID]
	if !ok {
		return dispatch.ErrRequestNotFound
	}
	req.Location = location
	return nil
}

func (f *fakeStore) AssignAtomically(_ context.Context, requestID, responderID uuid.UUID, estimatedArrival time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.assignErr != nil {
		return f.assignErr
	}
	req, ok := f.requests[requestID]
	if !ok || req.Status != models.RequestStatusPending {
		return dispatch.ErrAssignmentConflict
	}
	req.Status = models.RequestStatusAccepted
	req.ResponderID = &responderID
	req.EstimatedArrivalAt = &estimatedArrival
	return nil
}

func (f *fakeStore) TransitionStatus(_ context.Context, requestID uuid.UUID, from, to models.RequestStatus) (*models.EmergencyRequest, *uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[requestID]
	if !ok {
		return nil, nil, dispatch.ErrRequestNotFound
	}
	if req.Status != from {
		return nil, nil, dispatch.ErrAssignmentConflict
	}
	now := time.Now()
	req.Status = to
	req.UpdatedAt = now
	if to == models.RequestStatusInProgress {
		req.ActualArrivalAt = &now
	}
	if to == models.RequestStatusCompleted {
		req.CompletedAt = &now
	}
	var released *uuid.UUID
	if to.Terminal() && req.ResponderID != nil {
		id := *req.ResponderID
		released = &id
	}
	copied := *req
	return &copied, released, nil
}

func (f *fakeStore) ReleaseAssignment(_ context.Context, requestID, responderID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[requestID]
	if !ok || req.Status != models.RequestStatusAccepted ||
		req.ResponderID == nil || *req.ResponderID != responderID {
		return dispatch.ErrOfferNotHeld
	}
	req.Status = models.RequestStatusPending
	req.ResponderID = nil
	req.EstimatedArrivalAt = nil
	return nil
}

func (f *fakeStore) ListByStatuses(_ context.Context, statuses []models.RequestStatus) ([]*models.EmergencyRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.EmergencyRequest
	for _, req := range f.requests {
		for _, status := range statuses {
			if req.Status == status {
				copied := *req
				out = append(out, &copied)
				break
			}
		}
	}
	return out, nil
}

// fakeQueue is an in-memory dispatch.NotificationQueue.
type fakeQueue struct {
	mu      sync.Mutex
	entries map[uuid.UUID][]models.NotificationEntry
	pushErr error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{entries: make(map[uuid.UUID][]models.NotificationEntry)}
}

func (f *fakeQueue) Push(_ context.Context, responderID uuid.UUID, entry models.NotificationEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return f.pushErr
	}
	f.entries[responderID] = append(f.entries[responderID], entry)
	return nil
}

func (f *fakeQueue) Drain(_ context.Context, responderID uuid.UUID) ([]models.NotificationEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := f.entries[responderID]
	delete(f.entries, responderID)
	return entries, nil
}

func (f *fakeQueue) Clear(_ context.Context, responderID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, responderID)
	return nil
}

func (f *fakeQueue) pending(responderID uuid.UUID) []models.NotificationEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[responderID]
}

// fakeGateway records published events.
type fakeGateway struct {
	mu           sync.Mutex
	assigned     []models.AssignmentEvent
	statusEvents []models.RequestStatusEvent
	publishErr   error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{}
}

func (f *fakeGateway) PublishAssigned(_ context.Context, event models.AssignmentEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.assigned = append(f.assigned, event)
	return nil
}

func (f *fakeGateway) PublishRequestStatus(_ context.Context, event models.RequestStatusEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.statusEvents = append(f.statusEvents, event)
	return nil
}

// fakeTransport simulates a live push channel.
type fakeTransport struct {
	mu        sync.Mutex
	connected bool
	delivered []models.NotificationEntry
}

func (f *fakeTransport) DeliverOffer(_ uuid.UUID, entry models.NotificationEntry) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return false
	}
	f.delivered = append(f.delivered, entry)
	return true
}

func testConfig() *models.Config {
	return &models.Config{
		Dispatch: models.DispatchConfig{
			SearchRadiusKm:       5.0,
			BroadcastRadiusKm:    10.0,
			AvgSpeedKmh:          30.0,
			OfferTimeoutSeconds:  15,
			RetryIntervalSeconds: 30,
			DefaultLongitude:     67.0011,
			DefaultLatitude:      24.8607,
		},
	}
}

func pendingRequest(serviceType models.ServiceType) *models.EmergencyRequest {
	return &models.EmergencyRequest{
		ID:          uuid.New(),
		RequesterID: uuid.New(),
		ServiceType: serviceType,
		Location:    models.Location{Longitude: 67.0011, Latitude: 24.8607},
		Status:      models.RequestStatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}
