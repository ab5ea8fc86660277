package nats

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rescuelink/dispatch/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatchUC struct {
	updatedID       uuid.UUID
	updatedLocation interface{}
	calls           int
}

func (f *fakeDispatchUC) SubmitRequest(ctx context.Context, req *models.EmergencyRequest) (*models.EmergencyRequest, error) {
	return req, nil
}

func (f *fakeDispatchUC) GetRequest(ctx context.Context, requestID uuid.UUID) (*models.EmergencyRequest, error) {
	return nil, nil
}

func (f *fakeDispatchUC) Dispatch(ctx context.Context, requestID uuid.UUID) (*models.DispatchOutcome, error) {
	return nil, nil
}

func (f *fakeDispatchUC) BroadcastNearby(ctx context.Context, requestID uuid.UUID) (int, error) {
	return 0, nil
}

func (f *fakeDispatchUC) ApplyStatus(ctx context.Context, requestID uuid.UUID, status models.RequestStatus) (*models.EmergencyRequest, error) {
	return nil, nil
}

func (f *fakeDispatchUC) DrainNotifications(ctx context.Context, responderID uuid.UUID) ([]models.NotificationEntry, error) {
	return nil, nil
}

func (f *fakeDispatchUC) DeclineOffer(ctx context.Context, requestID, responderID uuid.UUID) error {
	return nil
}

func (f *fakeDispatchUC) UpdateResponderLocation(ctx context.Context, responderID uuid.UUID, location interface{}) (*models.Location, error) {
	f.calls++
	f.updatedID = responderID
	f.updatedLocation = location
	return &models.Location{}, nil
}

func (f *fakeDispatchUC) SetResponderAvailability(ctx context.Context, responderID uuid.UUID, availability models.Availability) error {
	return nil
}

func TestHandleLocationUpdateAppliesPing(t *testing.T) {
	uc := &fakeDispatchUC{}
	h := NewDispatchHandler(uc, nil)

	responderID := uuid.New()
	payload, err := json.Marshal(models.LocationUpdate{
		ResponderID: responderID.String(),
		Location:    "67.0011,24.8607",
	})
	require.NoError(t, err)

	require.NoError(t, h.handleLocationUpdate(payload))
	assert.Equal(t, 1, uc.calls)
	assert.Equal(t, responderID, uc.updatedID)
	assert.Equal(t, "67.0011,24.8607", uc.updatedLocation)
}

func TestHandleLocationUpdateRejectsMalformedPayload(t *testing.T) {
	uc := &fakeDispatchUC{}
	h := NewDispatchHandler(uc, nil)

	assert.Error(t, h.handleLocationUpdate([]byte("{not json")))
	assert.Zero(t, uc.calls)
}

func TestHandleLocationUpdateRejectsBadResponderID(t *testing.T) {
	uc := &fakeDispatchUC{}
	h := NewDispatchHandler(uc, nil)

	payload, err := json.Marshal(models.LocationUpdate{
		ResponderID: "not-a-uuid",
		Location:    "67.0011,24.8607",
	})
	require.NoError(t, err)

	assert.Error(t, h.handleLocationUpdate(payload))
	assert.Zero(t, uc.calls)
}
