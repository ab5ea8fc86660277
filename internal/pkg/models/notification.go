package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationEntry is an assignment offer waiting in a responder's mailbox.
// Entries are ephemeral: drained once by a poll, or pushed once over a live
// channel. TimeoutSeconds is advisory to the responder-side countdown.
type NotificationEntry struct {
	RequestID      uuid.UUID   `json:"request_id"`
	ServiceType    ServiceType `json:"service_type"`
	Location       Location    `json:"location"`
	Address        string      `json:"address,omitempty"`
	Description    string      `json:"description,omitempty"`
	DistanceKm     float64     `json:"distance_km"`
	ETA            string      `json:"eta"`
	TimeoutSeconds int         `json:"timeout_seconds"`
	CreatedAt      time.Time   `json:"created_at"`
}

// DispatchReason explains a dispatch outcome.
type DispatchReason string

const (
	DispatchReasonAssigned    DispatchReason = "assigned"
	DispatchReasonNoCandidate DispatchReason = "no_candidate"
	DispatchReasonConflict    DispatchReason = "conflict"
)

// DispatchOutcome is the result of a single dispatch attempt.
type DispatchOutcome struct {
	ResponderID *uuid.UUID     `json:"responder_id,omitempty"`
	Reason      DispatchReason `json:"reason"`
	DistanceKm  float64        `json:"distance_km,omitempty"`
	ETA         string         `json:"eta,omitempty"`
}

// AssignmentEvent is published on dispatch.assigned after a successful
// atomic assignment.
type AssignmentEvent struct {
	RequestID   uuid.UUID   `json:"request_id"`
	ResponderID uuid.UUID   `json:"responder_id"`
	ServiceType ServiceType `json:"service_type"`
	DistanceKm  float64     `json:"distance_km"`
	ETA         string      `json:"eta"`
	AssignedAt  time.Time   `json:"assigned_at"`
}

// RequestStatusEvent is published on request.status after a committed
// status transition.
type RequestStatusEvent struct {
	RequestID   uuid.UUID     `json:"request_id"`
	Status      RequestStatus `json:"status"`
	ResponderID *uuid.UUID    `json:"responder_id,omitempty"`
	OccurredAt  time.Time     `json:"occurred_at"`
}
