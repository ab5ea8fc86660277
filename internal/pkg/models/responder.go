package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceType identifies the kind of emergency service a responder provides.
type ServiceType string

const (
	ServiceTypeAmbulance ServiceType = "ambulance"
	ServiceTypeFire      ServiceType = "fire"
	ServiceTypePolice    ServiceType = "police"
)

// Valid reports whether the service type is one of the known values.
func (s ServiceType) Valid() bool {
	switch s {
	case ServiceTypeAmbulance, ServiceTypeFire, ServiceTypePolice:
		return true
	}
	return false
}

// Availability is the canonical responder availability state. A responder is
// matchable only while available; busy is entered by the atomic assignment
// step and left when its request reaches a terminal state.
type Availability string

const (
	AvailabilityOffline   Availability = "offline"
	AvailabilityAvailable Availability = "available"
	AvailabilityBusy      Availability = "busy"
)

// Valid reports whether the availability is one of the known values.
func (a Availability) Valid() bool {
	switch a {
	case AvailabilityOffline, AvailabilityAvailable, AvailabilityBusy:
		return true
	}
	return false
}

// Roles carried by the JWT role claim. Requesters hold the citizen role;
// responder-facing endpoints require the responder role.
const (
	RoleCitizen   = "citizen"
	RoleResponder = "responder"
)

// Responder represents a registered emergency responder.
type Responder struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	ServiceType  ServiceType  `json:"service_type" db:"service_type"`
	Availability Availability `json:"availability" db:"availability"`
	Location     Location     `json:"location"`
	LastUpdated  time.Time    `json:"last_updated" db:"last_updated"`
}

// ResponderDTO flattens the nested Location for database operations.
type ResponderDTO struct {
	ID           uuid.UUID    `db:"id"`
	ServiceType  ServiceType  `db:"service_type"`
	Availability Availability `db:"availability"`
	Longitude    float64      `db:"longitude"`
	Latitude     float64      `db:"latitude"`
	LastUpdated  time.Time    `db:"last_updated"`
}

// ToResponder converts a ResponderDTO to a Responder.
func (dto *ResponderDTO) ToResponder() *Responder {
	return &Responder{
		ID:           dto.ID,
		ServiceType:  dto.ServiceType,
		Availability: dto.Availability,
		Location: Location{
			Longitude: dto.Longitude,
			Latitude:  dto.Latitude,
			Timestamp: dto.LastUpdated,
		},
		LastUpdated: dto.LastUpdated,
	}
}

// Candidate is a responder returned by a proximity query, nearest first.
type Candidate struct {
	ID         uuid.UUID `json:"id"`
	Location   Location  `json:"location"`
	DistanceKm float64   `json:"distance_km"`
}
