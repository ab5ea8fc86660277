package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// RequestStatus represents the lifecycle status of an emergency request.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusAccepted   RequestStatus = "accepted"
	RequestStatusInProgress RequestStatus = "in-progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusInProgress,
		RequestStatusCompleted, RequestStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled
}

// EmergencyRequest represents a citizen-submitted emergency request.
type EmergencyRequest struct {
	ID                 uuid.UUID     `json:"id" db:"id"`
	RequesterID        uuid.UUID     `json:"requester_id" db:"requester_id"`
	ServiceType        ServiceType   `json:"service_type" db:"service_type"`
	Location           Location      `json:"location"`
	Address            string        `json:"address,omitempty" db:"address"`
	Description        string        `json:"description,omitempty" db:"description"`
	Status             RequestStatus `json:"status" db:"status"`
	ResponderID        *uuid.UUID    `json:"responder_id,omitempty" db:"responder_id"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
	EstimatedArrivalAt *time.Time    `json:"estimated_arrival_at,omitempty" db:"estimated_arrival_at"`
	ActualArrivalAt    *time.Time    `json:"actual_arrival_at,omitempty" db:"actual_arrival_at"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
}

// EmergencyRequestDTO flattens the nested Location and nullable columns for
// database operations.
type EmergencyRequestDTO struct {
	ID                 uuid.UUID      `db:"id"`
	RequesterID        uuid.UUID      `db:"requester_id"`
	ServiceType        ServiceType    `db:"service_type"`
	Longitude          float64        `db:"longitude"`
	Latitude           float64        `db:"latitude"`
	Address            sql.NullString `db:"address"`
	Description        sql.NullString `db:"description"`
	Status             RequestStatus  `db:"status"`
	ResponderID        uuid.NullUUID  `db:"responder_id"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
	EstimatedArrivalAt sql.NullTime   `db:"estimated_arrival_at"`
	ActualArrivalAt    sql.NullTime   `db:"actual_arrival_at"`
	CompletedAt        sql.NullTime   `db:"completed_at"`
}

// ToRequest converts an EmergencyRequestDTO to an EmergencyRequest.
func (dto *EmergencyRequestDTO) ToRequest() *EmergencyRequest {
	req := &EmergencyRequest{
		ID:          dto.ID,
		RequesterID: dto.RequesterID,
		ServiceType: dto.ServiceType,
		Location: Location{
			Longitude: dto.Longitude,
			Latitude:  dto.Latitude,
			Address:   dto.Address.String,
		},
		Address:     dto.Address.String,
		Description: dto.Description.String,
		Status:      dto.Status,
		CreatedAt:   dto.CreatedAt,
		UpdatedAt:   dto.UpdatedAt,
	}
	if dto.ResponderID.Valid {
		id := dto.ResponderID.UUID
		req.ResponderID = &id
	}
	if dto.EstimatedArrivalAt.Valid {
		t := dto.EstimatedArrivalAt.Time
		req.EstimatedArrivalAt = &t
	}
	if dto.ActualArrivalAt.Valid {
		t := dto.ActualArrivalAt.Time
		req.ActualArrivalAt = &t
	}
	if dto.CompletedAt.Valid {
		t := dto.CompletedAt.Time
		req.CompletedAt = &t
	}
	return req
}
