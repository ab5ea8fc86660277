package models

import "time"

// Location represents a geographical location. Stored coordinates follow the
// GeoJSON Point convention: [longitude, latitude].
type Location struct {
	Longitude float64   `json:"longitude" db:"longitude"`
	Latitude  float64   `json:"latitude" db:"latitude"`
	Address   string    `json:"address,omitempty" db:"address"`
	Timestamp time.Time `json:"timestamp,omitempty" db:"timestamp"`
}

// LocationUpdate represents a responder location ping, delivered over HTTP or
// the responder.location NATS subject.
type LocationUpdate struct {
	ResponderID string      `json:"responder_id"`
	Location    interface{} `json:"location"`
	CreatedAt   time.Time   `json:"created_at"`
}
