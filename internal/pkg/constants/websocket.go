package constants

// WebSocket event names
const (
	EventAssignmentOffer = "assignment.offer"
	EventError           = "error"
)
