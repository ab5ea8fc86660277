package constants

// NATS Subjects
const (
	// Published by the dispatch engine
	SubjectDispatchAssigned = "dispatch.assigned"
	SubjectRequestStatus    = "request.status"

	// Consumed: responder location pings
	SubjectResponderLocation = "responder.location"
)

// NATS queue groups
const (
	QueueGroupDispatch = "dispatch-service"
)
