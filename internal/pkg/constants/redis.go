package constants

// Redis key formats
const (
	KeyResponderGeo       = "responders:geo:%s"       // Format: responders:geo:{service_type}
	KeyAvailableResponder = "responders:available:%s" // Format: responders:available:{service_type}
	KeyResponderLocation  = "responder:location:%s"   // Format: responder:location:{responder_id}
	KeyNotifyQueue        = "notify:queue:%s"         // Format: notify:queue:{responder_id}
)

// Redis hash fields
const (
	FieldLatitude    = "lat"
	FieldLongitude   = "lng"
	FieldTimestamp   = "ts"
	FieldGeohash     = "cell"
	FieldServiceType = "service_type"
)
