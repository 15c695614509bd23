package events

import (
	"encoding/json"
)

// Telemetry is a visit or link click buffered on Kafka until the forwarder
// posts it to the remote store. Action is the remote store action the payload
// belongs to.
type Telemetry struct {
	EventID    string          `json:"eventId"`
	Action     string          `json:"action"`
	OccurredAt string          `json:"occurredAt"`
	ClientIP   string          `json:"clientIp,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}
