package realtime

import "encoding/json"

// Inbound event names.
const (
	EventJoin                = "join"
	EventUpdateLocation      = "update-location"
	EventPaymentMade         = "payment-made"
	EventPaymentAcknowledged = "payment-acknowledged"
)

// Outbound event names owned by the hub.
const (
	EventJoined = "joined"
	EventError  = "error"
)

// Envelope is the frame exchanged in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ErrorPayload answers an inbound event that failed.
type ErrorPayload struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

// JoinedPayload confirms a session binding.
type JoinedPayload struct {
	SessionID string `json:"session_id"`
}

// LocationPayload is sent by drivers with update-location.
type LocationPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PaymentMadePayload is the checkout result a rider reports with payment-made.
type PaymentMadePayload struct {
	RideID    string `json:"ride_id"`
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// PaymentAcknowledgedPayload is sent by a driver who collected cash.
type PaymentAcknowledgedPayload struct {
	RideID string `json:"ride_id"`
}

// clientError is a failure safe to echo back to the sender.
type clientError string

func (e clientError) Error() string { return string(e) }

const (
	errMalformedMessage clientError = "malformed message"
	errNotJoined        clientError = "join before sending events"
	errSessionTaken     clientError = "another session is already active"
	errUnknownEvent     clientError = "unknown event"
	errEventNotAllowed  clientError = "event not allowed for this actor"
)

func encode(event string, data any) ([]byte, error) {
	raw, err := encodeData(data)
	if err != nil {
		return nil, err
	}
	return encodeRaw(event, raw)
}

func encodeData(data any) (json.RawMessage, error) {
	return json.Marshal(data)
}

func encodeRaw(event string, data json.RawMessage) ([]byte, error) {
	return json.Marshal(Envelope{Event: event, Data: data})
}
