package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/service"
)

// EventRouter turns inbound realtime events into service calls.
type EventRouter struct {
	drivers  *service.DriverService
	payments *service.PaymentService
}

// NewEventRouter creates a new EventRouter.
func NewEventRouter(drivers *service.DriverService, payments *service.PaymentService) *EventRouter {
	return &EventRouter{drivers: drivers, payments: payments}
}

// Joined marks a driver available once its session is bound.
func (r *EventRouter) Joined(ctx context.Context, client *Client) error {
	if client.Actor.Type != domain.ActorDriver {
		return nil
	}
	return r.drivers.SetAvailability(ctx, client.Actor.ID, true)
}

// HandleEvent routes one inbound event.
func (r *EventRouter) HandleEvent(ctx context.Context, client *Client, msg Envelope) error {
	switch msg.Event {
	case EventUpdateLocation:
		if client.Actor.Type != domain.ActorDriver {
			return errEventNotAllowed
		}
		var p LocationPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return errMalformedMessage
		}
		return r.drivers.UpdateLocation(ctx, service.UpdateLocationRequest{
			DriverID: client.Actor.ID,
			Lat:      p.Lat,
			Lng:      p.Lng,
		})

	case EventPaymentMade:
		if client.Actor.Type != domain.ActorRider {
			return errEventNotAllowed
		}
		var p PaymentMadePayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return errMalformedMessage
		}
		_, err := r.payments.Verify(ctx, service.VerifyPaymentRequest{
			RideID:    p.RideID,
			OrderID:   p.OrderID,
			PaymentID: p.PaymentID,
			Signature: p.Signature,
		}, client.Actor, domain.PaymentEventMade)
		return err

	case EventPaymentAcknowledged:
		if client.Actor.Type != domain.ActorDriver {
			return errEventNotAllowed
		}
		var p PaymentAcknowledgedPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return errMalformedMessage
		}
		_, err := r.payments.AcknowledgeCash(ctx, p.RideID, client.Actor)
		return err

	default:
		return errUnknownEvent
	}
}

// Disconnected takes a driver out of rotation.
func (r *EventRouter) Disconnected(ctx context.Context, client *Client) {
	if client.Actor.Type != domain.ActorDriver {
		return
	}
	if err := r.drivers.SetAvailability(ctx, client.Actor.ID, false); err != nil {
		log.Printf("realtime: failed to mark %s inactive: %v", client.Actor, err)
	}
}

// errorMessage returns the text sent back for a failed event. Internal
// failures are logged and answered generically.
func errorMessage(err error) string {
	var ce clientError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	var se *service.Error
	if errors.As(err, &se) {
		return se.Error()
	}
	log.Printf("realtime: event failed: %v", err)
	return "internal error"
}
