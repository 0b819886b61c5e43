package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/redis"
	"github.com/atharavsawant52/NeoRide/internal/stream"
)

// Realtime event names pushed to clients.
const (
	EventNewRide              = "new-ride"
	EventRideConfirmed        = "ride-confirmed"
	EventRideStarted          = "ride-started"
	EventRideEnded            = "ride-ended"
	EventRideCancelled        = "ride-cancelled"
	EventPaymentStatusChanged = "payment-status-changed"
)

// Stream event types published for downstream consumers.
const (
	StreamRideRequested = "ride.requested"
	StreamRideAccepted  = "ride.accepted"
	StreamRideStarted   = "ride.started"
	StreamRideCompleted = "ride.completed"
	StreamRideCancelled = "ride.cancelled"
	StreamRideRated     = "ride.rated"
	StreamPaymentPaid   = "payment.paid"
)

const notifyTimeout = 10 * time.Second

// Transport pushes an event to one realtime session. It reports whether the
// session was known; an unknown session is not an error.
type Transport interface {
	Send(sessionID, event string, data any) bool
}

// EventPublisher appends ride events to the event stream.
type EventPublisher interface {
	Publish(ctx context.Context, event stream.RideEvent) error
}

// Notification is one push to one actor.
type Notification struct {
	Event     string
	Recipient domain.Actor
	Data      any
}

// DispatchService turns ledger transitions into realtime pushes and stream
// events. Every method returns immediately; delivery happens on a detached
// goroutine and is best effort.
type DispatchService struct {
	transport    Transport
	sessionStore redis.SessionStoreInterface
	directory    *DirectoryService
	routes       RoutingProvider
	publisher    EventPublisher
	radiusKm     float64

	wg sync.WaitGroup
}

// NewDispatchService creates a new DispatchService.
func NewDispatchService(
	transport Transport,
	sessionStore redis.SessionStoreInterface,
	directory *DirectoryService,
	routes RoutingProvider,
	publisher EventPublisher,
	radiusKm float64,
) *DispatchService {
	return &DispatchService{
		transport:    transport,
		sessionStore: sessionStore,
		directory:    directory,
		routes:       routes,
		publisher:    publisher,
		radiusKm:     radiusKm,
	}
}

// Wait blocks until every in-flight notification has finished.
func (s *DispatchService) Wait() {
	s.wg.Wait()
}

// RideRequested offers a new ride to every reachable driver of the ride's
// class near the pickup. The payload never carries the OTP.
func (s *DispatchService) RideRequested(ride *domain.Ride) {
	s.async(func(ctx context.Context) {
		s.publish(ctx, StreamRideRequested, ride, domain.Actor{ID: ride.RiderID, Type: domain.ActorRider})

		coords, err := s.routes.ResolveCoordinates(ctx, ride.Pickup)
		if err != nil {
			log.Printf("dispatch: cannot locate pickup for ride %s: %v", ride.ID, err)
			return
		}

		candidates, err := s.directory.FindCandidates(ctx, CandidateQuery{
			Lat:      coords.Lat,
			Lng:      coords.Lng,
			RadiusKm: s.radiusKm,
			Class:    ride.VehicleClass,
		})
		if err != nil {
			log.Printf("dispatch: candidate search failed for ride %s: %v", ride.ID, err)
			return
		}

		payload := NewRideView(ride, false)
		delivered := 0
		for _, c := range candidates {
			if !c.Reachable() {
				continue
			}
			if s.transport.Send(c.SessionID, EventNewRide, payload) {
				delivered++
			}
		}
		log.Printf("dispatch: ride %s offered to %d of %d nearby drivers", ride.ID, delivered, len(candidates))
	})
}

// RideAccepted sends the rider the OTP and the driver's details.
func (s *DispatchService) RideAccepted(ride *domain.Ride) {
	s.async(func(ctx context.Context) {
		s.publish(ctx, StreamRideAccepted, ride, domain.Actor{ID: ride.DriverID, Type: domain.ActorDriver})

		payload := NewRideView(ride, true)
		profile, err := s.directory.Profile(ctx, ride.DriverID)
		if err != nil {
			log.Printf("dispatch: driver profile for ride %s unavailable: %v", ride.ID, err)
		}
		payload.Driver = newDriverView(profile)

		s.send(ctx, Notification{
			Event:     EventRideConfirmed,
			Recipient: domain.Actor{ID: ride.RiderID, Type: domain.ActorRider},
			Data:      payload,
		})
	})
}

// RideStarted tells the rider the trip is underway.
func (s *DispatchService) RideStarted(ride *domain.Ride) {
	s.async(func(ctx context.Context) {
		s.publish(ctx, StreamRideStarted, ride, domain.Actor{ID: ride.DriverID, Type: domain.ActorDriver})
		s.send(ctx, Notification{
			Event:     EventRideStarted,
			Recipient: domain.Actor{ID: ride.RiderID, Type: domain.ActorRider},
			Data:      NewRideView(ride, true),
		})
	})
}

// RideEnded sends the rider the final ride state and its receipt.
func (s *DispatchService) RideEnded(ride *domain.Ride, receipt *domain.Receipt) {
	s.async(func(ctx context.Context) {
		s.publish(ctx, StreamRideCompleted, ride, domain.Actor{ID: ride.DriverID, Type: domain.ActorDriver})
		s.send(ctx, Notification{
			Event:     EventRideEnded,
			Recipient: domain.Actor{ID: ride.RiderID, Type: domain.ActorRider},
			Data: map[string]any{
				"ride":    NewRideView(ride, false),
				"receipt": NewReceiptView(receipt),
			},
		})
	})
}

// PaymentStatusChanged tells both parties the ride is paid.
func (s *DispatchService) PaymentStatusChanged(ride *domain.Ride, event domain.PaymentEvent) {
	s.async(func(ctx context.Context) {
		s.publishEvent(ctx, stream.RideEvent{
			Type:          StreamPaymentPaid,
			RideID:        ride.ID,
			Status:        string(ride.Status),
			PaymentStatus: string(domain.PaymentStatusPaid),
			Actor:         event.Actor,
			At:            event.At,
		})

		data := map[string]any{
			"ride_id":        ride.ID,
			"payment_status": domain.PaymentStatusPaid,
			"payment_method": event.Method,
			"amount":         event.Amount,
		}
		s.send(ctx, Notification{
			Event:     EventPaymentStatusChanged,
			Recipient: domain.Actor{ID: ride.RiderID, Type: domain.ActorRider},
			Data:      data,
		})
		if ride.HasDriver() {
			s.send(ctx, Notification{
				Event:     EventPaymentStatusChanged,
				Recipient: domain.Actor{ID: ride.DriverID, Type: domain.ActorDriver},
				Data:      data,
			})
		}
	})
}

// RideCancelled tells the other party the ride was cancelled.
func (s *DispatchService) RideCancelled(ride *domain.Ride, by domain.Actor) {
	s.async(func(ctx context.Context) {
		s.publish(ctx, StreamRideCancelled, ride, by)

		recipient := domain.Actor{ID: ride.RiderID, Type: domain.ActorRider}
		if by.Type == domain.ActorRider {
			if !ride.HasDriver() {
				return
			}
			recipient = domain.Actor{ID: ride.DriverID, Type: domain.ActorDriver}
		}

		s.send(ctx, Notification{
			Event:     EventRideCancelled,
			Recipient: recipient,
			Data: map[string]any{
				"ride_id":      ride.ID,
				"cancelled_by": by.Type,
			},
		})
	})
}

// RideRated records the rating on the event stream.
func (s *DispatchService) RideRated(ride *domain.Ride) {
	s.async(func(ctx context.Context) {
		s.publish(ctx, StreamRideRated, ride, domain.Actor{ID: ride.RiderID, Type: domain.ActorRider})
	})
}

// send looks up the recipient's session and pushes. An absent session is a silent drop.
func (s *DispatchService) send(ctx context.Context, n Notification) bool {
	sessionID, err := s.sessionStore.Lookup(ctx, n.Recipient)
	if err != nil {
		log.Printf("dispatch: session lookup for %s failed: %v", n.Recipient, err)
		return false
	}
	if sessionID == "" {
		log.Printf("dispatch: %s not connected, dropping %s", n.Recipient, n.Event)
		return false
	}
	return s.transport.Send(sessionID, n.Event, n.Data)
}

func (s *DispatchService) publish(ctx context.Context, eventType string, ride *domain.Ride, actor domain.Actor) {
	s.publishEvent(ctx, stream.RideEvent{
		Type:          eventType,
		RideID:        ride.ID,
		Status:        string(ride.Status),
		PaymentStatus: string(ride.PaymentStatus),
		Actor:         actor.String(),
		At:            time.Now().UTC(),
	})
}

func (s *DispatchService) publishEvent(ctx context.Context, event stream.RideEvent) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, event)
}

// async runs fn on its own goroutine with a context detached from the request.
func (s *DispatchService) async(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		fn(ctx)
	}()
}
