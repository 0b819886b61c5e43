package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/maps"
	"github.com/atharavsawant52/NeoRide/internal/repository"
)

const (
	minAddressLength   = 3
	defaultHistorySize = 50
)

// RoutingProvider resolves addresses and driving routes.
type RoutingProvider interface {
	ResolveCoordinates(ctx context.Context, address string) (maps.Coordinates, error)
	RouteMetrics(ctx context.Context, origin, destination string) (maps.Route, error)
}

// errGuardMissed is returned from inside a transaction when a conditional
// update did not apply; the caller reloads the ride to name the reason.
var errGuardMissed = errors.New("conditional update not applied")

// RideService owns the ride state machine.
type RideService struct {
	rideRepo   repository.RideRepository
	eventRepo  repository.PaymentEventRepository
	driverRepo repository.DriverRepository
	tx         repository.Transactor
	fare       *FareEngine
	routes     RoutingProvider
	dispatch   *DispatchService
	currency   string
}

// NewRideService creates a new RideService.
func NewRideService(
	rideRepo repository.RideRepository,
	eventRepo repository.PaymentEventRepository,
	driverRepo repository.DriverRepository,
	tx repository.Transactor,
	fare *FareEngine,
	routes RoutingProvider,
	dispatch *DispatchService,
	currency string,
) *RideService {
	return &RideService{
		rideRepo:   rideRepo,
		eventRepo:  eventRepo,
		driverRepo: driverRepo,
		tx:         tx,
		fare:       fare,
		routes:     routes,
		dispatch:   dispatch,
		currency:   currency,
	}
}

// CreateRideRequest contains the parameters for creating a ride.
type CreateRideRequest struct {
	RiderID      string
	Pickup       string
	Destination  string
	VehicleClass string
}

// CompleteRideResponse contains the result of completing a ride.
type CompleteRideResponse struct {
	Ride    *domain.Ride
	Receipt *domain.Receipt
}

// Estimate prices a route for every vehicle class without creating a ride.
func (s *RideService) Estimate(ctx context.Context, pickup, destination string) (map[domain.VehicleClass]int64, error) {
	pickup, destination, err := validateRoute(pickup, destination)
	if err != nil {
		return nil, err
	}

	metrics, err := s.routeMetrics(ctx, pickup, destination)
	if err != nil {
		return nil, err
	}
	return s.fare.Quote(metrics, domain.VehicleClasses), nil
}

// Create prices and persists a requested ride, then offers it to nearby drivers.
// Pricing failures fail the request; there is no fallback fare.
func (s *RideService) Create(ctx context.Context, req CreateRideRequest) (*domain.Ride, error) {
	if req.RiderID == "" {
		return nil, ErrInvalidRiderID
	}

	pickup, destination, err := validateRoute(req.Pickup, req.Destination)
	if err != nil {
		return nil, err
	}

	class, ok := domain.ParseVehicleClass(req.VehicleClass)
	if !ok {
		return nil, ErrInvalidVehicleClass
	}

	metrics, err := s.routeMetrics(ctx, pickup, destination)
	if err != nil {
		return nil, err
	}

	otp, err := generateOTP()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	now := time.Now().UTC()
	ride := &domain.Ride{
		ID:            uuid.New().String(),
		RiderID:       req.RiderID,
		Pickup:        pickup,
		Destination:   destination,
		VehicleClass:  class,
		Fare:          s.fare.QuoteRide(metrics, class),
		Status:        domain.RideStatusRequested,
		OTP:           otp,
		PaymentStatus: domain.PaymentStatusPending,
		PaymentMethod: domain.PaymentMethodCash,
		CreatedAt:     now,
		UpdatedAt:     now,

		DistanceMeters: metrics.DistanceMeters,
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.dispatch.RideRequested(ride)
	return ride, nil
}

// Accept assigns the driver to a requested ride. Exactly one of any number
// of concurrent accepts wins; the rest get ErrAssignmentConflict. A retry by
// the driver who already won returns the ride unchanged.
func (s *RideService) Accept(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	won, err := s.rideRepo.AssignDriver(ctx, rideID, driverID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Either the ride or the driver row is missing.
			if _, getErr := s.getRide(ctx, rideID); getErr != nil {
				return nil, getErr
			}
			return nil, ErrDriverNotFound
		}
		return nil, err
	}

	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if !won {
		switch {
		case ride.DriverID == driverID && ride.Status == domain.RideStatusAccepted:
			return ride, nil
		case ride.HasDriver():
			return nil, ErrAssignmentConflict
		default:
			return nil, ErrRideNotInExpectedState
		}
	}

	s.dispatch.RideAccepted(ride)
	return ride, nil
}

// Start moves an accepted ride to ongoing once the driver presents the
// rider's OTP.
func (s *RideService) Start(ctx context.Context, rideID, driverID, otp string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.DriverID != driverID {
		return nil, ErrDriverNotAssignedToRide
	}
	if ride.Status != domain.RideStatusAccepted {
		return nil, ErrRideNotInExpectedState
	}
	if subtle.ConstantTimeCompare([]byte(otp), []byte(ride.OTP)) != 1 {
		return nil, ErrInvalidOtp
	}

	startedAt := time.Now().UTC()
	ok, err := s.rideRepo.Start(ctx, repository.StartParams{
		RideID:    rideID,
		DriverID:  driverID,
		StartedAt: startedAt,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRideNotInExpectedState
	}

	ride.Status = domain.RideStatusOngoing
	ride.StartedAt = startedAt
	ride.UpdatedAt = startedAt

	s.dispatch.RideStarted(ride)
	return ride, nil
}

// Complete ends an ongoing, paid ride. The status change, the ride_completed
// audit event and the driver's stats are written in one transaction, so a
// retried completion can never count twice.
func (s *RideService) Complete(ctx context.Context, rideID, driverID string) (*CompleteRideResponse, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if err := checkCompletable(ride, driverID); err != nil {
		return nil, err
	}

	endedAt := time.Now().UTC()
	duration := int64(endedAt.Sub(ride.StartedAt) / time.Second)
	if duration < 1 {
		duration = 1
	}

	// Best effort: on failure the stored distance is kept.
	var distance int64
	if metrics, err := s.routeMetrics(ctx, ride.Pickup, ride.Destination); err == nil {
		distance = metrics.DistanceMeters
	} else {
		log.Printf("ride %s: distance lookup failed at completion: %v", rideID, err)
	}

	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		ok, err := repos.Rides.Complete(ctx, repository.CompleteParams{
			RideID:          rideID,
			DriverID:        driverID,
			EndedAt:         endedAt,
			DurationSeconds: duration,
			DistanceMeters:  distance,
		})
		if err != nil {
			return err
		}
		if !ok {
			return errGuardMissed
		}

		if err := repos.PaymentEvents.Append(ctx, &domain.PaymentEvent{
			RideID:    rideID,
			Type:      domain.PaymentEventRideCompleted,
			Method:    ride.PaymentMethod,
			PaymentID: ride.PaymentID,
			Amount:    ride.Fare.Total,
			Actor:     domain.Actor{ID: driverID, Type: domain.ActorDriver}.String(),
			At:        endedAt,
		}); err != nil {
			return err
		}

		hours := float64(duration) / 3600
		return repos.Drivers.IncrementStats(ctx, driverID, ride.Fare.Total, hours)
	})
	if err != nil {
		if errors.Is(err, errGuardMissed) {
			return nil, s.explainCompleteMiss(ctx, rideID, driverID)
		}
		return nil, err
	}

	ride, err = s.loadWithEvents(ctx, rideID)
	if err != nil {
		return nil, err
	}
	receipt := BuildReceipt(ride, s.currency)

	s.dispatch.RideEnded(ride, receipt)
	return &CompleteRideResponse{Ride: ride, Receipt: receipt}, nil
}

// Cancel moves a non-terminal ride to cancelled. Only the ride's rider or
// its assigned driver may cancel.
func (s *RideService) Cancel(ctx context.Context, rideID string, actor domain.Actor) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if !isParty(ride, actor) {
		return nil, ErrNotRideParty
	}
	if ride.Status.IsTerminal() {
		return nil, ErrRideNotInExpectedState
	}

	ok, err := s.rideRepo.Cancel(ctx, rideID, actor.String(), time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRideNotInExpectedState
	}

	ride, err = s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	s.dispatch.RideCancelled(ride, actor)
	return ride, nil
}

// Rate stores the rider's 1..5 rating on a completed ride and recomputes
// the driver's aggregate rating.
func (s *RideService) Rate(ctx context.Context, rideID, riderID string, rating int) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.RiderID != riderID {
		return nil, ErrRiderNotOwner
	}
	if ride.Status != domain.RideStatusCompleted {
		return nil, ErrRideNotInExpectedState
	}
	if ride.Rating != 0 {
		return nil, ErrAlreadyRated
	}

	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		ok, err := repos.Rides.SetRating(ctx, rideID, rating)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyRated
		}

		// Serialize recomputation per driver so concurrent ratings cannot
		// overwrite each other with a stale mean.
		if err := repos.Drivers.LockForUpdate(ctx, ride.DriverID); err != nil {
			return err
		}

		avg, count, err := repos.Rides.AverageDriverRating(ctx, ride.DriverID)
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		return repos.Drivers.SetRating(ctx, ride.DriverID, roundToTenth(avg))
	})
	if err != nil {
		return nil, err
	}

	ride.Rating = rating
	s.dispatch.RideRated(ride)
	return ride, nil
}

// Get returns a ride with its payment audit log. Riders may read their own
// rides; drivers may read rides assigned to them and open requests.
func (s *RideService) Get(ctx context.Context, rideID string, viewer domain.Actor) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.loadWithEvents(ctx, rideID)
	if err != nil {
		return nil, err
	}

	openRequest := viewer.Type == domain.ActorDriver &&
		ride.Status == domain.RideStatusRequested && !ride.HasDriver()
	if !isParty(ride, viewer) && !openRequest {
		return nil, ErrNotRideParty
	}
	return ride, nil
}

// History returns the actor's rides, newest first.
func (s *RideService) History(ctx context.Context, actor domain.Actor, limit int) ([]*domain.Ride, error) {
	if limit <= 0 || limit > defaultHistorySize {
		limit = defaultHistorySize
	}

	switch actor.Type {
	case domain.ActorRider:
		return s.rideRepo.ListByRider(ctx, actor.ID, limit)
	case domain.ActorDriver:
		return s.rideRepo.ListByDriver(ctx, actor.ID, limit)
	default:
		return nil, ErrNotRideParty
	}
}

// Receipt returns the receipt of a completed ride to either party.
func (s *RideService) Receipt(ctx context.Context, rideID string, viewer domain.Actor) (*domain.Receipt, error) {
	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !isParty(ride, viewer) {
		return nil, ErrNotRideParty
	}
	if ride.Status != domain.RideStatusCompleted {
		return nil, ErrReceiptNotFound
	}
	return BuildReceipt(ride, s.currency), nil
}

// explainCompleteMiss names why the completion guard failed.
func (s *RideService) explainCompleteMiss(ctx context.Context, rideID, driverID string) error {
	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return err
	}
	if err := checkCompletable(ride, driverID); err != nil {
		return err
	}
	return ErrRideNotInExpectedState
}

func checkCompletable(ride *domain.Ride, driverID string) error {
	if ride.DriverID != driverID {
		return ErrDriverNotAssignedToRide
	}
	if ride.Status != domain.RideStatusOngoing {
		return ErrRideNotInExpectedState
	}
	if !ride.IsPaid() {
		return ErrPaymentNotCompleted
	}
	return nil
}

func (s *RideService) getRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	return ride, nil
}

func (s *RideService) loadWithEvents(ctx context.Context, rideID string) (*domain.Ride, error) {
	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListByRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	ride.PaymentEvents = events
	return ride, nil
}

func (s *RideService) routeMetrics(ctx context.Context, origin, destination string) (RouteMetrics, error) {
	route, err := s.routes.RouteMetrics(ctx, origin, destination)
	if err != nil {
		log.Printf("routing %q -> %q failed: %v", origin, destination, err)
		return RouteMetrics{}, ErrRoutingUnavailable
	}
	return RouteMetrics{
		DistanceMeters:  route.DistanceMeters,
		DurationSeconds: route.DurationSeconds,
	}, nil
}

func validateRoute(pickup, destination string) (string, string, error) {
	pickup = strings.TrimSpace(pickup)
	destination = strings.TrimSpace(destination)
	if len(pickup) < minAddressLength {
		return "", "", ErrInvalidPickup
	}
	if len(destination) < minAddressLength {
		return "", "", ErrInvalidDestination
	}
	return pickup, destination, nil
}

// isParty reports whether actor is the ride's rider or its assigned driver.
func isParty(ride *domain.Ride, actor domain.Actor) bool {
	switch actor.Type {
	case domain.ActorRider:
		return actor.ID == ride.RiderID
	case domain.ActorDriver:
		return ride.HasDriver() && actor.ID == ride.DriverID
	}
	return false
}

// generateOTP returns a uniformly random code in [100000, 999999].
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
