package tests

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/maps"
	"github.com/atharavsawant52/NeoRide/internal/service"
)

// ──────────────────────────────────────────────
// 1. RIDE CREATION
// ──────────────────────────────────────────────

func TestRideCreation_ValidatesInput(t *testing.T) {
	t.Parallel()

	env := newTestEnv()

	testCases := []struct {
		name    string
		req     service.CreateRideRequest
		wantErr error
	}{
		{"missing rider", service.CreateRideRequest{Pickup: testPickup, Destination: testDestination, VehicleClass: "car"}, service.ErrInvalidRiderID},
		{"short pickup", service.CreateRideRequest{RiderID: "rider-1", Pickup: "ab", Destination: testDestination, VehicleClass: "car"}, service.ErrInvalidPickup},
		{"blank destination", service.CreateRideRequest{RiderID: "rider-1", Pickup: testPickup, Destination: "   ", VehicleClass: "car"}, service.ErrInvalidDestination},
		{"unknown class", service.CreateRideRequest{RiderID: "rider-1", Pickup: testPickup, Destination: testDestination, VehicleClass: "rocket"}, service.ErrInvalidVehicleClass},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.rideSvc.Create(context.Background(), tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
			if !errors.Is(err, service.ErrValidation) {
				t.Errorf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestRideCreation_PricesAndPersistsRequestedRide(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ride := env.createRide(t, "rider-1")

	if ride.Status != domain.RideStatusRequested {
		t.Errorf("expected status requested, got %s", ride.Status)
	}
	if ride.Fare.Total != 230 {
		t.Errorf("expected fare 230, got %d", ride.Fare.Total)
	}
	if ride.PaymentStatus != domain.PaymentStatusPending {
		t.Errorf("expected payment pending, got %s", ride.PaymentStatus)
	}
	if ride.HasDriver() {
		t.Error("new ride should have no driver")
	}

	otp, err := strconv.Atoi(ride.OTP)
	if err != nil || len(ride.OTP) != 6 || otp < 100000 || otp > 999999 {
		t.Errorf("expected a six digit OTP, got %q", ride.OTP)
	}

	if stored := env.rides.GetRide(ride.ID); stored == nil {
		t.Fatal("ride was not persisted")
	}
}

func TestRideCreation_FailsWhenRoutingUnavailable(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.routes.SetRouteError(maps.ErrUnavailable)

	_, err := env.rideSvc.Create(context.Background(), service.CreateRideRequest{
		RiderID:      "rider-1",
		Pickup:       testPickup,
		Destination:  testDestination,
		VehicleClass: "car",
	})

	if !errors.Is(err, service.ErrExternalDependency) {
		t.Errorf("expected external dependency error, got %v", err)
	}
}

func TestRideCreation_OffersRideOnlyToReachableDriversOfTheClass(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("near-car", domain.VehicleClassCar, pickupLat+0.005, pickupLng, true)
	env.addDriver("near-moto", domain.VehicleClassMoto, pickupLat, pickupLng+0.005, true)
	env.addDriver("offline-car", domain.VehicleClassCar, pickupLat, pickupLng, false)
	env.addDriver("far-car", domain.VehicleClassCar, pickupLat+1, pickupLng, true)

	env.createRide(t, "rider-1")
	env.settle()

	offers := env.transport.SentTo(sessionOf(driver("near-car")))
	if len(offers) != 1 || offers[0].Event != service.EventNewRide {
		t.Fatalf("expected one new-ride offer to near-car, got %+v", offers)
	}
	view, ok := offers[0].Data.(service.RideView)
	if !ok {
		t.Fatalf("expected RideView payload, got %T", offers[0].Data)
	}
	if view.OTP != "" {
		t.Error("new-ride payload must not carry the OTP")
	}

	for _, id := range []string{"near-moto", "offline-car", "far-car"} {
		if got := env.transport.SentTo(sessionOf(driver(id))); len(got) != 0 {
			t.Errorf("expected no offer to %s, got %d", id, len(got))
		}
	}
	if env.transport.Count(service.EventNewRide) != 1 {
		t.Errorf("expected exactly one offer, got %d", env.transport.Count(service.EventNewRide))
	}
}

// ──────────────────────────────────────────────
// 2. ACCEPTANCE
// ──────────────────────────────────────────────

func TestAccept_ConfirmsToRiderWithOTP(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, true)
	env.connect(rider("rider-1"))

	ride := env.createRide(t, "rider-1")
	accepted, err := env.rideSvc.Accept(context.Background(), ride.ID, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env.settle()

	if accepted.Status != domain.RideStatusAccepted || accepted.DriverID != "driver-1" {
		t.Errorf("expected accepted by driver-1, got %s by %q", accepted.Status, accepted.DriverID)
	}

	sent := env.transport.SentTo(sessionOf(rider("rider-1")))
	if len(sent) != 1 || sent[0].Event != service.EventRideConfirmed {
		t.Fatalf("expected ride-confirmed to rider, got %+v", sent)
	}
	view := sent[0].Data.(service.RideView)
	if view.OTP != ride.OTP {
		t.Errorf("expected rider to receive OTP %s, got %q", ride.OTP, view.OTP)
	}
	if view.Driver == nil || view.Driver.ID != "driver-1" {
		t.Errorf("expected driver details in confirmation, got %+v", view.Driver)
	}
}

func TestAccept_ConcurrentDriversExactlyOneWins(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	const drivers = 20
	for i := 0; i < drivers; i++ {
		env.addDriver("driver-"+strconv.Itoa(i), domain.VehicleClassCar, pickupLat, pickupLng, false)
	}
	ride := env.createRide(t, "rider-1")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   []string
		conflicts int
		other     []error
	)
	start := make(chan struct{})

	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(driverID string) {
			defer wg.Done()
			<-start
			_, err := env.rideSvc.Accept(context.Background(), ride.ID, driverID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, driverID)
			case errors.Is(err, service.ErrAssignmentConflict):
				conflicts++
			default:
				other = append(other, err)
			}
		}("driver-" + strconv.Itoa(i))
	}

	close(start)
	wg.Wait()

	if len(winners) != 1 {
		t.Fatalf("expected exactly one winner, got %v", winners)
	}
	if conflicts != drivers-1 {
		t.Errorf("expected %d conflicts, got %d (other errors: %v)", drivers-1, conflicts, other)
	}
	if stored := env.rides.GetRide(ride.ID); stored.DriverID != winners[0] {
		t.Errorf("stored driver %q does not match winner %q", stored.DriverID, winners[0])
	}
}

func TestAccept_RetryByWinnerIsIdempotent(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, false)
	ride := env.acceptedRide(t, "rider-1", "driver-1")

	again, err := env.rideSvc.Accept(context.Background(), ride.ID, "driver-1")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if again.DriverID != "driver-1" || again.Status != domain.RideStatusAccepted {
		t.Errorf("unexpected ride after retry: %s by %q", again.Status, again.DriverID)
	}
}

func TestAccept_UnknownRideAndDriver(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, false)

	if _, err := env.rideSvc.Accept(context.Background(), "missing", "driver-1"); !errors.Is(err, service.ErrRideNotFound) {
		t.Errorf("expected ErrRideNotFound, got %v", err)
	}

	ride := env.createRide(t, "rider-1")
	if _, err := env.rideSvc.Accept(context.Background(), ride.ID, "ghost"); !errors.Is(err, service.ErrDriverNotFound) {
		t.Errorf("expected ErrDriverNotFound, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 3. OTP-GATED START
// ──────────────────────────────────────────────

func TestStart_RequiresMatchingOTP(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, false)
	env.connect(rider("rider-1"))
	ride := env.acceptedRide(t, "rider-1", "driver-1")

	wrong := "000000"
	if ride.OTP == wrong {
		wrong = "111111"
	}

	for _, otp := range []string{wrong, "abc", "", ride.OTP + "0"} {
		_, err := env.rideSvc.Start(context.Background(), ride.ID, "driver-1", otp)
		if !errors.Is(err, service.ErrInvalidOtp) {
			t.Errorf("otp %q: expected ErrInvalidOtp, got %v", otp, err)
		}
	}

	if stored := env.rides.GetRide(ride.ID); stored.Status != domain.RideStatusAccepted {
		t.Fatalf("failed OTP attempts must not change status, got %s", stored.Status)
	}

	started, err := env.rideSvc.Start(context.Background(), ride.ID, "driver-1", ride.OTP)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started.Status != domain.RideStatusOngoing || started.StartedAt.IsZero() {
		t.Errorf("expected ongoing with start time, got %s at %v", started.Status, started.StartedAt)
	}

	env.settle()
	var pushes []string
	var startedView *service.RideView
	for _, e := range env.transport.SentTo(sessionOf(rider("rider-1"))) {
		pushes = append(pushes, e.Event)
		if e.Event == service.EventRideStarted {
			v := e.Data.(service.RideView)
			startedView = &v
		}
	}
	if env.transport.Count(service.EventRideStarted) != 1 || startedView == nil {
		t.Fatalf("expected one ride-started push to the rider, got %v", pushes)
	}
	if startedView.ID != ride.ID || startedView.Status != domain.RideStatusOngoing {
		t.Errorf("unexpected ride-started payload: %+v", startedView)
	}
}

func TestStart_BeforeAcceptanceFailsPrecondition(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ride := env.createRide(t, "rider-1")

	_, err := env.rideSvc.Start(context.Background(), ride.ID, "driver-1", ride.OTP)
	if !errors.Is(err, service.ErrPreconditionFailed) {
		t.Errorf("expected precondition failure, got %v", err)
	}
}

func TestStart_ByOtherDriverIsRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, false)
	ride := env.acceptedRide(t, "rider-1", "driver-1")

	_, err := env.rideSvc.Start(context.Background(), ride.ID, "driver-2", ride.OTP)
	if !errors.Is(err, service.ErrDriverNotAssignedToRide) {
		t.Errorf("expected ErrDriverNotAssignedToRide, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 4. PAYMENT-GATED COMPLETION
// ──────────────────────────────────────────────

func TestComplete_BlockedUntilPaid(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, false)
	ride := env.ongoingRide(t, "rider-1", "driver-1")

	_, err := env.rideSvc.Complete(context.Background(), ride.ID, "driver-1")
	if !errors.Is(err, service.ErrPaymentNotCompleted) {
		t.Fatalf("expected ErrPaymentNotCompleted, got %v", err)
	}
	if stored := env.rides.GetRide(ride.ID); stored.Status != domain.RideStatusOngoing {
		t.Errorf("expected ride to stay ongoing, got %s", stored.Status)
	}
	if env.drivers.IncrementStatsCallCount != 0 {
		t.Error("stats must not change for a blocked completion")
	}
}

func TestComplete_UpdatesStatsExactlyOnce(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, false)
	env.connect(rider("rider-1"))
	ride := env.ongoingRide(t, "rider-1", "driver-1")

	if _, err := env.paySvc.AcknowledgeCash(context.Background(), ride.ID, driver("driver-1")); err != nil {
		t.Fatalf("acknowledge cash: %v", err)
	}

	result, err := env.rideSvc.Complete(context.Background(), ride.ID, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Ride.Status != domain.RideStatusCompleted {
		t.Errorf("expected completed, got %s", result.Ride.Status)
	}
	if result.Ride.DurationSeconds < 1 {
		t.Errorf("expected duration of at least one second, got %d", result.Ride.DurationSeconds)
	}
	if result.Receipt.Fare != 230 || result.Receipt.Currency != testCurrency {
		t.Errorf("unexpected receipt: %+v", result.Receipt)
	}

	// A retried completion must not count twice.
	if _, err := env.rideSvc.Complete(context.Background(), ride.ID, "driver-1"); !errors.Is(err, service.ErrRideNotInExpectedState) {
		t.Errorf("expected ErrRideNotInExpectedState on retry, got %v", err)
	}

	stats := env.drivers.GetDriver("driver-1").Stats
	if stats.Earnings != 230 || stats.RidesCount != 1 {
		t.Errorf("expected earnings 230 over 1 ride, got %d over %d", stats.Earnings, stats.RidesCount)
	}
	if env.drivers.IncrementStatsCallCount != 1 {
		t.Errorf("expected stats incremented once, got %d", env.drivers.IncrementStatsCallCount)
	}

	if n := env.events.Count(ride.ID, domain.PaymentEventRideCompleted); n != 1 {
		t.Errorf("expected one ride_completed event, got %d", n)
	}

	env.settle()
	if env.transport.Count(service.EventRideEnded) != 1 {
		t.Errorf("expected one ride-ended push, got %d", env.transport.Count(service.EventRideEnded))
	}
}

func TestComplete_KeepsPlannedDistanceWhenLookupFails(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, false)
	ride := env.ongoingRide(t, "rider-1", "driver-1")
	if _, err := env.paySvc.AcknowledgeCash(context.Background(), ride.ID, driver("driver-1")); err != nil {
		t.Fatalf("acknowledge cash: %v", err)
	}

	env.routes.SetRouteError(maps.ErrUnavailable)

	result, err := env.rideSvc.Complete(context.Background(), ride.ID, "driver-1")
	if err != nil {
		t.Fatalf("completion must not fail on distance lookup: %v", err)
	}
	if result.Ride.DistanceMeters != 5000 {
		t.Errorf("expected planned distance 5000, got %d", result.Ride.DistanceMeters)
	}
}

// ──────────────────────────────────────────────
// 5. CANCELLATION, RATING, VISIBILITY
// ──────────────────────────────────────────────

func TestCancel_ByRiderBeforeAcceptance(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, false)
	ride := env.createRide(t, "rider-1")

	cancelled, err := env.rideSvc.Cancel(context.Background(), ride.ID, rider("rider-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != domain.RideStatusCancelled || cancelled.CancelledBy != "rider:rider-1" {
		t.Errorf("unexpected cancellation: %s by %q", cancelled.Status, cancelled.CancelledBy)
	}

	if _, err := env.rideSvc.Accept(context.Background(), ride.ID, "driver-1"); !errors.Is(err, service.ErrRideNotInExpectedState) {
		t.Errorf("expected cancelled ride to reject accept, got %v", err)
	}
	if _, err := env.rideSvc.Cancel(context.Background(), ride.ID, rider("rider-1")); !errors.Is(err, service.ErrRideNotInExpectedState) {
		t.Errorf("expected second cancel to fail, got %v", err)
	}
}

func TestCancel_ByDriverNotifiesRider(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, false)
	env.connect(rider("rider-1"))
	ride := env.acceptedRide(t, "rider-1", "driver-1")

	if _, err := env.rideSvc.Cancel(context.Background(), ride.ID, driver("driver-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env.settle()

	if env.transport.Count(service.EventRideCancelled) != 1 {
		t.Errorf("expected rider to be told about the cancellation")
	}
}

func TestCancel_RejectsStrangers(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ride := env.createRide(t, "rider-1")

	for _, a := range []domain.Actor{rider("rider-2"), driver("driver-9")} {
		if _, err := env.rideSvc.Cancel(context.Background(), ride.ID, a); !errors.Is(err, service.ErrNotRideParty) {
			t.Errorf("%s: expected ErrNotRideParty, got %v", a, err)
		}
	}
}

func TestRate_AveragesIntoDriverRating(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, false)
	first := env.completedRide(t, "rider-1", "driver-1")
	second := env.completedRide(t, "rider-2", "driver-1")

	for _, rating := range []int{0, 6} {
		if _, err := env.rideSvc.Rate(context.Background(), first.ID, "rider-1", rating); !errors.Is(err, service.ErrInvalidRating) {
			t.Errorf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}

	if _, err := env.rideSvc.Rate(context.Background(), first.ID, "rider-1", 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := env.rideSvc.Rate(context.Background(), first.ID, "rider-1", 5); !errors.Is(err, service.ErrAlreadyRated) {
		t.Errorf("expected ErrAlreadyRated, got %v", err)
	}
	if _, err := env.rideSvc.Rate(context.Background(), second.ID, "rider-1", 5); !errors.Is(err, service.ErrRiderNotOwner) {
		t.Errorf("expected ErrRiderNotOwner, got %v", err)
	}
	if _, err := env.rideSvc.Rate(context.Background(), second.ID, "rider-2", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rating := env.drivers.GetDriver("driver-1").Stats.Rating
	if rating == nil || *rating != 4.5 {
		t.Errorf("expected driver rating 4.5, got %v", rating)
	}
}

func TestRate_OnlyCompletedRides(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, false)
	ride := env.ongoingRide(t, "rider-1", "driver-1")

	if _, err := env.rideSvc.Rate(context.Background(), ride.ID, "rider-1", 5); !errors.Is(err, service.ErrRideNotInExpectedState) {
		t.Errorf("expected ErrRideNotInExpectedState, got %v", err)
	}
}

func TestGet_VisibleToPartiesAndOpenRequests(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, false)
	ride := env.createRide(t, "rider-1")

	if _, err := env.rideSvc.Get(context.Background(), ride.ID, driver("driver-2")); err != nil {
		t.Errorf("any driver should see an open request, got %v", err)
	}
	if _, err := env.rideSvc.Get(context.Background(), ride.ID, rider("rider-2")); !errors.Is(err, service.ErrNotRideParty) {
		t.Errorf("expected ErrNotRideParty for another rider, got %v", err)
	}

	if _, err := env.rideSvc.Accept(context.Background(), ride.ID, "driver-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := env.rideSvc.Get(context.Background(), ride.ID, driver("driver-2")); !errors.Is(err, service.ErrNotRideParty) {
		t.Errorf("expected ErrNotRideParty once assigned, got %v", err)
	}
	if _, err := env.rideSvc.Get(context.Background(), "missing", rider("rider-1")); !errors.Is(err, service.ErrRideNotFound) {
		t.Errorf("expected ErrRideNotFound, got %v", err)
	}
}

func TestReceipt_OnlyForCompletedRides(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, false)
	ride := env.ongoingRide(t, "rider-1", "driver-1")

	if _, err := env.rideSvc.Receipt(context.Background(), ride.ID, rider("rider-1")); !errors.Is(err, service.ErrReceiptNotFound) {
		t.Errorf("expected ErrReceiptNotFound, got %v", err)
	}

	done := env.completedRide(t, "rider-1", "driver-1")
	receipt, err := env.rideSvc.Receipt(context.Background(), done.ID, driver("driver-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.PaymentMethod != domain.PaymentMethodCash || receipt.PaymentStatus != domain.PaymentStatusPaid {
		t.Errorf("unexpected receipt payment: %s/%s", receipt.PaymentMethod, receipt.PaymentStatus)
	}
}

func TestHistory_NewestFirstPerActor(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, false)
	env.createRide(t, "rider-1")
	second := env.acceptedRide(t, "rider-1", "driver-1")

	rides, err := env.rideSvc.History(context.Background(), rider("rider-1"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rides) != 2 {
		t.Fatalf("expected 2 rides, got %d", len(rides))
	}
	if rides[0].CreatedAt.Before(rides[1].CreatedAt) {
		t.Error("expected newest first")
	}

	driverRides, _ := env.rideSvc.History(context.Background(), driver("driver-1"), 10)
	if len(driverRides) != 1 || driverRides[0].ID != second.ID {
		t.Errorf("expected only the accepted ride for the driver, got %d", len(driverRides))
	}
}

func TestNotifications_DroppedSilentlyWithoutSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, false)

	// Neither party is connected; every transition still succeeds.
	env.completedRide(t, "rider-1", "driver-1")
	env.settle()

	if n := env.transport.Count(service.EventRideConfirmed) + env.transport.Count(service.EventRideEnded); n != 0 {
		t.Errorf("expected no pushes without sessions, got %d", n)
	}

	types := env.publisher.Types()
	if len(types) == 0 {
		t.Error("expected lifecycle events on the stream regardless of sessions")
	}
}
