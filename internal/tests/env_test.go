package tests

import (
	"context"
	"testing"
	"time"

	"github.com/atharavsawant52/NeoRide/internal/config"
	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/service"
)

const (
	testKeySecret     = "test-key-secret"
	testWebhookSecret = "test-webhook-secret"
	testCurrency      = "INR"

	// Pickup coordinates returned by MockRoutes.
	pickupLat = 12.9716
	pickupLng = 77.5946

	testPickup      = "MG Road, Bengaluru"
	testDestination = "Indiranagar, Bengaluru"
)

var testTariffs = config.FareConfig{Tariffs: map[string]config.Tariff{
	"moto":    {Base: 20, PerKm: 10, PerMinute: 1.5},
	"car":     {Base: 50, PerKm: 26, PerMinute: 5},
	"premium": {Base: 80, PerKm: 35, PerMinute: 6},
	"auto":    {Base: 30, PerKm: 26, PerMinute: 5},
	"taxi":    {Base: 45, PerKm: 24, PerMinute: 4},
}}

// testEnv wires the real services over in-memory mocks.
type testEnv struct {
	rides     *MockRideRepository
	drivers   *MockDriverRepository
	events    *MockPaymentEventRepository
	users     *MockUserRepository
	tx        *MockTransactor
	locations *MockLocationStore
	sessions  *MockSessionStore
	cache     *MockCacheStore
	transport *MockTransport
	routes    *MockRoutes
	publisher *MockPublisher

	directory *service.DirectoryService
	dispatch  *service.DispatchService
	rideSvc   *service.RideService
	driverSvc *service.DriverService
	paySvc    *service.PaymentService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		drivers:   NewMockDriverRepository(),
		events:    NewMockPaymentEventRepository(),
		users:     NewMockUserRepository(),
		locations: NewMockLocationStore(),
		sessions:  NewMockSessionStore(),
		cache:     NewMockCacheStore(),
		transport: NewMockTransport(),
		routes:    NewMockRoutes(5000, 600),
		publisher: &MockPublisher{},
	}
	env.rides = NewMockRideRepository()
	env.rides.Drivers = env.drivers
	env.tx = NewMockTransactor(env.rides, env.drivers, env.events)

	env.directory = service.NewDirectoryService(env.locations, env.cache, env.sessions, env.drivers)
	env.dispatch = service.NewDispatchService(env.transport, env.sessions, env.directory, env.routes, env.publisher, 2)
	env.rideSvc = service.NewRideService(env.rides, env.events, env.drivers, env.tx,
		service.NewFareEngine(testTariffs), env.routes, env.dispatch, testCurrency)
	env.driverSvc = service.NewDriverService(env.locations, env.cache, env.drivers)
	env.paySvc = service.NewPaymentService(env.rides, env.events, env.tx, service.NewLocalOrderProvider(), env.dispatch,
		service.PaymentConfig{KeySecret: testKeySecret, WebhookSecret: testWebhookSecret, Currency: testCurrency})
	return env
}

func rider(id string) domain.Actor  { return domain.Actor{ID: id, Type: domain.ActorRider} }
func driver(id string) domain.Actor { return domain.Actor{ID: id, Type: domain.ActorDriver} }

func sessionOf(a domain.Actor) string { return "local:" + string(a.Type) + "-" + a.ID }

// addDriver registers a driver of the class at a position. Connected drivers
// get a session bound in the registry.
func (e *testEnv) addDriver(id string, class domain.VehicleClass, lat, lng float64, connected bool) {
	e.drivers.AddDriver(&domain.Driver{
		ID:      id,
		Name:    "Driver " + id,
		Email:   id + "@example.com",
		Status:  domain.DriverStatusActive,
		Vehicle: domain.Vehicle{Class: class, Plate: "KA01" + id, Color: "white", Capacity: 4},
	})
	_ = e.locations.UpdateLocation(context.Background(), id, lat, lng)
	if connected {
		e.sessions.Bind(driver(id), sessionOf(driver(id)))
	}
}

// connect binds a session for the actor.
func (e *testEnv) connect(a domain.Actor) {
	e.sessions.Bind(a, sessionOf(a))
}

func (e *testEnv) createRide(t *testing.T, riderID string) *domain.Ride {
	t.Helper()
	ride, err := e.rideSvc.Create(context.Background(), service.CreateRideRequest{
		RiderID:      riderID,
		Pickup:       testPickup,
		Destination:  testDestination,
		VehicleClass: "car",
	})
	if err != nil {
		t.Fatalf("create ride: %v", err)
	}
	return ride
}

func (e *testEnv) acceptedRide(t *testing.T, riderID, driverID string) *domain.Ride {
	t.Helper()
	ride := e.createRide(t, riderID)
	if _, err := e.rideSvc.Accept(context.Background(), ride.ID, driverID); err != nil {
		t.Fatalf("accept ride: %v", err)
	}
	return e.rides.GetRide(ride.ID)
}

func (e *testEnv) ongoingRide(t *testing.T, riderID, driverID string) *domain.Ride {
	t.Helper()
	ride := e.acceptedRide(t, riderID, driverID)
	if _, err := e.rideSvc.Start(context.Background(), ride.ID, driverID, ride.OTP); err != nil {
		t.Fatalf("start ride: %v", err)
	}
	return e.rides.GetRide(ride.ID)
}

func (e *testEnv) completedRide(t *testing.T, riderID, driverID string) *domain.Ride {
	t.Helper()
	ride := e.ongoingRide(t, riderID, driverID)
	if _, err := e.paySvc.AcknowledgeCash(context.Background(), ride.ID, driver(driverID)); err != nil {
		t.Fatalf("acknowledge cash: %v", err)
	}
	if _, err := e.rideSvc.Complete(context.Background(), ride.ID, driverID); err != nil {
		t.Fatalf("complete ride: %v", err)
	}
	return e.rides.GetRide(ride.ID)
}

// settle waits for every pending notification.
func (e *testEnv) settle() {
	e.dispatch.Wait()
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met: %s", msg)
}
