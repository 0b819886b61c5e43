package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/service"
)

func validDriverRequest(id string) service.RegisterDriverRequest {
	return service.RegisterDriverRequest{
		DriverID:     id,
		Name:         "Ravi Kumar",
		Email:        "ravi@example.com",
		Phone:        "+919800000000",
		VehicleClass: "car",
		Plate:        "KA01AB1234",
		Color:        "white",
		VehicleName:  "Swift Dzire",
		Capacity:     4,
	}
}

func TestDriverRegister(t *testing.T) {
	t.Parallel()

	env := newTestEnv()

	driver, err := env.driverSvc.Register(context.Background(), validDriverRequest("driver-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.Status != domain.DriverStatusInactive {
		t.Errorf("new drivers start inactive, got %s", driver.Status)
	}
	if driver.Vehicle.Class != domain.VehicleClassCar {
		t.Errorf("expected car, got %s", driver.Vehicle.Class)
	}
	if !env.cache.Has("driver-1") {
		t.Error("expected registered profile to be cached")
	}

	if _, err := env.driverSvc.Register(context.Background(), validDriverRequest("driver-1")); !errors.Is(err, service.ErrAlreadyRegistered) {
		t.Errorf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestDriverRegister_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv()

	testCases := []struct {
		name    string
		mutate  func(*service.RegisterDriverRequest)
		wantErr error
	}{
		{"missing id", func(r *service.RegisterDriverRequest) { r.DriverID = "" }, service.ErrInvalidDriverID},
		{"unknown class", func(r *service.RegisterDriverRequest) { r.VehicleClass = "boat" }, service.ErrInvalidVehicleClass},
		{"short name", func(r *service.RegisterDriverRequest) { r.Name = "Al" }, service.ErrInvalidDriverProfile},
		{"bad email", func(r *service.RegisterDriverRequest) { r.Email = "ravi.example.com" }, service.ErrInvalidDriverProfile},
		{"missing plate", func(r *service.RegisterDriverRequest) { r.Plate = "" }, service.ErrInvalidDriverProfile},
		{"zero capacity", func(r *service.RegisterDriverRequest) { r.Capacity = 0 }, service.ErrInvalidDriverProfile},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := validDriverRequest("driver-" + tc.name)
			tc.mutate(&req)
			if _, err := env.driverSvc.Register(context.Background(), req); !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestDriverUpdateLocation(t *testing.T) {
	t.Parallel()

	env := newTestEnv()

	err := env.driverSvc.UpdateLocation(context.Background(), service.UpdateLocationRequest{DriverID: "driver-1", Lat: 12.97, Lng: 77.59})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loc, ok := env.locations.Location("driver-1")
	if !ok || loc.Lat != 12.97 || loc.Lng != 77.59 {
		t.Errorf("expected stored position, got %+v (found %v)", loc, ok)
	}

	for _, req := range []service.UpdateLocationRequest{
		{DriverID: "driver-1", Lat: 100, Lng: 0},
		{DriverID: "driver-1", Lat: 0, Lng: -200},
	} {
		if err := env.driverSvc.UpdateLocation(context.Background(), req); !errors.Is(err, service.ErrInvalidLocation) {
			t.Errorf("%+v: expected ErrInvalidLocation, got %v", req, err)
		}
	}
	if err := env.driverSvc.UpdateLocation(context.Background(), service.UpdateLocationRequest{Lat: 1, Lng: 1}); !errors.Is(err, service.ErrInvalidDriverID) {
		t.Errorf("expected ErrInvalidDriverID, got %v", err)
	}
}

func TestDriverSetAvailability(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, false)
	if _, err := env.directory.Profile(context.Background(), "driver-1"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	if err := env.driverSvc.SetAvailability(context.Background(), "driver-1", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.drivers.GetDriver("driver-1").Status != domain.DriverStatusInactive {
		t.Error("expected driver inactive")
	}
	if env.cache.Has("driver-1") {
		t.Error("expected cached profile to be invalidated")
	}
	if _, ok := env.locations.Location("driver-1"); ok {
		t.Error("expected offline driver to leave the geo index")
	}
	candidates, err := env.directory.FindCandidates(context.Background(), service.CandidateQuery{Lat: pickupLat, Lng: pickupLng})
	if err != nil || len(candidates) != 0 {
		t.Errorf("expected no candidates for an offline driver, got %d (%v)", len(candidates), err)
	}

	if err := env.driverSvc.SetAvailability(context.Background(), "driver-1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.drivers.GetDriver("driver-1").Status != domain.DriverStatusActive {
		t.Error("expected driver active")
	}

	if err := env.driverSvc.SetAvailability(context.Background(), "ghost", true); !errors.Is(err, service.ErrDriverNotFound) {
		t.Errorf("expected ErrDriverNotFound, got %v", err)
	}
}

func TestDriverStats(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassCar, pickupLat, pickupLng, false)
	env.completedRide(t, "rider-1", "driver-1")

	stats, err := env.driverSvc.Stats(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Earnings != 230 || stats.RidesCount != 1 || stats.HoursWorked <= 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.Rating != nil {
		t.Errorf("expected no rating before the first rated ride, got %v", *stats.Rating)
	}

	if _, err := env.driverSvc.Stats(context.Background(), "ghost"); !errors.Is(err, service.ErrDriverNotFound) {
		t.Errorf("expected ErrDriverNotFound, got %v", err)
	}
}
