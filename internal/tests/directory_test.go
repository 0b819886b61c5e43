package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/service"
)

func TestDirectory_FiltersByClassAndRadius(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("car-near", domain.VehicleClassCar, pickupLat+0.002, pickupLng, true)
	env.addDriver("car-mid", domain.VehicleClassCar, pickupLat+0.010, pickupLng, false)
	env.addDriver("moto-near", domain.VehicleClassMoto, pickupLat, pickupLng+0.002, true)
	env.addDriver("car-far", domain.VehicleClassCar, pickupLat+0.5, pickupLng, true)

	candidates, err := env.directory.FindCandidates(context.Background(), service.CandidateQuery{
		Lat:      pickupLat,
		Lng:      pickupLng,
		RadiusKm: 2,
		Class:    domain.VehicleClassCar,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("expected 2 car candidates, got %d", len(candidates))
	}
	if candidates[0].DriverID != "car-near" || candidates[1].DriverID != "car-mid" {
		t.Errorf("expected nearest first, got %s then %s", candidates[0].DriverID, candidates[1].DriverID)
	}
	if !candidates[0].Reachable() || candidates[0].SessionID != sessionOf(driver("car-near")) {
		t.Errorf("expected car-near to carry its session, got %q", candidates[0].SessionID)
	}
	if candidates[1].Reachable() {
		t.Error("car-mid has no session and must not be reachable")
	}
	if candidates[0].Capacity != 4 || candidates[0].VehicleClass != domain.VehicleClassCar {
		t.Errorf("unexpected capability: %+v", candidates[0])
	}
}

func TestDirectory_EmptyClassReturnsEveryClass(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("car-1", domain.VehicleClassCar, pickupLat, pickupLng, false)
	env.addDriver("moto-1", domain.VehicleClassMoto, pickupLat, pickupLng, false)

	candidates, err := env.directory.FindCandidates(context.Background(), service.CandidateQuery{Lat: pickupLat, Lng: pickupLng})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Errorf("expected both drivers with the default radius, got %d", len(candidates))
	}
}

func TestDirectory_RejectsInvalidCoordinates(t *testing.T) {
	t.Parallel()

	env := newTestEnv()

	for _, q := range []service.CandidateQuery{
		{Lat: 91, Lng: 0},
		{Lat: -91, Lng: 0},
		{Lat: 0, Lng: 181},
	} {
		if _, err := env.directory.FindCandidates(context.Background(), q); !errors.Is(err, service.ErrInvalidLocation) {
			t.Errorf("%+v: expected ErrInvalidLocation, got %v", q, err)
		}
	}
}

func TestDirectory_PopulatesProfileCacheOnMiss(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.addDriver("driver-1", domain.VehicleClassPremium, pickupLat, pickupLng, false)

	if env.cache.Has("driver-1") {
		t.Fatal("cache should start empty")
	}

	profile, err := env.directory.Profile(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.VehicleClass != string(domain.VehicleClassPremium) || profile.Plate != "KA01driver-1" {
		t.Errorf("unexpected profile: %+v", profile)
	}
	if !env.cache.Has("driver-1") {
		t.Error("expected profile to be cached after a miss")
	}

	if _, err := env.directory.Profile(context.Background(), "ghost"); !errors.Is(err, service.ErrDriverNotFound) {
		t.Errorf("expected ErrDriverNotFound, got %v", err)
	}
}

func TestDirectory_SkipsPositionsWithoutProfile(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	_ = env.locations.UpdateLocation(context.Background(), "unregistered", pickupLat, pickupLng)

	candidates, err := env.directory.FindCandidates(context.Background(), service.CandidateQuery{Lat: pickupLat, Lng: pickupLng})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
}
