package tests

import (
	"testing"

	"github.com/atharavsawant52/NeoRide/internal/config"
	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/service"
)

func TestFareEngine_QuotesEveryClass(t *testing.T) {
	t.Parallel()

	engine := service.NewFareEngine(testTariffs)
	metrics := service.RouteMetrics{DistanceMeters: 5000, DurationSeconds: 600}

	quote := engine.Quote(metrics, domain.VehicleClasses)

	testCases := []struct {
		class domain.VehicleClass
		want  int64
	}{
		{domain.VehicleClassMoto, 85},
		{domain.VehicleClassCar, 230},
		{domain.VehicleClassPremium, 315},
		{domain.VehicleClassAuto, 210},
		{domain.VehicleClassTaxi, 205},
	}

	for _, tc := range testCases {
		t.Run(string(tc.class), func(t *testing.T) {
			if got := quote[tc.class]; got != tc.want {
				t.Errorf("expected %d for %s, got %d", tc.want, tc.class, got)
			}
		})
	}
}

func TestFareEngine_RoundsToNearestUnit(t *testing.T) {
	t.Parallel()

	engine := service.NewFareEngine(testTariffs)

	// 20 + 1.25 km * 10 = 32.5
	quote := engine.Quote(service.RouteMetrics{DistanceMeters: 1250}, []domain.VehicleClass{domain.VehicleClassMoto})
	if quote[domain.VehicleClassMoto] != 33 {
		t.Errorf("expected 33, got %d", quote[domain.VehicleClassMoto])
	}
}

func TestFareEngine_ZeroRouteCostsBaseFare(t *testing.T) {
	t.Parallel()

	engine := service.NewFareEngine(testTariffs)
	quote := engine.Quote(service.RouteMetrics{}, []domain.VehicleClass{domain.VehicleClassCar})

	if quote[domain.VehicleClassCar] != 50 {
		t.Errorf("expected base fare 50, got %d", quote[domain.VehicleClassCar])
	}
}

func TestFareEngine_IsDeterministic(t *testing.T) {
	t.Parallel()

	engine := service.NewFareEngine(testTariffs)
	metrics := service.RouteMetrics{DistanceMeters: 7321, DurationSeconds: 1234}

	first := engine.QuoteRide(metrics, domain.VehicleClassPremium)
	for i := 0; i < 10; i++ {
		again := engine.QuoteRide(metrics, domain.VehicleClassPremium)
		if again.Total != first.Total {
			t.Fatalf("quote changed between calls: %d then %d", first.Total, again.Total)
		}
	}
}

func TestFareEngine_QuoteRideKeepsFullBreakdown(t *testing.T) {
	t.Parallel()

	engine := service.NewFareEngine(testTariffs)
	quote := engine.QuoteRide(service.RouteMetrics{DistanceMeters: 5000, DurationSeconds: 600}, domain.VehicleClassCar)

	if quote.Total != 230 {
		t.Errorf("expected total 230, got %d", quote.Total)
	}
	if len(quote.Breakdown) != len(domain.VehicleClasses) {
		t.Errorf("expected %d classes in breakdown, got %d", len(domain.VehicleClasses), len(quote.Breakdown))
	}
	if quote.Breakdown[domain.VehicleClassCar] != quote.Total {
		t.Error("breakdown entry for the chosen class should equal the total")
	}
}

func TestFareEngine_IgnoresUnknownTariffNames(t *testing.T) {
	t.Parallel()

	engine := service.NewFareEngine(config.FareConfig{Tariffs: map[string]config.Tariff{
		"hovercraft": {Base: 1000},
		"standard":   {Base: 40},
	}})

	quote := engine.Quote(service.RouteMetrics{}, []domain.VehicleClass{domain.VehicleClassCar, domain.VehicleClassMoto})

	// "standard" is an alias of car.
	if quote[domain.VehicleClassCar] != 40 {
		t.Errorf("expected aliased car tariff 40, got %d", quote[domain.VehicleClassCar])
	}
	if quote[domain.VehicleClassMoto] != 0 {
		t.Errorf("expected moto without tariff to be 0, got %d", quote[domain.VehicleClassMoto])
	}
}
