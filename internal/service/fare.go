package service

import (
	"math"

	"github.com/atharavsawant52/NeoRide/internal/config"
	"github.com/atharavsawant52/NeoRide/internal/domain"
)

// RouteMetrics is the distance and travel time between two addresses.
type RouteMetrics struct {
	DistanceMeters  int64
	DurationSeconds int64
}

// FareEngine prices trips from a static tariff table. It holds no mutable
// state, so quoting is deterministic and safe for concurrent use.
type FareEngine struct {
	tariffs map[domain.VehicleClass]config.Tariff
}

// NewFareEngine creates a FareEngine from the configured tariffs.
// Classes without a tariff are priced at zero base and rates.
func NewFareEngine(cfg config.FareConfig) *FareEngine {
	tariffs := make(map[domain.VehicleClass]config.Tariff, len(cfg.Tariffs))
	for name, t := range cfg.Tariffs {
		if class, ok := domain.ParseVehicleClass(name); ok {
			tariffs[class] = t
		}
	}
	return &FareEngine{tariffs: tariffs}
}

// Quote prices the route for each requested class.
func (e *FareEngine) Quote(m RouteMetrics, classes []domain.VehicleClass) map[domain.VehicleClass]int64 {
	quote := make(map[domain.VehicleClass]int64, len(classes))
	for _, class := range classes {
		quote[class] = e.price(m, class)
	}
	return quote
}

// QuoteRide builds the full breakdown and selects the total for the chosen class.
func (e *FareEngine) QuoteRide(m RouteMetrics, class domain.VehicleClass) domain.FareQuote {
	breakdown := e.Quote(m, domain.VehicleClasses)
	return domain.FareQuote{
		Breakdown: breakdown,
		Total:     breakdown[class],
	}
}

func (e *FareEngine) price(m RouteMetrics, class domain.VehicleClass) int64 {
	t := e.tariffs[class]

	km := math.Max(0, float64(m.DistanceMeters)) / 1000
	minutes := math.Max(0, float64(m.DurationSeconds)) / 60

	amount := math.Round(t.Base + km*t.PerKm + minutes*t.PerMinute)
	if amount < 0 {
		return 0
	}
	return int64(amount)
}
