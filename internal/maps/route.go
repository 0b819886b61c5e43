package maps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"googlemaps.github.io/maps"
)

var (
	// ErrUnavailable is returned when no API key is configured or the API call fails.
	ErrUnavailable = errors.New("maps provider unavailable")

	// ErrNoRoute is returned when the provider has no result for the addresses.
	ErrNoRoute = errors.New("no route found")
)

// Coordinates is a resolved address.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Route is the driving distance and time between two addresses.
type Route struct {
	DistanceMeters  int64
	DurationSeconds int64
}

// RouteService resolves addresses and driving routes through Google Maps.
type RouteService struct {
	client *maps.Client
	region string
}

// NewRouteService creates a RouteService. An empty apiKey yields a service
// whose calls all fail with ErrUnavailable.
func NewRouteService(apiKey, region string) (*RouteService, error) {
	if apiKey == "" {
		return &RouteService{region: region}, nil
	}

	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client, region: region}, nil
}

// Enabled reports whether an API client is configured.
func (s *RouteService) Enabled() bool {
	return s.client != nil
}

// ResolveCoordinates geocodes an address.
func (s *RouteService) ResolveCoordinates(ctx context.Context, address string) (Coordinates, error) {
	if s.client == nil {
		return Coordinates{}, ErrUnavailable
	}

	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{
		Address: address,
		Region:  s.region,
	})
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: geocode: %v", ErrUnavailable, err)
	}
	if len(results) == 0 {
		return Coordinates{}, ErrNoRoute
	}

	loc := results[0].Geometry.Location
	return Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// RouteMetrics returns the driving distance and duration from origin to destination.
func (s *RouteService) RouteMetrics(ctx context.Context, origin, destination string) (Route, error) {
	if s.client == nil {
		return Route{}, ErrUnavailable
	}

	resp, err := s.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{origin},
		Destinations: []string{destination},
		Mode:         maps.TravelModeDriving,
	})
	if err != nil {
		return Route{}, fmt.Errorf("%w: distance matrix: %v", ErrUnavailable, err)
	}

	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return Route{}, ErrNoRoute
	}

	element := resp.Rows[0].Elements[0]
	if element.Status != "OK" {
		return Route{}, ErrNoRoute
	}

	return Route{
		DistanceMeters:  int64(element.Distance.Meters),
		DurationSeconds: int64(element.Duration / time.Second),
	}, nil
}
