package redis

import (
	"context"

	"github.com/atharavsawant52/NeoRide/internal/domain"
)

// LocationStoreInterface defines the geospatial index of driver positions.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error
	RemoveLocation(ctx context.Context, driverID string) error
	FindNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]DriverLocation, error)
}

// SessionStoreInterface defines the actor to session binding.
type SessionStoreInterface interface {
	Register(ctx context.Context, actor domain.Actor, sessionID string) (bool, error)
	Lookup(ctx context.Context, actor domain.Actor) (string, error)
	LookupMany(ctx context.Context, actorType domain.ActorType, ids []string) (map[string]string, error)
	Touch(ctx context.Context, actor domain.Actor, sessionID string) (bool, error)
	Clear(ctx context.Context, actor domain.Actor, sessionID string) error
}

// CacheStoreInterface defines the driver profile cache.
type CacheStoreInterface interface {
	GetDriver(ctx context.Context, driverID string) (*CachedDriver, error)
	SetDriver(ctx context.Context, driver *CachedDriver) error
	InvalidateDriver(ctx context.Context, driverID string) error
	GetDriversBatch(ctx context.Context, driverIDs []string) (map[string]*CachedDriver, []string, error)
	SetDriversBatch(ctx context.Context, drivers []*CachedDriver) error
}

// RelayInterface defines cross-instance delivery of realtime pushes.
type RelayInterface interface {
	Publish(ctx context.Context, instanceID string, msg RelayMessage) error
	Subscribe(ctx context.Context, instanceID string, handle func(RelayMessage)) error
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ SessionStoreInterface  = (*SessionStore)(nil)
	_ CacheStoreInterface    = (*CacheStore)(nil)
	_ RelayInterface         = (*Relay)(nil)
)
