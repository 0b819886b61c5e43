package service

import (
	"context"
	"errors"
	"log"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/redis"
	"github.com/atharavsawant52/NeoRide/internal/repository"
)

// DefaultSearchRadiusKm is the dispatch radius used when none is configured.
const DefaultSearchRadiusKm = 2.0

// DirectoryService answers "which drivers are near this point" queries.
// Positions come from the geo index, vehicle details from the profile cache
// (falling back to the driver table) and reachability from the session registry.
type DirectoryService struct {
	locationStore redis.LocationStoreInterface
	cacheStore    redis.CacheStoreInterface
	sessionStore  redis.SessionStoreInterface
	driverRepo    repository.DriverRepository
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(
	locationStore redis.LocationStoreInterface,
	cacheStore redis.CacheStoreInterface,
	sessionStore redis.SessionStoreInterface,
	driverRepo repository.DriverRepository,
) *DirectoryService {
	return &DirectoryService{
		locationStore: locationStore,
		cacheStore:    cacheStore,
		sessionStore:  sessionStore,
		driverRepo:    driverRepo,
	}
}

// CandidateQuery describes a radius search.
type CandidateQuery struct {
	Lat      float64
	Lng      float64
	RadiusKm float64             // 0 uses DefaultSearchRadiusKm
	Class    domain.VehicleClass // empty means every class
}

// FindCandidates returns every driver whose last position is within the
// radius, restricted to the requested class when one is given. Drivers
// without a live session are included with an empty SessionID.
func (s *DirectoryService) FindCandidates(ctx context.Context, q CandidateQuery) ([]domain.DriverPresence, error) {
	if !isValidLatitude(q.Lat) || !isValidLongitude(q.Lng) {
		return nil, ErrInvalidLocation
	}

	radiusKm := q.RadiusKm
	if radiusKm <= 0 {
		radiusKm = DefaultSearchRadiusKm
	}

	nearby, err := s.locationStore.FindNearbyDrivers(ctx, q.Lat, q.Lng, radiusKm)
	if err != nil {
		return nil, err
	}
	if len(nearby) == 0 {
		return nil, nil
	}

	driverIDs := make([]string, len(nearby))
	for i, loc := range nearby {
		driverIDs[i] = loc.DriverID
	}

	profiles, err := s.profiles(ctx, driverIDs)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.DriverPresence, 0, len(nearby))
	for _, loc := range nearby {
		profile, ok := profiles[loc.DriverID]
		if !ok {
			continue
		}
		class := domain.VehicleClass(profile.VehicleClass)
		if q.Class != "" && class != q.Class {
			continue
		}
		candidates = append(candidates, domain.DriverPresence{
			DriverID:     loc.DriverID,
			Lat:          loc.Lat,
			Lng:          loc.Lng,
			VehicleClass: class,
			Capacity:     profile.Capacity,
			DistanceKm:   loc.DistanceKm,
		})
	}

	s.attachSessions(ctx, candidates)
	return candidates, nil
}

// Profile returns one driver's cached profile.
func (s *DirectoryService) Profile(ctx context.Context, driverID string) (*redis.CachedDriver, error) {
	profiles, err := s.profiles(ctx, []string{driverID})
	if err != nil {
		return nil, err
	}
	profile, ok := profiles[driverID]
	if !ok {
		return nil, ErrDriverNotFound
	}
	return profile, nil
}

// profiles resolves vehicle details for the drivers, cache first.
func (s *DirectoryService) profiles(ctx context.Context, driverIDs []string) (map[string]*redis.CachedDriver, error) {
	cached, missing, err := s.cacheStore.GetDriversBatch(ctx, driverIDs)
	if err != nil {
		// Cache down: everything comes from the database.
		cached, missing = make(map[string]*redis.CachedDriver, len(driverIDs)), driverIDs
	}

	var fresh []*redis.CachedDriver
	for _, id := range missing {
		driver, err := s.driverRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		profile := toCachedDriver(driver)
		cached[id] = profile
		fresh = append(fresh, profile)
	}

	if len(fresh) > 0 {
		if err := s.cacheStore.SetDriversBatch(ctx, fresh); err != nil {
			log.Printf("directory: failed to cache %d driver profiles: %v", len(fresh), err)
		}
	}
	return cached, nil
}

// attachSessions fills SessionID for candidates that are connected.
// A registry failure leaves every candidate unreachable rather than failing the search.
func (s *DirectoryService) attachSessions(ctx context.Context, candidates []domain.DriverPresence) {
	if len(candidates) == 0 {
		return
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.DriverID
	}

	sessions, err := s.sessionStore.LookupMany(ctx, domain.ActorDriver, ids)
	if err != nil {
		log.Printf("directory: session lookup failed: %v", err)
		return
	}
	for i := range candidates {
		candidates[i].SessionID = sessions[candidates[i].DriverID]
	}
}

func toCachedDriver(driver *domain.Driver) *redis.CachedDriver {
	cached := &redis.CachedDriver{
		ID:           driver.ID,
		Name:         driver.Name,
		Phone:        driver.Phone,
		Status:       string(driver.Status),
		VehicleClass: string(driver.Vehicle.Class),
		Plate:        driver.Vehicle.Plate,
		Color:        driver.Vehicle.Color,
		VehicleName:  driver.Vehicle.Name,
		Capacity:     driver.Vehicle.Capacity,
	}
	if driver.Stats.Rating != nil {
		cached.Rating = *driver.Stats.Rating
	}
	return cached
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
