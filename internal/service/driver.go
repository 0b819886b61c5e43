package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/redis"
	"github.com/atharavsawant52/NeoRide/internal/repository"
)

// DriverService handles captain registration, presence and stats.
type DriverService struct {
	locationStore redis.LocationStoreInterface
	cacheStore    redis.CacheStoreInterface
	driverRepo    repository.DriverRepository
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	locationStore redis.LocationStoreInterface,
	cacheStore redis.CacheStoreInterface,
	driverRepo repository.DriverRepository,
) *DriverService {
	return &DriverService{
		locationStore: locationStore,
		cacheStore:    cacheStore,
		driverRepo:    driverRepo,
	}
}

// RegisterDriverRequest contains a captain's profile and vehicle.
type RegisterDriverRequest struct {
	DriverID     string
	Name         string
	Email        string
	Phone        string
	VehicleClass string
	Plate        string
	Color        string
	VehicleName  string
	Capacity     int
}

// Register stores the profile of an authenticated captain.
func (s *DriverService) Register(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	class, ok := domain.ParseVehicleClass(req.VehicleClass)
	if !ok {
		return nil, ErrInvalidVehicleClass
	}
	if len(strings.TrimSpace(req.Name)) < 3 || !strings.Contains(req.Email, "@") ||
		strings.TrimSpace(req.Plate) == "" || strings.TrimSpace(req.Color) == "" || req.Capacity < 1 {
		return nil, ErrInvalidDriverProfile
	}

	driver := &domain.Driver{
		ID:     req.DriverID,
		Name:   strings.TrimSpace(req.Name),
		Email:  strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:  req.Phone,
		Status: domain.DriverStatusInactive,
		Vehicle: domain.Vehicle{
			Class:    class,
			Plate:    strings.ToUpper(strings.TrimSpace(req.Plate)),
			Color:    req.Color,
			Name:     req.VehicleName,
			Capacity: req.Capacity,
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}

	if err := s.cacheStore.SetDriver(ctx, toCachedDriver(driver)); err != nil {
		log.Printf("driver %s: failed to cache profile: %v", driver.ID, err)
	}
	return driver, nil
}

// Stats returns the captain's accumulated counters.
func (s *DriverService) Stats(ctx context.Context, driverID string) (domain.DriverStats, error) {
	if driverID == "" {
		return domain.DriverStats{}, ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.DriverStats{}, ErrDriverNotFound
		}
		return domain.DriverStats{}, err
	}
	return driver.Stats, nil
}

// UpdateLocationRequest contains the parameters for updating driver location.
type UpdateLocationRequest struct {
	DriverID string
	Lat      float64
	Lng      float64
}

// UpdateLocation overwrites the driver's position in the geo index.
// Only the driver's own authenticated calls reach here, so each position
// has a single writer.
func (s *DriverService) UpdateLocation(ctx context.Context, req UpdateLocationRequest) error {
	if req.DriverID == "" {
		return ErrInvalidDriverID
	}

	if !isValidLatitude(req.Lat) || !isValidLongitude(req.Lng) {
		return ErrInvalidLocation
	}

	return s.locationStore.UpdateLocation(ctx, req.DriverID, req.Lat, req.Lng)
}

// SetAvailability marks the captain active while connected and inactive after.
// Going offline also drops the position so searches stop returning the driver.
func (s *DriverService) SetAvailability(ctx context.Context, driverID string, online bool) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	status := domain.DriverStatusInactive
	if online {
		status = domain.DriverStatusActive
	}

	if err := s.driverRepo.UpdateStatus(ctx, driverID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDriverNotFound
		}
		return err
	}

	_ = s.cacheStore.InvalidateDriver(ctx, driverID)

	if !online {
		if err := s.locationStore.RemoveLocation(ctx, driverID); err != nil {
			log.Printf("driver: failed to remove position of %s: %v", driverID, err)
		}
	}
	return nil
}
