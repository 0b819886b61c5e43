package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// DriverProfileTTL bounds staleness of cached vehicle details.
const DriverProfileTTL = 10 * time.Minute

const driverCachePrefix = "cache:driver:"

// CachedDriver is the dispatch-relevant slice of a driver record: what the
// directory filters on and what the rider sees on confirmation.
type CachedDriver struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Status       string  `json:"status"`
	VehicleClass string  `json:"vehicle_class"`
	Plate        string  `json:"plate"`
	Color        string  `json:"color"`
	VehicleName  string  `json:"vehicle_name"`
	Capacity     int     `json:"capacity"`
	Rating       float64 `json:"rating"`
}

// CacheStore caches driver profiles in Redis as JSON strings.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

func profileKey(driverID string) string {
	return driverCachePrefix + driverID
}

// GetDriver returns a cached profile, or nil on a miss.
func (s *CacheStore) GetDriver(ctx context.Context, driverID string) (*CachedDriver, error) {
	hits, _, err := s.GetDriversBatch(ctx, []string{driverID})
	if err != nil {
		return nil, err
	}
	return hits[driverID], nil
}

// SetDriver stores a driver profile.
func (s *CacheStore) SetDriver(ctx context.Context, driver *CachedDriver) error {
	return s.SetDriversBatch(ctx, []*CachedDriver{driver})
}

// InvalidateDriver drops a profile so the next read goes to the database.
func (s *CacheStore) InvalidateDriver(ctx context.Context, driverID string) error {
	return s.client.Del(ctx, profileKey(driverID)).Err()
}

// GetDriversBatch reads many profiles with a single MGET. It returns the
// hits by driver ID and the IDs that missed. Entries that fail to decode
// count as misses.
func (s *CacheStore) GetDriversBatch(ctx context.Context, driverIDs []string) (map[string]*CachedDriver, []string, error) {
	hits := make(map[string]*CachedDriver, len(driverIDs))
	if len(driverIDs) == 0 {
		return hits, nil, nil
	}

	keys := make([]string, len(driverIDs))
	for i, id := range driverIDs {
		keys[i] = profileKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, err
	}

	var missing []string
	for i, v := range values {
		id := driverIDs[i]
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, id)
			continue
		}
		var profile CachedDriver
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			missing = append(missing, id)
			continue
		}
		hits[id] = &profile
	}
	return hits, missing, nil
}

// SetDriversBatch writes many profiles in one pipeline, each with its own TTL.
func (s *CacheStore) SetDriversBatch(ctx context.Context, drivers []*CachedDriver) error {
	if len(drivers) == 0 {
		return nil
	}

	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, d := range drivers {
			data, err := json.Marshal(d)
			if err != nil {
				return err
			}
			pipe.Set(ctx, profileKey(d.ID), data, DriverProfileTTL)
		}
		return nil
	})
	return err
}
