package tests

import (
	"context"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/maps"
	"github.com/atharavsawant52/NeoRide/internal/redis"
	"github.com/atharavsawant52/NeoRide/internal/repository"
	"github.com/atharavsawant52/NeoRide/internal/stream"
)

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	IncrementStatsCallCount int32
	UpdateStatusCallCount   int32
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drivers[driver.ID]; ok {
		return repository.ErrDuplicate
	}
	copy := *driver
	m.drivers[driver.ID] = &copy
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	return nil
}

func (m *MockDriverRepository) IncrementStats(ctx context.Context, id string, earnings int64, hours float64) error {
	atomic.AddInt32(&m.IncrementStatsCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Stats.Earnings += earnings
	driver.Stats.RidesCount++
	driver.Stats.HoursWorked += hours
	return nil
}

func (m *MockDriverRepository) LockForUpdate(ctx context.Context, id string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.drivers[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (m *MockDriverRepository) SetRating(ctx context.Context, id string, rating float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Stats.Rating = &rating
	return nil
}

// GetDriver returns driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[id]
	if !ok {
		return nil
	}
	copy := *d
	return &copy
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is an in-memory RideRepository whose transition
// methods apply the same guards as the SQL conditional updates.
type MockRideRepository struct {
	mu    sync.Mutex
	rides map[string]*domain.Ride

	// Drivers, when set, makes AssignDriver fail for unknown drivers the way
	// the foreign key does.
	Drivers *MockDriverRepository

	CreateError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ride
	m.rides[ride.ID] = &copy
}

// GetRide returns a snapshot of a ride for test assertions.
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil
	}
	copy := *r
	return &copy
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.AddRide(ride)
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	if r := m.GetRide(id); r != nil {
		return r, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockRideRepository) GetByPaymentOrderID(ctx context.Context, orderID string) (*domain.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rides {
		if r.PaymentOrderID != "" && r.PaymentOrderID == orderID {
			copy := *r
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockRideRepository) ListByRider(ctx context.Context, riderID string, limit int) ([]*domain.Ride, error) {
	return m.list(func(r *domain.Ride) bool { return r.RiderID == riderID }, limit), nil
}

func (m *MockRideRepository) ListByDriver(ctx context.Context, driverID string, limit int) ([]*domain.Ride, error) {
	return m.list(func(r *domain.Ride) bool { return r.DriverID == driverID }, limit), nil
}

func (m *MockRideRepository) list(match func(*domain.Ride) bool, limit int) []*domain.Ride {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if match(r) {
			copy := *r
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

// update applies fn to the stored ride under the lock when guard holds.
func (m *MockRideRepository) update(rideID string, guard func(*domain.Ride) bool, fn func(*domain.Ride)) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[rideID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if !guard(r) {
		return false, nil
	}
	fn(r)
	return true, nil
}

func (m *MockRideRepository) AssignDriver(ctx context.Context, rideID, driverID string, at time.Time) (bool, error) {
	if m.Drivers != nil && m.Drivers.GetDriver(driverID) == nil {
		return false, repository.ErrNotFound
	}
	return m.update(rideID,
		func(r *domain.Ride) bool { return r.Status == domain.RideStatusRequested && r.DriverID == "" },
		func(r *domain.Ride) {
			r.DriverID = driverID
			r.Status = domain.RideStatusAccepted
			r.AcceptedAt = at
			r.UpdatedAt = at
		})
}

func (m *MockRideRepository) Start(ctx context.Context, p repository.StartParams) (bool, error) {
	return m.update(p.RideID,
		func(r *domain.Ride) bool { return r.DriverID == p.DriverID && r.Status == domain.RideStatusAccepted },
		func(r *domain.Ride) {
			r.Status = domain.RideStatusOngoing
			r.StartedAt = p.StartedAt
			r.UpdatedAt = p.StartedAt
		})
}

func (m *MockRideRepository) Complete(ctx context.Context, p repository.CompleteParams) (bool, error) {
	return m.update(p.RideID,
		func(r *domain.Ride) bool {
			return r.DriverID == p.DriverID && r.Status == domain.RideStatusOngoing &&
				r.PaymentStatus == domain.PaymentStatusPaid
		},
		func(r *domain.Ride) {
			r.Status = domain.RideStatusCompleted
			r.EndedAt = p.EndedAt
			r.DurationSeconds = p.DurationSeconds
			if p.DistanceMeters > 0 {
				r.DistanceMeters = p.DistanceMeters
			}
			r.UpdatedAt = p.EndedAt
		})
}

func (m *MockRideRepository) Cancel(ctx context.Context, rideID, cancelledBy string, at time.Time) (bool, error) {
	return m.update(rideID,
		func(r *domain.Ride) bool { return !r.Status.IsTerminal() },
		func(r *domain.Ride) {
			r.Status = domain.RideStatusCancelled
			r.CancelledAt = at
			r.CancelledBy = cancelledBy
			r.UpdatedAt = at
		})
}

func (m *MockRideRepository) SetPaymentOrder(ctx context.Context, rideID, orderID string) (bool, error) {
	return m.update(rideID,
		func(r *domain.Ride) bool { return r.PaymentOrderID == "" },
		func(r *domain.Ride) {
			r.PaymentOrderID = orderID
			r.PaymentMethod = domain.PaymentMethodOnline
		})
}

func (m *MockRideRepository) MarkPaid(ctx context.Context, rideID string, method domain.PaymentMethod, paymentID string) (bool, error) {
	return m.update(rideID,
		func(r *domain.Ride) bool { return r.PaymentStatus == domain.PaymentStatusPending },
		func(r *domain.Ride) {
			r.PaymentStatus = domain.PaymentStatusPaid
			r.PaymentMethod = method
			r.PaymentID = paymentID
		})
}

func (m *MockRideRepository) SetRating(ctx context.Context, rideID string, rating int) (bool, error) {
	return m.update(rideID,
		func(r *domain.Ride) bool { return r.Status == domain.RideStatusCompleted && r.Rating == 0 },
		func(r *domain.Ride) { r.Rating = rating })
}

func (m *MockRideRepository) AverageDriverRating(ctx context.Context, driverID string) (float64, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum, count int
	for _, r := range m.rides {
		if r.DriverID == driverID && r.Status == domain.RideStatusCompleted && r.Rating > 0 {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT EVENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentEventRepository is an append-only in-memory audit log.
type MockPaymentEventRepository struct {
	mu     sync.Mutex
	events []domain.PaymentEvent
	nextID int64
}

// NewMockPaymentEventRepository creates a new mock payment event repository.
func NewMockPaymentEventRepository() *MockPaymentEventRepository {
	return &MockPaymentEventRepository{}
}

func (m *MockPaymentEventRepository) Append(ctx context.Context, event *domain.PaymentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	event.ID = m.nextID
	m.events = append(m.events, *event)
	return nil
}

func (m *MockPaymentEventRepository) ListByRide(ctx context.Context, rideID string) ([]domain.PaymentEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.PaymentEvent
	for _, e := range m.events {
		if e.RideID == rideID {
			result = append(result, e)
		}
	}
	return result, nil
}

// Count returns how many events of the given type a ride has.
func (m *MockPaymentEventRepository) Count(rideID string, eventType domain.PaymentEventType) int {
	events, _ := m.ListByRide(context.Background(), rideID)
	n := 0
	for _, e := range events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; ok {
		return repository.ErrDuplicate
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *u
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK TRANSACTOR
// ──────────────────────────────────────────────

// MockTransactor serializes transactions over the mock repositories. It
// does not roll back; tests only rely on commit behavior.
type MockTransactor struct {
	mu    sync.Mutex
	repos repository.Repositories
}

// NewMockTransactor binds the transactor to the given mocks.
func NewMockTransactor(rides *MockRideRepository, drivers *MockDriverRepository, events *MockPaymentEventRepository) *MockTransactor {
	return &MockTransactor{repos: repository.Repositories{
		Rides:         rides,
		Drivers:       drivers,
		PaymentEvents: events,
	}}
}

func (m *MockTransactor) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.repos)
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is an in-memory geo index using haversine distance.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations map[string]redis.DriverLocation

	beforeUpdate func(driverID string, lat, lng float64)

	UpdateCallCount int32
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{locations: make(map[string]redis.DriverLocation)}
}

// SetBeforeUpdate installs a hook that runs before a position is stored.
func (m *MockLocationStore) SetBeforeUpdate(fn func(driverID string, lat, lng float64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beforeUpdate = fn
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	m.mu.RLock()
	hook := m.beforeUpdate
	m.mu.RUnlock()
	if hook != nil {
		hook(driverID, lat, lng)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[driverID] = redis.DriverLocation{DriverID: driverID, Lat: lat, Lng: lng}
	atomic.AddInt32(&m.UpdateCallCount, 1)
	return nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locations, driverID)
	return nil
}

func (m *MockLocationStore) FindNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]redis.DriverLocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []redis.DriverLocation
	for _, loc := range m.locations {
		d := haversineKm(lat, lng, loc.Lat, loc.Lng)
		if d <= radiusKm {
			loc.DistanceKm = d
			result = append(result, loc)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DistanceKm < result[j].DistanceKm })
	return result, nil
}

// Location returns the stored position of a driver.
func (m *MockLocationStore) Location(driverID string) (redis.DriverLocation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.locations[driverID]
	return loc, ok
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// ──────────────────────────────────────────────
// MOCK SESSION STORE
// ──────────────────────────────────────────────

// MockSessionStore mirrors the first-writer-wins registry.
type MockSessionStore struct {
	mu       sync.Mutex
	sessions map[domain.Actor]string

	TouchCallCount int32
}

// NewMockSessionStore creates a new mock session store.
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[domain.Actor]string)}
}

// Bind sets a session directly.
func (m *MockSessionStore) Bind(actor domain.Actor, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[actor] = sessionID
}

func (m *MockSessionStore) Register(ctx context.Context, actor domain.Actor, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.sessions[actor]
	if ok && current != sessionID {
		return false, nil
	}
	m.sessions[actor] = sessionID
	return true, nil
}

func (m *MockSessionStore) Lookup(ctx context.Context, actor domain.Actor) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[actor], nil
}

func (m *MockSessionStore) LookupMany(ctx context.Context, actorType domain.ActorType, ids []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[string]string)
	for _, id := range ids {
		if s, ok := m.sessions[domain.Actor{ID: id, Type: actorType}]; ok {
			result[id] = s
		}
	}
	return result, nil
}

func (m *MockSessionStore) Touch(ctx context.Context, actor domain.Actor, sessionID string) (bool, error) {
	atomic.AddInt32(&m.TouchCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[actor] == sessionID, nil
}

func (m *MockSessionStore) Clear(ctx context.Context, actor domain.Actor, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[actor] == sessionID {
		delete(m.sessions, actor)
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is an in-memory driver profile cache.
type MockCacheStore struct {
	mu      sync.RWMutex
	drivers map[string]*redis.CachedDriver
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{drivers: make(map[string]*redis.CachedDriver)}
}

func (m *MockCacheStore) GetDriver(ctx context.Context, driverID string) (*redis.CachedDriver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[driverID]
	if !ok {
		return nil, nil
	}
	copy := *d
	return &copy, nil
}

func (m *MockCacheStore) SetDriver(ctx context.Context, driver *redis.CachedDriver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *driver
	m.drivers[driver.ID] = &copy
	return nil
}

func (m *MockCacheStore) InvalidateDriver(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drivers, driverID)
	return nil
}

func (m *MockCacheStore) GetDriversBatch(ctx context.Context, driverIDs []string) (map[string]*redis.CachedDriver, []string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	found := make(map[string]*redis.CachedDriver)
	var missing []string
	for _, id := range driverIDs {
		if d, ok := m.drivers[id]; ok {
			copy := *d
			found[id] = &copy
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing, nil
}

func (m *MockCacheStore) SetDriversBatch(ctx context.Context, drivers []*redis.CachedDriver) error {
	for _, d := range drivers {
		_ = m.SetDriver(ctx, d)
	}
	return nil
}

// Has reports whether a profile is cached.
func (m *MockCacheStore) Has(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.drivers[driverID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK RELAY
// ──────────────────────────────────────────────

// MockRelay records cross-instance publishes.
type MockRelay struct {
	mu        sync.Mutex
	Published map[string][]redis.RelayMessage
}

// NewMockRelay creates a new mock relay.
func NewMockRelay() *MockRelay {
	return &MockRelay{Published: make(map[string][]redis.RelayMessage)}
}

func (m *MockRelay) Publish(ctx context.Context, instanceID string, msg redis.RelayMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published[instanceID] = append(m.Published[instanceID], msg)
	return nil
}

func (m *MockRelay) Subscribe(ctx context.Context, instanceID string, handle func(redis.RelayMessage)) error {
	<-ctx.Done()
	return ctx.Err()
}

// Messages returns what was published to an instance.
func (m *MockRelay) Messages(instanceID string) []redis.RelayMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]redis.RelayMessage(nil), m.Published[instanceID]...)
}

// ──────────────────────────────────────────────
// MOCK TRANSPORT, ROUTING AND STREAM
// ──────────────────────────────────────────────

// SentEvent is one push recorded by MockTransport.
type SentEvent struct {
	SessionID string
	Event     string
	Data      any
}

// MockTransport records every push.
type MockTransport struct {
	mu   sync.Mutex
	sent []SentEvent
}

// NewMockTransport creates a new mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

func (m *MockTransport) Send(sessionID, event string, data any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentEvent{SessionID: sessionID, Event: event, Data: data})
	return true
}

// SentTo returns the pushes delivered to a session.
func (m *MockTransport) SentTo(sessionID string) []SentEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []SentEvent
	for _, e := range m.sent {
		if e.SessionID == sessionID {
			result = append(result, e)
		}
	}
	return result
}

// Count returns the number of pushes of an event.
func (m *MockTransport) Count(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.sent {
		if e.Event == event {
			n++
		}
	}
	return n
}

// MockRoutes is a RoutingProvider with fixed answers.
type MockRoutes struct {
	mu          sync.Mutex
	Route       maps.Route
	Coordinates maps.Coordinates
	RouteErr    error
	GeocodeErr  error
}

// NewMockRoutes returns a provider that prices every trip at the given metrics.
func NewMockRoutes(distanceMeters, durationSeconds int64) *MockRoutes {
	return &MockRoutes{
		Route:       maps.Route{DistanceMeters: distanceMeters, DurationSeconds: durationSeconds},
		Coordinates: maps.Coordinates{Lat: 12.9716, Lng: 77.5946},
	}
}

// SetRouteError makes later RouteMetrics calls fail.
func (m *MockRoutes) SetRouteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RouteErr = err
}

func (m *MockRoutes) ResolveCoordinates(ctx context.Context, address string) (maps.Coordinates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Coordinates, m.GeocodeErr
}

func (m *MockRoutes) RouteMetrics(ctx context.Context, origin, destination string) (maps.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RouteErr != nil {
		return maps.Route{}, m.RouteErr
	}
	return m.Route, nil
}

// MockPublisher records stream events.
type MockPublisher struct {
	mu     sync.Mutex
	events []stream.RideEvent
}

func (m *MockPublisher) Publish(ctx context.Context, event stream.RideEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Types returns the published event types in order.
func (m *MockPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.events))
	for i, e := range m.events {
		types[i] = e.Type
	}
	return types
}
