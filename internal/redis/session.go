package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atharavsawant52/NeoRide/internal/domain"
)

// SessionTTL bounds how long a binding outlives its last heartbeat.
const SessionTTL = 90 * time.Second

const sessionKeyPrefix = "session:"

// compareAndDelete removes KEYS[1] only while it still holds ARGV[1].
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// compareAndExpire refreshes the TTL of KEYS[1] only while it still holds ARGV[1].
var compareAndExpire = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// SessionStore binds an actor to the realtime session that can reach it.
// Only one session is stored per actor; the first writer wins and only the
// owning session may clear the binding.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client, ttl: SessionTTL}
}

func sessionKey(actorType domain.ActorType, actorID string) string {
	return sessionKeyPrefix + string(actorType) + ":" + actorID
}

// Register binds sessionID to the actor. It returns false when another
// session already holds the binding.
func (s *SessionStore) Register(ctx context.Context, actor domain.Actor, sessionID string) (bool, error) {
	key := sessionKey(actor.Type, actor.ID)

	ok, err := s.client.SetNX(ctx, key, sessionID, s.ttl).Result()
	if err != nil || ok {
		return ok, err
	}

	// Re-joining on the same connection keeps the binding.
	refreshed, err := s.Touch(ctx, actor, sessionID)
	if err != nil {
		return false, err
	}
	return refreshed, nil
}

// Lookup returns the actor's session, or "" when it has none.
func (s *SessionStore) Lookup(ctx context.Context, actor domain.Actor) (string, error) {
	sessionID, err := s.client.Get(ctx, sessionKey(actor.Type, actor.ID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return sessionID, err
}

// LookupMany resolves sessions for many actors of one type in a single round trip.
// Actors without a session are absent from the result.
func (s *SessionStore) LookupMany(ctx context.Context, actorType domain.ActorType, ids []string) (map[string]string, error) {
	result := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(actorType, id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, v := range values {
		if sessionID, ok := v.(string); ok && sessionID != "" {
			result[ids[i]] = sessionID
		}
	}
	return result, nil
}

// Touch extends the binding if sessionID still owns it.
func (s *SessionStore) Touch(ctx context.Context, actor domain.Actor, sessionID string) (bool, error) {
	n, err := compareAndExpire.Run(ctx, s.client,
		[]string{sessionKey(actor.Type, actor.ID)}, sessionID, s.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Clear removes the binding if sessionID still owns it.
func (s *SessionStore) Clear(ctx context.Context, actor domain.Actor, sessionID string) error {
	return compareAndDelete.Run(ctx, s.client, []string{sessionKey(actor.Type, actor.ID)}, sessionID).Err()
}
