package realtime

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/atharavsawant52/NeoRide/internal/middleware"
	"github.com/atharavsawant52/NeoRide/internal/redis"
)

const (
	handleTimeout = 10 * time.Second
	relayTimeout  = 5 * time.Second
)

// Handler applies inbound events to the rest of the system.
type Handler interface {
	// Joined runs after the client's session has been bound.
	Joined(ctx context.Context, client *Client) error

	// HandleEvent applies one inbound event from a bound client.
	HandleEvent(ctx context.Context, client *Client, msg Envelope) error

	// Disconnected runs after a bound client's session has been cleared.
	Disconnected(ctx context.Context, client *Client)
}

// Hub owns the websocket connections of this instance. Session ids are
// "<instanceID>:<uuid>", so any instance can tell which one owns a session
// and relay pushes to it.
type Hub struct {
	instanceID string
	sessions   redis.SessionStoreInterface
	relay      redis.RelayInterface
	nrApp      *newrelic.Application
	handler    Handler
	upgrader   websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*Client

	wg sync.WaitGroup
}

// NewHub creates a new Hub.
func NewHub(
	instanceID string,
	sessions redis.SessionStoreInterface,
	relay redis.RelayInterface,
	nrApp *newrelic.Application,
) *Hub {
	return &Hub{
		instanceID: instanceID,
		sessions:   sessions,
		relay:      relay,
		nrApp:      nrApp,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*Client),
	}
}

// SetHandler installs the inbound event handler. It must be called before
// the hub serves connections.
func (h *Hub) SetHandler(handler Handler) {
	h.handler = handler
}

// Run relays pushes addressed to this instance until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	return h.relay.Subscribe(ctx, h.instanceID, h.Deliver)
}

// ServeWS upgrades an authenticated request to a websocket.
func (h *Hub) ServeWS(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("realtime: upgrade failed: %v", err)
		return
	}

	client := &Client{
		ID:    h.instanceID + ":" + uuid.New().String(),
		Actor: actor,
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),

		inbound: make(chan Envelope, inboundBuffer),
		drained: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	h.wg.Add(2)
	go client.writePump()
	go func() {
		defer h.wg.Done()
		client.processInbound()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

// Send pushes an event to a session. It reports false when the session is
// unknown; the caller treats that as a dropped push, not a failure.
func (h *Hub) Send(sessionID, event string, data any) bool {
	frame, err := encode(event, data)
	if err != nil {
		log.Printf("realtime: failed to encode %s: %v", event, err)
		return false
	}

	if h.deliver(sessionID, frame) {
		return true
	}

	owner := instanceOf(sessionID)
	if owner == "" || owner == h.instanceID {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
	defer cancel()

	msg := redis.RelayMessage{SessionID: sessionID, Event: event}
	if msg.Data, err = encodeData(data); err != nil {
		return false
	}
	if err := h.relay.Publish(ctx, owner, msg); err != nil {
		log.Printf("realtime: relay to %s failed: %v", owner, err)
		return false
	}
	return true
}

// Deliver pushes a relayed message to a local session.
func (h *Hub) Deliver(msg redis.RelayMessage) {
	frame, err := encodeRaw(msg.Event, msg.Data)
	if err != nil {
		return
	}
	if !h.deliver(msg.SessionID, frame) {
		log.Printf("realtime: relayed %s for unknown session %s dropped", msg.Event, msg.SessionID)
	}
}

// Connected returns the number of open connections on this instance.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close drops every connection. Their cleanup runs before Wait returns.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		client.conn.Close()
	}
}

// Wait blocks until every connection and inbound handler has finished.
func (h *Hub) Wait() {
	h.wg.Wait()
}

func (h *Hub) isLocal(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[sessionID]
	return ok
}

// deliver queues a frame for a local session without blocking.
func (h *Hub) deliver(sessionID string, frame []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[sessionID]
	if !ok {
		return false
	}

	select {
	case client.send <- frame:
	default:
		log.Printf("realtime: session %s send buffer full, dropping frame", sessionID)
	}
	return true
}

// handle applies one inbound event. It runs on the client's inbound worker,
// so events of one client never overlap.
func (h *Hub) handle(client *Client, msg Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if h.nrApp != nil {
		txn := h.nrApp.StartTransaction("ws/" + msg.Event)
		defer txn.End()
		ctx = newrelic.NewContext(ctx, txn)
	}

	if err := h.apply(ctx, client, msg); err != nil {
		if txn := newrelic.FromContext(ctx); txn != nil {
			txn.NoticeError(err)
		}
		client.reply(EventError, ErrorPayload{Event: msg.Event, Message: errorMessage(err)})
	}
}

func (h *Hub) apply(ctx context.Context, client *Client, msg Envelope) error {
	if msg.Event == EventJoin {
		return h.join(ctx, client)
	}
	if !client.Bound() {
		return errNotJoined
	}
	if h.handler == nil {
		return errUnknownEvent
	}
	return h.handler.HandleEvent(ctx, client, msg)
}

// join binds the actor to this client's session. The first session to join
// wins; joining again on the same connection refreshes the binding.
func (h *Hub) join(ctx context.Context, client *Client) error {
	bound, err := h.sessions.Register(ctx, client.Actor, client.ID)
	if err != nil {
		return err
	}
	if !bound {
		return errSessionTaken
	}

	first := client.bound.CompareAndSwap(false, true)
	if !h.isLocal(client.ID) {
		// The connection closed while registering.
		return h.sessions.Clear(ctx, client.Actor, client.ID)
	}

	if first && h.handler != nil {
		if err := h.handler.Joined(ctx, client); err != nil {
			log.Printf("realtime: join hook for %s failed: %v", client.Actor, err)
		}
	}

	client.reply(EventJoined, JoinedPayload{SessionID: client.ID})
	return nil
}

// touch refreshes the registry TTL after a pong.
func (h *Hub) touch(client *Client) {
	if !client.Bound() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
		defer cancel()
		if _, err := h.sessions.Touch(ctx, client.Actor, client.ID); err != nil {
			log.Printf("realtime: session %s refresh failed: %v", client.ID, err)
		}
	}()
}

// unregister forgets a closed connection and releases its session binding
// if it still holds it.
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.send)
	}
	h.mu.Unlock()

	if !client.Bound() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if err := h.sessions.Clear(ctx, client.Actor, client.ID); err != nil {
		log.Printf("realtime: failed to clear session %s: %v", client.ID, err)
	}
	if h.handler != nil {
		h.handler.Disconnected(ctx, client)
	}
}

// instanceOf returns the instance id embedded in a session id.
func instanceOf(sessionID string) string {
	i := strings.LastIndex(sessionID, ":")
	if i <= 0 {
		return ""
	}
	return sessionID[:i]
}
