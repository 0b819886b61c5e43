package realtime

import (
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/atharavsawant52/NeoRide/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
	sendBuffer     = 256
	inboundBuffer  = 64
)

// Client is one websocket connection of an authenticated actor.
type Client struct {
	ID    string
	Actor domain.Actor

	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	bound atomic.Bool

	// inbound is written only by readPump and drained in order by
	// processInbound; drained closes once the worker has finished.
	inbound chan Envelope
	drained chan struct{}
}

// Bound reports whether the client has joined and owns its actor's session.
func (c *Client) Bound() bool {
	return c.bound.Load()
}

// readPump reads frames until the connection fails and queues them for
// processInbound, so a slow ledger call never stalls reads. Queued events are
// finished before the client is unregistered.
func (c *Client) readPump() {
	defer func() {
		close(c.inbound)
		<-c.drained
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.hub.touch(c)
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("realtime: session %s read error: %v", c.ID, err)
			}
			return
		}

		// A frame that fails to decode is queued with an empty event so its
		// error reply keeps its place in line.
		var msg Envelope
		if err := json.Unmarshal(data, &msg); err != nil {
			msg = Envelope{}
		}
		c.inbound <- msg
	}
}

// processInbound applies the client's events one at a time, in arrival order.
func (c *Client) processInbound() {
	defer close(c.drained)
	for msg := range c.inbound {
		if msg.Event == "" {
			c.reply(EventError, ErrorPayload{Message: string(errMalformedMessage)})
			continue
		}
		c.hub.handle(c, msg)
	}
}

// writePump owns all writes to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("realtime: session %s write error: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply pushes an event straight to this client.
func (c *Client) reply(event string, data any) {
	frame, err := encode(event, data)
	if err != nil {
		log.Printf("realtime: failed to encode %s: %v", event, err)
		return
	}
	c.hub.deliver(c.ID, frame)
}
