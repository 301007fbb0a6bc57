package websocket

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/lobbyserver/game/protocol"
	"github.com/wricardo/mcp-training/lobbyserver/game/registry"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

var errSendClosed = errors.New("connection closed")
var errSendFull = errors.New("send buffer full")

// Gateway accepts websocket connections and binds each one to the
// connection registry and the protocol handler. All session logic lives
// behind the handler; the gateway only moves frames.
type Gateway struct {
	registry *registry.Registry
	handler  *protocol.Handler
}

// NewGateway creates a websocket gateway over the given registry and
// protocol handler.
func NewGateway(reg *registry.Registry, handler *protocol.Handler) *Gateway {
	return &Gateway{
		registry: reg,
		handler:  handler,
	}
}

// Client is one websocket peer. It implements registry.Conn; outbound
// messages are queued on send and written by writePump.
type Client struct {
	id      string
	gateway *Gateway
	conn    *websocket.Conn
	send    chan []byte

	mu     sync.Mutex
	closed bool
}

// ServeWS upgrades the request and runs the connection until it closes.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		gateway: g,
		conn:    conn,
		send:    make(chan []byte, 256),
	}
	client.id = g.registry.Register(client)

	log.Printf("WebSocket connection %s accepted from %s", client.id, r.RemoteAddr)

	go client.writePump()
	go client.readPump()
}

// Send implements registry.Conn. It serializes v and queues it; a peer
// that stopped draining its queue counts as a failed write.
func (c *Client) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errSendClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return errSendFull
	}
}

// close marks the client dead and releases writePump. Safe to call once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump pumps frames from the websocket into the protocol handler.
// When the connection dies, for any reason, it tears down the registry
// entry and reports the disconnect exactly once.
func (c *Client) readPump() {
	defer func() {
		c.gateway.registry.Unregister(c.id)
		c.close()
		c.conn.Close()
		c.gateway.handler.HandleDisconnect(c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error on connection %s: %v", c.id, err)
			}
			break
		}
		c.gateway.handler.HandleMessage(c.id, frame)
	}
}

// writePump pumps queued messages to the websocket connection and keeps
// the peer alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
