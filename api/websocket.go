package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Ch3ngL0rd/orderbooks/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced by the CORS layer in front.
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Hub fans engine events out to every connected WebSocket client. It
// implements events.Publisher, so the order service pushes straight into
// it.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Publish encodes an engine event and queues it for broadcast. A full
// queue drops the event for the live feed only; durable delivery is the
// outbox's job.
func (h *Hub) Publish(ev events.Event) {
	payload, err := ev.Encode()
	if err != nil {
		h.log.Error("encode event", zap.Uint64("feed_seq", ev.Seq), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.log.Warn("feed queue full, dropping event", zap.Uint64("feed_seq", ev.Seq))
	}
}

// Run owns the client set. Register, unregister and broadcast all happen
// on this goroutine, so the map needs no lock.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			// The join snapshot is built here, on the same goroutine that
			// orders broadcasts, so the client never misses an event
			// between snapshot and registration.
			if c.snapshot != nil {
				if payload, err := c.snapshot(); err != nil {
					h.log.Error("join snapshot", zap.String("client", c.id), zap.Error(err))
				} else {
					select {
					case c.send <- payload:
					default:
					}
				}
			}
			h.log.Info("ws client connected",
				zap.String("client", c.id),
				zap.Int("total", len(h.clients)),
			)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Info("ws client disconnected",
					zap.String("client", c.id),
					zap.Int("total", len(h.clients)),
				)
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer; cut it loose rather than stall the feed.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string

	// snapshot builds the client's first frame. The hub calls it while
	// registering the client.
	snapshot func() ([]byte, error)

	closeOnce sync.Once
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.closeOnce.Do(func() { c.conn.Close() })
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// The feed is one-way; inbound frames are drained for pong handling
	// only.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeOnce.Do(func() { c.conn.Close() })
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// wsSnapshot is the first frame every client receives: the full book at
// join time, after which incremental events follow.
type wsSnapshot struct {
	Type string       `json:"type"`
	Book BookSnapshot `json:"book"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("ws upgrade", zap.Error(err))
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
		id:   uuid.NewString(),
		snapshot: func() ([]byte, error) {
			return json.Marshal(wsSnapshot{Type: "snapshot", Book: s.bookSnapshot()})
		},
	}

	s.hub.register <- client
	go client.writePump()
	go client.readPump()
}
