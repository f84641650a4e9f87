package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

// ServerFrame is what the hub writes to a websocket.
type ServerFrame struct {
	Kind    string        `json:"kind"`
	Event   *Event        `json:"event,omitempty"`
	Sub     *Subscription `json:"subscription,omitempty"`
	Code    string        `json:"code,omitempty"`
	Message string        `json:"message,omitempty"`
}

type client struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte

	mu   sync.RWMutex
	subs map[string]Subscription
}

func newClient(userID int64, conn *websocket.Conn) *client {
	return &client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		subs:   make(map[string]Subscription),
	}
}

func (c *client) subscribe(s Subscription) {
	c.mu.Lock()
	c.subs[s.key()] = s
	c.mu.Unlock()
}

func (c *client) unsubscribe(s Subscription) {
	c.mu.Lock()
	delete(c.subs, s.key())
	c.mu.Unlock()
}

func (c *client) wants(table string, record map[string]any) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.subs {
		if s.Matches(table, record) {
			return true
		}
	}
	return false
}

// Hub tracks connected clients per user. A user may hold several
// connections (phone and tablet).
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*client]struct{}
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients: make(map[int64]map[*client]struct{}),
		log:     log,
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// Dispatch fans the event out to matching clients of its audience. Slow
// clients whose buffer is full miss the event.
func (h *Hub) Dispatch(ev Event) int {
	var record map[string]any
	if len(ev.Record) > 0 {
		if err := json.Unmarshal(ev.Record, &record); err != nil {
			record = nil
		}
	}

	frame, err := json.Marshal(ServerFrame{Kind: "change", Event: &Event{
		Table:  ev.Table,
		Type:   ev.Type,
		Record: ev.Record,
	}})
	if err != nil {
		h.log.Warn("realtime: encode frame failed", zap.Error(err))
		return 0
	}

	delivered := 0
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, userID := range ev.Audience {
		for c := range h.clients[userID] {
			if !c.wants(ev.Table, record) {
				continue
			}
			select {
			case c.send <- frame:
				delivered++
			default:
				h.log.Debug("realtime: client too slow, event skipped",
					zap.Int64("user_id", userID), zap.String("table", ev.Table))
			}
		}
	}
	return delivered
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, userID)
	}
}

// serve registers the connection and blocks until it is closed.
func (h *Hub) serve(conn *websocket.Conn, userID int64) {
	c := newClient(userID, conn)
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("realtime: read failed", zap.Int64("user_id", c.userID), zap.Error(err))
			}
			return
		}
		h.handleFrame(c, raw)
	}
}

// ClientFrame is what clients send: subscribe, unsubscribe or ping.
type ClientFrame struct {
	Action string `json:"action"`
	Subscription
}

func (h *Hub) handleFrame(c *client, raw []byte) {
	var f ClientFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		h.reply(c, ServerFrame{Kind: "error", Code: "INVALID_JSON", Message: "frame is not valid JSON"})
		return
	}

	switch f.Action {
	case "subscribe":
		if f.Table == "" {
			h.reply(c, ServerFrame{Kind: "error", Code: "TABLE_REQUIRED", Message: "table is required"})
			return
		}
		sub := f.Subscription
		c.subscribe(sub)
		h.reply(c, ServerFrame{Kind: "subscribed", Sub: &sub})
	case "unsubscribe":
		sub := f.Subscription
		c.unsubscribe(sub)
		h.reply(c, ServerFrame{Kind: "unsubscribed", Sub: &sub})
	case "ping":
		h.reply(c, ServerFrame{Kind: "pong"})
	default:
		h.reply(c, ServerFrame{Kind: "error", Code: "UNKNOWN_ACTION", Message: "unknown action: " + f.Action})
	}
}

func (h *Hub) reply(c *client, f ServerFrame) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.userID][c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
