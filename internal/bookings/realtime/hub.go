// Package realtime pushes availability changes to websocket subscribers of a
// facility.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"facilio/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	UpdateMessageType = "update"

	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = 2 * pingPeriod
	sendBuffer = 16
)

// Update tells clients to refetch availability for the unit and date.
type Update struct {
	Type          string `json:"type"`
	FacilityID    string `json:"facility_id"`
	SubfacilityID string `json:"subfacility_id,omitempty"`
	Date          string `json:"date"`
}

// subscriber owns one connection. Only its write pump writes data frames, so
// a broadcast never waits on the network.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

type Hub struct {
	upgrader    websocket.Upgrader
	mu          sync.Mutex
	subscribers map[string]map[*subscriber]struct{}
	closed      bool
	log         *logger.Logger
}

// NewHub accepts upgrades from any origin when allowedOrigins is empty or
// contains "*".
func NewHub(allowedOrigins []string, log *logger.Logger) *Hub {
	h := &Hub{
		subscribers: make(map[string]map[*subscriber]struct{}),
		log:         log,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		if len(set) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Serve upgrades the request and keeps the connection subscribed to
// facilityID until the client goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, facilityID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "facility_id", facilityID, "error", err)
		return
	}

	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.add(facilityID, sub) {
		_ = conn.Close()
		return
	}
	h.log.Debug("WebSocket subscriber connected", "facility_id", facilityID)

	done := make(chan struct{})
	defer func() {
		close(done)
		h.remove(facilityID, sub)
		h.log.Debug("WebSocket subscriber disconnected", "facility_id", facilityID)
	}()

	go h.writePump(sub, done)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump delivers queued updates and keepalive pings. A failed write
// closes the connection, which ends the read loop in Serve.
func (h *Hub) writePump(sub *subscriber, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case payload := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.log.Debug("WebSocket write failed", "error", err)
				_ = sub.conn.Close()
				return
			}
		case <-ticker.C:
			if err := sub.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = sub.conn.Close()
				return
			}
		}
	}
}

func (h *Hub) add(facilityID string, sub *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	subs, ok := h.subscribers[facilityID]
	if !ok {
		subs = make(map[*subscriber]struct{})
		h.subscribers[facilityID] = subs
	}
	subs[sub] = struct{}{}
	return true
}

func (h *Hub) remove(facilityID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.subscribers[facilityID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.subscribers, facilityID)
		}
	}
	_ = sub.conn.Close()
}

// Subscribers returns the number of open connections for facilityID.
func (h *Hub) Subscribers(facilityID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[facilityID])
}

// AvailabilityChanged queues an Update for the facility's subscribers without
// blocking. Subscribers whose queue is full are dropped.
func (h *Hub) AvailabilityChanged(facilityID, subfacilityID, date string) {
	payload, err := json.Marshal(Update{
		Type:          UpdateMessageType,
		FacilityID:    facilityID,
		SubfacilityID: subfacilityID,
		Date:          date,
	})
	if err != nil {
		h.log.Error("Failed to encode availability update", "facility_id", facilityID, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers[facilityID] {
		select {
		case sub.send <- payload:
		default:
			h.log.Debug("Dropping slow websocket subscriber", "facility_id", facilityID)
			delete(h.subscribers[facilityID], sub)
			_ = sub.conn.Close()
		}
	}
	if len(h.subscribers[facilityID]) == 0 {
		delete(h.subscribers, facilityID)
	}
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for facilityID, subs := range h.subscribers {
		for sub := range subs {
			_ = sub.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			_ = sub.conn.Close()
		}
		delete(h.subscribers, facilityID)
	}
}
