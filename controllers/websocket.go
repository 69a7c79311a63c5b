package controllers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"landslide-monitor/metrics"
	"landslide-monitor/models"
	"landslide-monitor/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Event is one message pushed to dashboards.
type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Alert is sent alongside a reading that is not Normal.
type Alert struct {
	Message     string        `json:"message"`
	SensorID    uint          `json:"sensor_id"`
	Name        string        `json:"name"`
	Location    string        `json:"location"`
	Status      models.Status `json:"status"`
	TriggeredBy string        `json:"triggered_by"`
	RecordedAt  time.Time     `json:"recorded_at"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub keeps the connected dashboards and broadcasts sensor changes to them.
// A client whose buffer is full is dropped.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*wsClient]struct{}
	upgrader websocket.Upgrader
	log      *zap.Logger
	metrics  *metrics.Metrics
}

// NewHub creates a hub. m may be nil.
func NewHub(log *zap.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients: make(map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log:     log.Named("websocket"),
		metrics: m,
	}
}

// HandleWebSocket upgrades the request and serves the client until it goes away.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debug("upgrade failed", zap.Error(err))
		return
	}
	client := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(client)

	go h.writePump(client)
	h.readPump(client)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
	h.updateGauge()
}

func (h *Hub) SensorSaved(s models.Sensor) {
	h.Broadcast("sensor", s)
}

func (h *Hub) SensorDeleted(id uint) {
	h.Broadcast("sensor_deleted", gin.H{"id": id})
}

func (h *Hub) ReadingRecorded(s models.Sensor, r models.SensorHistory) {
	h.Broadcast("reading", r)
	if r.Status == models.StatusNormal {
		return
	}
	h.Broadcast("alert", Alert{
		Message:     "Abnormal data detected!",
		SensorID:    s.ID,
		Name:        s.Name,
		Location:    s.Location,
		Status:      r.Status,
		TriggeredBy: utils.TriggeredBy(r),
		RecordedAt:  r.RecordedAt,
	})
}

// Broadcast sends an event to every connected client without blocking.
func (h *Hub) Broadcast(eventType string, data any) {
	msg, err := json.Marshal(Event{Type: eventType, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		h.log.Error("failed to marshal event", zap.String("type", eventType), zap.Error(err))
		return
	}

	var slow []*wsClient
	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.log.Warn("dropping slow client", zap.String("remote", client.conn.RemoteAddr().String()))
		h.unregister(client)
	}
}

func (h *Hub) register(client *wsClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.updateGauge()
	h.log.Info("client connected", zap.Int("clients", n))
}

func (h *Hub) unregister(client *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.updateGauge()
		h.log.Info("client disconnected", zap.Int("clients", n))
	}
}

func (h *Hub) updateGauge() {
	if h.metrics != nil {
		h.metrics.WebsocketClients.Set(float64(h.Clients()))
	}
}

// readPump discards client messages and keeps the connection alive. It
// returns when the connection fails.
func (h *Hub) readPump(client *wsClient) {
	defer func() {
		h.unregister(client)
		client.conn.Close()
	}()
	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump is the only writer of the connection.
func (h *Hub) writePump(client *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
