package controllers

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	logrus "github.com/sirupsen/logrus"

	"shuttle_tracker/internal/attendance"
	"shuttle_tracker/internal/tracker"
)

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for development (restrict in production!)
	},
}

// Frame is one WebSocket message. Type is "bus", "attendance", or
// "sos"; Payload is the full current snapshot for that type, never a
// delta, mirroring the store subscription contract.
type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// SnapshotHub fans snapshot frames out to every connected client.
// Students and drivers get the same stream; what each screen renders
// from it is the client's business.
type SnapshotHub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan Frame
	mu        sync.Mutex
}

// NewSnapshotHub creates the hub and starts its broadcast loop.
func NewSnapshotHub() *SnapshotHub {
	hub := &SnapshotHub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Frame, 100),
	}
	go hub.run()
	return hub
}

func (h *SnapshotHub) run() {
	for frame := range h.broadcast {
		h.mu.Lock()
		for conn := range h.clients {
			if err := conn.WriteJSON(frame); err != nil {
				if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
					logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Client closed during broadcast, unregistering")
					delete(h.clients, conn)
				} else {
					logrus.WithError(err).WithField("conn_ptr", fmt.Sprintf("%p", conn)).Warn("Failed to send snapshot frame")
				}
			}
		}
		h.mu.Unlock()
	}
}

// RegisterClient adds a connection to the fan-out set.
func (h *SnapshotHub) RegisterClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Client registered with SnapshotHub")
}

// UnregisterClient removes a disconnected client.
func (h *SnapshotHub) UnregisterClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Client unregistered from SnapshotHub")
}

// Publish queues a frame for broadcast, dropping it when the channel is
// full; the next snapshot supersedes it anyway.
func (h *SnapshotHub) Publish(frame Frame) {
	select {
	case h.broadcast <- frame:
	default:
		logrus.Warn("Snapshot broadcast channel full, dropping frame")
	}
}

// WebSocketController upgrades client connections onto the hub.
type WebSocketController struct {
	Hub *SnapshotHub
}

// HandleSnapshots upgrades the connection and streams snapshot frames
// until the client disconnects. Clients do not send messages; anything
// received besides a close is ignored.
func (wc *WebSocketController) HandleSnapshots(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	wc.Hub.RegisterClient(conn)
	defer wc.Hub.UnregisterClient(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.Info("Snapshot WebSocket closed")
			} else {
				logrus.WithError(err).Error("Error reading WebSocket message")
			}
			return
		}
		logrus.Warn("Snapshot client sent unexpected message. Ignoring.")
	}
}

// RunFeedBridge forwards the bus feed and attendance roster onto the
// hub for as long as the context lives. The feeds' disposers release
// the underlying store watches on shutdown.
func RunFeedBridge(ctx context.Context, hub *SnapshotHub, sync *tracker.Synchronizer, att *attendance.Service) {
	busFeed := sync.SubscribeToBus(ctx)
	rosterFeed := att.Subscribe(ctx)

	go func() {
		defer busFeed.Cancel()
		defer rosterFeed.Cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case reading, ok := <-busFeed.Readings():
				if !ok {
					return
				}
				hub.Publish(Frame{Type: "bus", Payload: reading})
			case roster, ok := <-rosterFeed.Rosters():
				if !ok {
					return
				}
				hub.Publish(Frame{Type: "attendance", Payload: roster})
			}
		}
	}()
}
