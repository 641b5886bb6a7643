package ws

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
	pingPeriod = pongWait * 9 / 10
)

type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Hub keeps the editors connected to each course.
type Hub struct {
	rooms map[string]map[*websocket.Conn]*Client // by courseID
	mu    sync.RWMutex
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*websocket.Conn]*Client),
		log:   log,
	}
}

// CourseEvent is pushed to every editor of a course after a change.
type CourseEvent struct {
	Type     string `json:"type"`
	CourseID string `json:"courseId"`
	Action   string `json:"action"`
	TargetID string `json:"targetId,omitempty"`
}

type Stats struct {
	Rooms   int `json:"rooms"`
	Clients int `json:"clients"`
}

func (h *Hub) Register(courseID, userID string, conn *websocket.Conn) *Client {
	client := &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.mu.Lock()
	if _, ok := h.rooms[courseID]; !ok {
		h.rooms[courseID] = make(map[*websocket.Conn]*Client)
	}
	h.rooms[courseID][conn] = client
	h.mu.Unlock()

	go h.writePump(client)
	return client
}

func (h *Hub) Unregister(courseID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[courseID]
	if !ok {
		return
	}
	if client, ok := clients[conn]; ok {
		close(client.Send)
		delete(clients, conn)
	}
	if len(clients) == 0 {
		delete(h.rooms, courseID)
	}
}

// Broadcast drops the message for clients whose buffer is full.
func (h *Hub) Broadcast(courseID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[courseID] {
		select {
		case client.Send <- data:
		default:
			h.log.Warn("ws client too slow, message dropped", zap.String("course_id", courseID), zap.String("user_id", client.UserID))
		}
	}
}

// BroadcastCourseChanged tells open editors to reload the course.
func (h *Hub) BroadcastCourseChanged(courseID, action, targetID string) {
	data, err := json.Marshal(CourseEvent{
		Type:     "course_changed",
		CourseID: courseID,
		Action:   action,
		TargetID: targetID,
	})
	if err != nil {
		h.log.Error("ws marshal failed", zap.Error(err))
		return
	}
	h.Broadcast(courseID, data)
}

func (h *Hub) GetStats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := Stats{Rooms: len(h.rooms)}
	for _, clients := range h.rooms {
		stats.Clients += len(clients)
	}
	return stats
}

func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
