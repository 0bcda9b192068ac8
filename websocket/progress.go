// Package websocket pushes progress events (XP, level-ups, achievement
// unlocks, debate completions) to connected clients.
package websocket

import (
	"net/http"
	"sync"
	"time"

	"debatecraft/models"
	"debatecraft/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	// In production, adjust the CheckOrigin function to allow only trusted origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const writeWait = 5 * time.Second

// ProgressEvent is pushed to every client subscribed to a profile.
type ProgressEvent struct {
	Type         string                      `json:"type"` // xp_gained, level_up, achievement_unlocked, debate_completed, module_completed
	ProfileID    string                      `json:"profileId"`
	XP           int                         `json:"xp,omitempty"`
	Level        int                         `json:"level,omitempty"`
	Achievement  *models.Achievement         `json:"achievement,omitempty"`
	ModuleID     string                      `json:"moduleId,omitempty"`
	DebateRecord *models.DebateSessionRecord `json:"debateRecord,omitempty"`
	Timestamp    int64                       `json:"timestamp"`
}

type client struct {
	conn      *websocket.Conn
	profileID string
	mu        sync.Mutex
}

func (c *client) send(ev ProgressEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(ev)
}

// ProgressHub fans progress events out to the clients watching each profile.
type ProgressHub struct {
	mu      sync.Mutex
	clients map[string]map[*client]struct{}
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{clients: make(map[string]map[*client]struct{})}
}

// Handler upgrades the connection and keeps it registered until the peer
// disconnects. The profile to watch comes from the query string.
func (h *ProgressHub) Handler(c *gin.Context) {
	profileID := c.Query("profileId")
	if profileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing profileId parameter"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{conn: conn, profileID: profileID}
	h.register(cl)
	defer h.unregister(cl)
	defer conn.Close()

	// Drain the connection so pings and close frames are processed; the
	// server never acts on inbound messages.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *ProgressHub) register(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[cl.profileID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[cl.profileID] = set
	}
	set[cl] = struct{}{}
}

func (h *ProgressHub) unregister(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[cl.profileID]
	if !ok {
		return
	}
	delete(set, cl)
	if len(set) == 0 {
		delete(h.clients, cl.profileID)
	}
}

// Broadcast delivers the event to every client watching its profile.
// Write failures drop the client; slow peers never block progress updates.
func (h *ProgressHub) Broadcast(ev ProgressEvent) {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}

	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients[ev.ProfileID]))
	for cl := range h.clients[ev.ProfileID] {
		targets = append(targets, cl)
	}
	h.mu.Unlock()

	for _, cl := range targets {
		if err := cl.send(ev); err != nil {
			logger.Log.Debug("dropping websocket client",
				zap.String("profileId", ev.ProfileID), zap.Error(err))
			h.unregister(cl)
			cl.conn.Close()
		}
	}
}
