package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialProgress(t *testing.T, server *httptest.Server, profileID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/progress?profileId=" + profileID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestProgressHubBroadcast(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewProgressHub()
	router := gin.New()
	router.GET("/ws/progress", hub.Handler)
	server := httptest.NewServer(router)
	defer server.Close()

	conn := dialProgress(t, server, "u1")
	defer conn.Close()
	other := dialProgress(t, server, "u2")
	defer other.Close()

	// Registration races the dial returning; give the handler a beat.
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast(ProgressEvent{Type: "level_up", ProfileID: "u1", Level: 2, XP: 250})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev ProgressEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "level_up", ev.Type)
	assert.Equal(t, "u1", ev.ProfileID)
	assert.Equal(t, 2, ev.Level)
	assert.NotZero(t, ev.Timestamp)

	// The other profile's subscriber sees nothing.
	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "no event expected for u2")
}

func TestProgressHubRequiresProfileID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewProgressHub()
	router := gin.New()
	router.GET("/ws/progress", hub.Handler)
	server := httptest.NewServer(router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws/progress")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
