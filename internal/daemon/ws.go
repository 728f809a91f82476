package daemon

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"timeturner/internal/logging"
)

// statusPushInterval paces the websocket status feed.
const statusPushInterval = time.Second

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is LAN-facing and token-gated at the HTTP layer; browser
	// origin checks add nothing for the monitoring views that connect here.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWebsocket streams the status payload to monitoring clients at a fixed
// cadence until the client disconnects.
func (s *apiServer) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log().Warn("websocket upgrade failed", logging.Error(err))
		return
	}
	defer conn.Close()

	// Drain client frames so pings and close messages are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statusPushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case <-ticker.C:
			status := s.daemon.Status(r.Context())
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(status); err != nil {
				return
			}
		}
	}
}
