package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Websocket keepalive parameters.
const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// upgrader accepts any origin: the proxy serves LAN dashboards, and the
// endpoint only streams property values.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleThingsWebsocket streams property change events to the client
// until it disconnects.
func (s *Server) handleThingsWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := s.deps.Bridge.Subscribe()
	defer cancel()

	// Drain client frames so pongs and close frames are processed; the
	// read error doubles as the disconnect signal.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-clientGone:
			return
		case <-r.Context().Done():
			return
		case event := <-events:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				s.logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
