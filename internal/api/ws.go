package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

// EventsWSHandler handles GET /v1/dispatch/events/ws: a websocket stream of
// dispatch events for the caller's organization. Ops dashboards use this to
// refresh when a new proposal lands.
func (s *Server) EventsWSHandler(w http.ResponseWriter, r *http.Request) {
	p := s.getPrincipal(r)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	ch := s.Broker.Subscribe(p.Org)
	defer s.Broker.Unsubscribe(p.Org, ch)

	// drain client frames so pings/pongs and close frames are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()
	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-keepalive.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
