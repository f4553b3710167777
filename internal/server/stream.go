package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"fsmonitor/internal/models"
	"fsmonitor/internal/scheduler"
)

const (
	streamPushInterval = 5 * time.Second
	streamWriteTimeout = 5 * time.Second
	streamAlertLimit   = 20
)

var streamUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(strings.TrimSpace(r.Host))
		originHost := strings.ToLower(strings.TrimSpace(u.Host))
		return host == originHost
	},
}

type streamPayload struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Status      statusResponse           `json:"status"`
	Targets     []scheduler.TargetStatus `json:"targets"`
	Alerts      []models.Alert           `json:"alerts"`
}

func (s *Server) buildStreamPayload() streamPayload {
	return streamPayload{
		GeneratedAt: time.Now().UTC(),
		Status:      s.status(),
		Targets:     s.targets(),
		Alerts:      s.recentAlerts(streamAlertLimit),
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.serveStream(conn)
}

// serveStream pushes a payload on connect and on every interval until the
// client goes away.
func (s *Server) serveStream(conn *websocket.Conn) {
	defer conn.Close()

	if err := writeStreamPayload(conn, s.buildStreamPayload()); err != nil {
		return
	}

	ticker := time.NewTicker(s.pushInterval)
	defer ticker.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ticker.C:
			if err := writeStreamPayload(conn, s.buildStreamPayload()); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func writeStreamPayload(conn *websocket.Conn, payload streamPayload) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(payload)
}
