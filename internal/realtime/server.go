package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/sosoxd3/f90-music/internal/engagement"
)

var upgrader = websocket.Upgrader{
	// Same-origin in production; the showcase site has no credentials to
	// protect over this channel.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Server struct {
	hub    *Hub
	bus    *engagement.Bus
	logger *log.Logger
}

func NewServer(hub *Hub, bus *engagement.Bus, logger *log.Logger) *Server {
	return &Server{hub: hub, bus: bus, logger: logger}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/ws", s.ServeWS)
	return r
}

// RunBusSubscriber forwards engagement change events into the hub until
// the subscription is cancelled.
func (s *Server) RunBusSubscriber() func() {
	events, cancel := s.bus.Subscribe()
	go func() {
		for ev := range events {
			msg, err := json.Marshal(map[string]any{
				"type":     "engagement",
				"trackId":  ev.TrackID,
				"field":    ev.Field,
				"newValue": ev.NewValue,
			})
			if err != nil {
				s.logger.Error("encode event", "err", err)
				continue
			}
			s.hub.broadcast <- msg
		}
	}()
	return cancel
}

// ServeWS upgrades the connection and registers the client with the hub.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", "err", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	s.hub.register <- client

	welcome := map[string]any{
		"type": "welcome",
		"now":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if b, err := json.Marshal(welcome); err == nil {
		client.send <- b
	}

	go client.writePump()
	go client.readPump()
}
