// ABOUTME: HTTP server exposing live trajectory telemetry over WebSocket
// ABOUTME: Greets each client with server/hello, then streams frames
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Resonate-Protocol/orbit/internal/live"
	"github.com/Resonate-Protocol/orbit/internal/version"
	"github.com/gorilla/websocket"
)

// DefaultPath is the WebSocket endpoint path
const DefaultPath = "/ws"

// Config holds telemetry server configuration
type Config struct {
	Port     int    // 0 picks a free port
	Path     string // defaults to DefaultPath
	Name     string
	TickRate int
}

// Server publishes live session telemetry to WebSocket clients
type Server struct {
	config     Config
	hub        *Hub
	upgrader   websocket.Upgrader
	httpServer *http.Server
	listener   net.Listener
	hubOnce    sync.Once
}

// NewServer creates a telemetry server
func NewServer(config Config) *Server {
	if config.Path == "" {
		config.Path = DefaultPath
	}

	return &Server{
		config: config,
		hub:    NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Telemetry is read-only; any local viewer may connect
			},
		},
	}
}

// Handler returns the HTTP handler and starts the hub on first use
func (s *Server) Handler() http.Handler {
	s.hubOnce.Do(func() { go s.hub.Run() })

	mux := http.NewServeMux()
	mux.HandleFunc(s.config.Path, s.handleWebSocket)
	return mux
}

// Start listens on the configured port and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.config.Port, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Telemetry server listening on %s%s", ln.Addr(), s.config.Path)

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("Telemetry server error: %v", err)
		}
	}()

	return nil
}

// Port returns the bound port, or the configured one before Start
func (s *Server) Port() int {
	if s.listener != nil {
		if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			return addr.Port
		}
	}
	return s.config.Port
}

// Path returns the WebSocket endpoint path
func (s *Server) Path() string {
	return s.config.Path
}

// Stop shuts down the HTTP server and disconnects clients
func (s *Server) Stop(ctx context.Context) error {
	s.hub.Stop()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	return s.hub.ClientCount()
}

// Publish broadcasts a message without blocking
func (s *Server) Publish(msgType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: msgType, Payload: payload})
	if err != nil {
		log.Printf("Failed to marshal %s: %v", msgType, err)
		return
	}
	s.hub.Broadcast(data)
}

// PublishFrame broadcasts one live tick
func (s *Server) PublishFrame(f live.Frame) {
	s.Publish(TypeTrajectoryFrame, NewTrajectoryFrame(f))
}

// PublishSession broadcasts a session state change
func (s *Server) PublishSession(session, state string, duration time.Duration) {
	s.Publish(TypeSessionState, NewSessionState(session, state, duration))
}

// handleWebSocket upgrades, greets and registers a client
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	hello := Message{
		Type: TypeServerHello,
		Payload: ServerHello{
			Name:            s.config.Name,
			ProductName:     version.Product,
			Manufacturer:    version.Manufacturer,
			SoftwareVersion: version.Version,
			TickRate:        s.config.TickRate,
		},
	}
	if err := conn.WriteJSON(hello); err != nil {
		log.Printf("Failed to send server/hello: %v", err)
		conn.Close()
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}

	select {
	case s.hub.register <- c:
	case <-s.hub.done:
		conn.Close()
		return
	}

	log.Printf("Telemetry client connected: %s", conn.RemoteAddr())

	go c.writePump()
	go c.readPump(s.hub)
}
