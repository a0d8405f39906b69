// ABOUTME: WebSocket client for telemetry streams
// ABOUTME: Performs the hello handshake and routes frames to channels
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// envelope defers payload decoding until the type is known
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client receives telemetry from a Server
type Client struct {
	addr string
	path string
	conn *websocket.Conn
	mu   sync.Mutex

	// Message channels
	Frames   chan TrajectoryFrame
	Sessions chan SessionState

	hello     ServerHello
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewClient creates a client for host:port and the endpoint path
func NewClient(addr, path string) *Client {
	if path == "" {
		path = DefaultPath
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		addr:     addr,
		path:     path,
		Frames:   make(chan TrajectoryFrame, 120),
		Sessions: make(chan SessionState, 10),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Connect dials the server and waits for server/hello
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.addr, Path: c.path}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg envelope
	if err := conn.ReadJSON(&msg); err != nil {
		conn.Close()
		return fmt.Errorf("failed to read server/hello: %w", err)
	}
	conn.SetReadDeadline(time.Time{})

	if msg.Type != TypeServerHello {
		conn.Close()
		return fmt.Errorf("expected %s, got %s", TypeServerHello, msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, &c.hello); err != nil {
		conn.Close()
		return fmt.Errorf("failed to parse server/hello: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	log.Printf("Connected to %s (%s %s)", c.hello.Name, c.hello.ProductName, c.hello.SoftwareVersion)

	go c.readMessages()

	return nil
}

// Hello returns the server greeting received by Connect
func (c *Client) Hello() ServerHello {
	return c.hello
}

// Done is closed when the connection ends
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}

// readMessages reads and routes incoming messages
func (c *Client) readMessages() {
	defer c.Close()

	for {
		var msg envelope
		if err := c.conn.ReadJSON(&msg); err != nil {
			select {
			case <-c.ctx.Done():
			default:
				log.Printf("Read error: %v", err)
			}
			return
		}

		switch msg.Type {
		case TypeTrajectoryFrame:
			var frame TrajectoryFrame
			if err := json.Unmarshal(msg.Payload, &frame); err != nil {
				log.Printf("Failed to parse %s: %v", msg.Type, err)
				continue
			}
			// Viewers only care about the latest position
			select {
			case c.Frames <- frame:
			default:
			}

		case TypeSessionState:
			var state SessionState
			if err := json.Unmarshal(msg.Payload, &state); err != nil {
				log.Printf("Failed to parse %s: %v", msg.Type, err)
				continue
			}
			select {
			case c.Sessions <- state:
			case <-c.ctx.Done():
				return
			}

		default:
			log.Printf("Unknown message type: %s", msg.Type)
		}
	}
}
