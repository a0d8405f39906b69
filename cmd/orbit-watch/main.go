// ABOUTME: Entry point for the trajectory telemetry viewer
// ABOUTME: Finds a player over mDNS (or -server) and prints its live trajectory
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/orbit/internal/discovery"
	"github.com/Resonate-Protocol/orbit/internal/telemetry"
)

var (
	serverAddr = flag.String("server", "", "Manual player address host:port (skip mDNS)")
	path       = flag.String("path", telemetry.DefaultPath, "Telemetry endpoint path")
	every      = flag.Int("every", 15, "Print every Nth trajectory frame")
	timeout    = flag.Duration("discover-timeout", 10*time.Second, "How long to browse for players")
)

func main() {
	flag.Parse()

	addr, endpoint := *serverAddr, *path
	if addr == "" {
		log.Printf("Browsing for %s endpoints...", discovery.ServiceType)
		disc := discovery.NewManager(discovery.Config{})
		if err := disc.Browse(); err != nil {
			log.Fatalf("Browse failed: %v", err)
		}

		select {
		case server := <-disc.Servers():
			addr, endpoint = server.Addr(), server.Path
			log.Printf("Discovered %s at %s", server.Name, addr)
		case <-time.After(*timeout):
			log.Fatalf("No player found after %v", *timeout)
		}
		disc.Stop()
	}

	client := telemetry.NewClient(addr, endpoint)
	if err := client.Connect(); err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	defer func() { _ = client.Close() }()

	hello := client.Hello()
	log.Printf("Connected to %s (%s %s, %d ticks/s)", hello.Name, hello.ProductName, hello.SoftwareVersion, hello.TickRate)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	n := *every
	if n < 1 {
		n = 1
	}

	for {
		select {
		case frame := <-client.Frames:
			if frame.Tick%int64(n) != 0 {
				continue
			}
			log.Printf("[%s] t=%6dms pos=(%+.2f, %+.2f, %+.2f) r=%.2f f=%7.1fHz m=%.2f",
				shortID(frame.Session), frame.PlayheadMs, frame.X, frame.Y, frame.Z,
				frame.Radius, frame.FrequencyHz, frame.Magnitude)

		case state := <-client.Sessions:
			log.Printf("Session %s %s (%dms)", shortID(state.Session), state.State, state.DurationMs)

		case <-client.Done():
			log.Printf("Connection closed")
			return

		case <-sigChan:
			log.Printf("Shutdown signal received")
			return
		}
	}
}

// shortID trims a session UUID for display
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
