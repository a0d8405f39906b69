// ABOUTME: Entry point for the Orbit spatial player
// ABOUTME: Parses CLI flags and starts the player application
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Resonate-Protocol/orbit/internal/app"
	"github.com/Resonate-Protocol/orbit/internal/live"
	"github.com/Resonate-Protocol/orbit/internal/render"
	"github.com/Resonate-Protocol/orbit/internal/version"
	"github.com/Resonate-Protocol/orbit/pkg/audio/encode"
	"github.com/Resonate-Protocol/orbit/pkg/audio/output"
	"github.com/Resonate-Protocol/orbit/pkg/trajectory"
)

var (
	file          = flag.String("file", "", "Audio file to play (WAV, MP3, FLAC or Ogg Opus)")
	backend       = flag.String("output", output.BackendOto, "Output backend (oto or malgo)")
	telemetryPort = flag.Int("telemetry-port", 8928, "WebSocket telemetry port (-1 disables)")
	advertise     = flag.Bool("mdns", true, "Advertise telemetry over mDNS")
	name          = flag.String("name", "", "Player friendly name (default: hostname-orbit)")
	logFile       = flag.String("log-file", "orbit.log", "Log file path")
	noTUI         = flag.Bool("no-tui", false, "Disable TUI, play once and log to stdout")
	outPath       = flag.String("out", encode.FileName, "Path for the offline render")
	mode          = flag.String("mode", "orbit", "Offline trajectory (orbit or reactive)")
	maxSpeed      = flag.Float64("max-speed", 0, "Clamp reactive angular speed in rad/tick (0 = unbounded)")
)

func main() {
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: orbit -file <audio> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	playerName := *name
	if playerName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		playerName = fmt.Sprintf("%s-orbit", hostname)
	}

	trajectoryMode, err := trajectory.ParseMode(*mode)
	if err != nil {
		log.Fatalf("Invalid mode: %v", err)
	}

	log.Printf("Starting %s %s: %s", version.Product, version.Version, playerName)

	liveConfig := live.DefaultConfig()
	liveConfig.MaxSpeed = *maxSpeed

	renderConfig := render.DefaultConfig()
	renderConfig.Mode = trajectoryMode
	renderConfig.MaxSpeed = *maxSpeed

	player := app.New(app.Config{
		File:          *file,
		Name:          playerName,
		Backend:       *backend,
		TelemetryPort: *telemetryPort,
		MDNS:          *advertise,
		OutPath:       *outPath,
		UseTUI:        useTUI,
		Live:          liveConfig,
		Render:        renderConfig,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := player.Run(ctx); err != nil {
		log.Printf("Player error: %v", err)
		_ = f.Close()
		os.Exit(1)
	}
}
