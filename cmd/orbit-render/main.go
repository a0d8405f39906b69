// ABOUTME: Entry point for headless offline rendering
// ABOUTME: Decodes a file, spatializes it along a trajectory and writes a WAV
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/orbit/internal/render"
	"github.com/Resonate-Protocol/orbit/pkg/audio/decode"
	"github.com/Resonate-Protocol/orbit/pkg/audio/encode"
	"github.com/Resonate-Protocol/orbit/pkg/trajectory"
)

var (
	input       = flag.String("in", "", "Audio file to render (WAV, MP3, FLAC or Ogg Opus)")
	outPath     = flag.String("out", encode.FileName, "Output WAV path")
	mode        = flag.String("mode", "orbit", "Trajectory (orbit or reactive)")
	radius      = flag.Float64("radius", trajectory.DefaultOrbitRadius, "Orbit radius")
	maxSpeed    = flag.Float64("max-speed", 0, "Clamp reactive angular speed in rad/tick (0 = unbounded)")
	sampleRate  = flag.Int("rate", 44100, "Render sample rate")
	maxDuration = flag.Duration("max-duration", 5*time.Minute, "Reject sources longer than this")
)

func main() {
	flag.Parse()

	if *input == "" {
		log.Fatalf("-in is required")
	}

	trajectoryMode, err := trajectory.ParseMode(*mode)
	if err != nil {
		log.Fatalf("Invalid mode: %v", err)
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *input, err)
	}

	buf, err := decode.Decode(data)
	if err != nil {
		log.Fatalf("Failed to decode %s: %v", *input, err)
	}
	log.Printf("Decoded %s: %dHz, %d channels, %v", *input, buf.SampleRate, buf.Channels(), buf.Duration())

	config := render.DefaultConfig()
	config.SampleRate = *sampleRate
	config.Mode = trajectoryMode
	config.Radius = *radius
	config.MaxSpeed = *maxSpeed
	config.MaxDuration = *maxDuration

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := render.New(config).RenderToFile(ctx, buf, *outPath)
	if err != nil {
		log.Fatalf("Render failed: %v", err)
	}

	log.Printf("Wrote %s: %d bytes, %d trajectory points, %d frames in %v",
		*outPath, len(result.WAV), result.Schedule.Len(), result.Frames, result.Elapsed)
}
