// ABOUTME: Main player application orchestration
// ABOUTME: Wires the controller to the TUI, telemetry and mDNS advertisement
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Resonate-Protocol/orbit/internal/discovery"
	"github.com/Resonate-Protocol/orbit/internal/live"
	"github.com/Resonate-Protocol/orbit/internal/render"
	"github.com/Resonate-Protocol/orbit/internal/telemetry"
	"github.com/Resonate-Protocol/orbit/internal/ui"
	"github.com/Resonate-Protocol/orbit/pkg/audio/output"
)

// Config holds player configuration
type Config struct {
	File          string
	Name          string
	Backend       string        // output backend name
	Output        OutputFactory // overrides Backend when set
	TelemetryPort int           // negative disables telemetry
	MDNS          bool
	OutPath       string
	UseTUI        bool
	Live          live.Config
	Render        render.Config
}

// App represents the main player application
type App struct {
	config     Config
	controller *Controller
	telemetry  *telemetry.Server
	discovery  *discovery.Manager
	tui        *ui.TUI
	ended      chan struct{}
}

// New creates a new player
func New(config Config) *App {
	a := &App{
		config: config,
		ended:  make(chan struct{}, 1),
	}

	factory := config.Output
	if factory == nil {
		factory = func() (output.Output, error) {
			return output.New(config.Backend)
		}
	}

	a.controller = NewController(config.Live, config.Render, factory, Callbacks{
		OnFrame:   a.onFrame,
		OnSession: a.onSession,
	})

	return a
}

// Controller returns the control surface
func (a *App) Controller() *Controller {
	return a.controller
}

// Run loads the file and runs until the user quits, ctx is cancelled, or,
// without the TUI, playback finishes
func (a *App) Run(ctx context.Context) error {
	data, err := os.ReadFile(a.config.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", a.config.File, err)
	}
	buf, err := a.controller.Load(data)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", a.config.File, err)
	}

	if err := a.startTelemetry(); err != nil {
		return err
	}
	defer a.shutdown()

	if !a.config.UseTUI {
		return a.runHeadless(ctx)
	}

	control := ui.NewControl()
	status := ui.StatusMsg{
		FileName:   filepath.Base(a.config.File),
		SampleRate: buf.SampleRate,
		Channels:   buf.Channels(),
		Duration:   buf.Duration(),
		Mode:       a.config.Render.Mode.String(),
	}
	if a.telemetry != nil {
		status.Telemetry = fmt.Sprintf("ws://:%d%s", a.telemetry.Port(), a.telemetry.Path())
	}
	a.tui = ui.New(control, status)

	go a.handleControls(ctx, control)

	go func() {
		<-ctx.Done()
		a.tui.Stop()
	}()

	return a.tui.Run()
}

// runHeadless plays the file once
func (a *App) runHeadless(ctx context.Context) error {
	if err := a.controller.StartLive(ctx); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}

	select {
	case <-a.ended:
		log.Printf("Playback finished")
	case <-ctx.Done():
		log.Printf("Shutdown signal received")
	}
	return nil
}

// startTelemetry starts the WebSocket server and mDNS advertisement
func (a *App) startTelemetry() error {
	if a.config.TelemetryPort < 0 {
		return nil
	}

	a.telemetry = telemetry.NewServer(telemetry.Config{
		Port:     a.config.TelemetryPort,
		Name:     a.config.Name,
		TickRate: a.config.Live.TickRate,
	})
	if err := a.telemetry.Start(); err != nil {
		a.telemetry = nil
		return fmt.Errorf("failed to start telemetry: %w", err)
	}

	if a.config.MDNS {
		a.discovery = discovery.NewManager(discovery.Config{
			ServiceName: a.config.Name,
			Port:        a.telemetry.Port(),
			Path:        a.telemetry.Path(),
		})
		if err := a.discovery.Advertise(); err != nil {
			log.Printf("mDNS advertisement failed: %v", err)
		}
	}

	return nil
}

// shutdown stops playback and releases network resources
func (a *App) shutdown() {
	a.controller.StopLive()

	if a.discovery != nil {
		a.discovery.Stop()
	}
	if a.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.telemetry.Stop(ctx); err != nil {
			log.Printf("Telemetry shutdown error: %v", err)
		}
	}

	log.Printf("Player stopped")
}

// handleControls processes commands from the TUI
func (a *App) handleControls(ctx context.Context, control *ui.Control) {
	for {
		select {
		case cmd := <-control.Commands:
			switch cmd {
			case ui.CmdToggle:
				if err := a.controller.Toggle(ctx); err != nil {
					log.Printf("Playback error: %v", err)
				}
			case ui.CmdRender:
				go a.render(ctx)
			}

		case vol := <-control.Volume:
			log.Printf("Volume change: %d%%, muted=%v", vol.Volume, vol.Muted)
			a.controller.SetVolume(vol.Volume, vol.Muted)

		case <-control.Quit:
			log.Printf("Received quit signal from TUI")
			return

		case <-ctx.Done():
			return
		}
	}
}

// render writes the offline render and reports the outcome to the TUI
func (a *App) render(ctx context.Context) {
	status := "wrote " + a.config.OutPath
	if err := a.controller.RenderToFile(ctx, a.config.OutPath); err != nil {
		log.Printf("Render failed: %v", err)
		status = "failed: " + err.Error()
	}
	if a.tui != nil {
		a.tui.Status(ui.StatusMsg{RenderStatus: status})
	}
}

// onFrame fans a live tick out to telemetry and the TUI without blocking
func (a *App) onFrame(f live.Frame) {
	if a.telemetry != nil {
		a.telemetry.PublishFrame(f)
	}
	if a.tui != nil {
		a.tui.Frame(ui.FrameMsg{
			Tick:      f.Tick,
			Playhead:  f.Time,
			X:         f.Position.X,
			Y:         f.Position.Y,
			Z:         f.Position.Z,
			Angle:     f.Angle,
			Radius:    f.Radius,
			Frequency: f.Result.FrequencyHz,
			Magnitude: f.Result.Magnitude,
		})
	}
}

// onSession reports session start and end
func (a *App) onSession(s *live.Session, playing bool) {
	state := telemetry.StateStopped
	if playing {
		state = telemetry.StatePlaying
	}
	if a.telemetry != nil {
		a.telemetry.PublishSession(s.ID, state, s.Duration())
	}
	if a.tui != nil {
		a.tui.Status(ui.StatusMsg{Playing: &playing, Session: s.ID})
	}
	if !playing {
		select {
		case a.ended <- struct{}{}:
		default:
		}
	}
}
