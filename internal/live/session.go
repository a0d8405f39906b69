// ABOUTME: One live playback session: audio pump plus reactive tick loop
// ABOUTME: Created per start, destroyed on stop or when the source ends
package live

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/orbit/pkg/analysis"
	"github.com/Resonate-Protocol/orbit/pkg/audio"
	"github.com/Resonate-Protocol/orbit/pkg/audio/output"
	"github.com/Resonate-Protocol/orbit/pkg/audio/resample"
	"github.com/Resonate-Protocol/orbit/pkg/spatial"
	"github.com/Resonate-Protocol/orbit/pkg/trajectory"
	"github.com/google/uuid"
)

// Config holds live session parameters
type Config struct {
	SampleRate  int // device rate; the source is resampled to it
	Channels    int // 1 or 2
	TickRate    int // analysis ticks per second
	BlockFrames int // frames per output write
	Analyser    analysis.Config
	MaxSpeed    float64 // reactive speed cap, 0 = unbounded
}

// DefaultConfig returns the standard live configuration
func DefaultConfig() Config {
	return Config{
		SampleRate:  44100,
		Channels:    2,
		TickRate:    trajectory.StepRate,
		BlockFrames: 512,
		Analyser:    analysis.DefaultConfig(),
	}
}

// Frame is the state published after each tick
type Frame struct {
	Session  string
	Tick     int64
	Time     time.Duration // playhead when the tick ran
	Angle    float64
	Radius   float64
	Position spatial.Position
	Result   analysis.Result
	Degraded bool // analysis failed and the neutral position was used
}

// Session plays one decoded buffer through an output while moving the
// source according to its own spectrum
type Session struct {
	ID string

	config   Config
	buf      *audio.Buffer
	mono     []float32
	out      output.Output
	analyser *analysis.Analyser
	reactive *trajectory.Reactive
	panner   *spatial.Panner

	playhead atomic.Int64
	position atomic.Pointer[spatial.Position]
	volume   atomic.Int32
	muted    atomic.Bool

	onTick func(Frame)
	onEnd  func(*Session)

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
	stopOnce  sync.Once
	degraded  sync.Once
}

// NewSession prepares a session. buf is not modified. onTick runs on the
// tick goroutine and must not block; onEnd runs once after the session
// has fully stopped. Either may be nil.
func NewSession(buf *audio.Buffer, out output.Output, config Config, onTick func(Frame), onEnd func(*Session)) (*Session, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if config.Channels != 1 && config.Channels != 2 {
		return nil, fmt.Errorf("%w: %d output channels (supported: 1, 2)", audio.ErrUnsupportedFormat, config.Channels)
	}
	if err := (audio.Format{SampleRate: config.SampleRate, Channels: config.Channels}).Validate(); err != nil {
		return nil, err
	}
	if config.TickRate <= 0 || config.BlockFrames <= 0 {
		return nil, fmt.Errorf("invalid tick rate %d or block size %d", config.TickRate, config.BlockFrames)
	}

	analyser, err := analysis.NewAnalyser(config.Analyser)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyser: %w", err)
	}

	playback := resample.To(buf, config.SampleRate)

	s := &Session{
		ID:       uuid.New().String(),
		config:   config,
		buf:      playback,
		mono:     playback.Mono().Data[0],
		out:      out,
		analyser: analyser,
		reactive: trajectory.NewReactive(config.MaxSpeed),
		panner:   spatial.NewPanner(),
		onTick:   onTick,
		onEnd:    onEnd,
		done:     make(chan struct{}),
	}
	initial := spatial.DefaultPosition
	s.position.Store(&initial)
	s.volume.Store(100)

	return s, nil
}

// Start opens the output and launches the pump and tick goroutines
func (s *Session) Start(ctx context.Context) error {
	if err := s.out.Open(s.config.SampleRate, s.config.Channels); err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(2)
	go s.pump()
	go s.tickLoop()
	go s.watch()

	log.Printf("Live session %s started: %.1fs at %dHz, %d channels",
		s.ID, s.buf.Seconds(), s.config.SampleRate, s.config.Channels)

	return nil
}

// Stop halts both loops and releases the output. Safe to call repeatedly
// and after the session has ended on its own.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel == nil {
			return
		}
		s.cancel()
		s.closeOutput()
		<-s.done
	})
}

// Done is closed once the session has fully stopped
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Position returns the most recent source position
func (s *Session) Position() spatial.Position {
	return *s.position.Load()
}

// Playhead returns how much audio has been handed to the output
func (s *Session) Playhead() time.Duration {
	return time.Duration(float64(s.playhead.Load()) / float64(s.config.SampleRate) * float64(time.Second))
}

// Duration returns the length of the source
func (s *Session) Duration() time.Duration {
	return s.buf.Duration()
}

// SetVolume sets the software volume (0-100)
func (s *Session) SetVolume(volume int) {
	s.volume.Store(int32(volume))
}

// SetMuted sets the mute state
func (s *Session) SetMuted(muted bool) {
	s.muted.Store(muted)
}

func (s *Session) closeOutput() {
	s.closeOnce.Do(func() {
		if err := s.out.Close(); err != nil {
			log.Printf("Warning: output close error: %v", err)
		}
	})
}

// watch tears the session down once both loops have exited
func (s *Session) watch() {
	s.wg.Wait()
	s.cancel()
	s.closeOutput()
	close(s.done)

	log.Printf("Live session %s stopped at %v", s.ID, s.Playhead().Round(time.Millisecond))

	if s.onEnd != nil {
		s.onEnd(s)
	}
}

// pump writes positioned blocks to the output until the source ends. The
// blocking Write paces it at the device rate.
func (s *Session) pump() {
	defer s.wg.Done()
	// The source running out ends the whole session
	defer s.cancel()

	channels := s.config.Channels
	block := s.config.BlockFrames
	scratch := make([]float32, block*channels)
	total := len(s.mono)

	for start := 0; start < total; start += block {
		if s.ctx.Err() != nil {
			return
		}

		n := block
		if start+n > total {
			n = total - start
		}
		dst := scratch[:n*channels]

		pos := s.position.Load()
		if err := s.panner.Process(dst, s.mono[start:start+n], *pos, channels); err != nil {
			log.Printf("Live session %s: %v", s.ID, err)
			return
		}
		output.ApplyVolume(dst, int(s.volume.Load()), s.muted.Load())

		if err := s.out.Write(dst); err != nil {
			if !errors.Is(err, output.ErrClosed) {
				log.Printf("Live session %s: output write failed: %v", s.ID, err)
			}
			return
		}
		s.playhead.Add(int64(n))
	}
}

// tickLoop runs one analysis and one trajectory step per tick
func (s *Session) tickLoop() {
	defer s.wg.Done()

	scratch := make([]uint8, s.analyser.BinCount())
	ticker := NewTicker(s.config.TickRate)

	_ = ticker.Run(s.ctx, func(n int64) bool {
		head := s.playhead.Load()

		var res *analysis.Result
		result, spectrum, err := s.analyser.Analyze(s.mono, int(head), s.config.SampleRate, scratch)
		scratch = spectrum
		if err == nil {
			res = &result
		} else {
			s.degraded.Do(func() {
				log.Printf("Live session %s: analysis failed, holding neutral position: %v", s.ID, err)
			})
		}

		pos := s.reactive.Step(float64(n)/float64(s.config.TickRate), res)
		s.position.Store(&pos)

		if s.onTick != nil {
			s.onTick(Frame{
				Session:  s.ID,
				Tick:     n,
				Time:     time.Duration(float64(head) / float64(s.config.SampleRate) * float64(time.Second)),
				Angle:    s.reactive.Angle(),
				Radius:   s.reactive.Radius(),
				Position: pos,
				Result:   result,
				Degraded: res == nil,
			})
		}
		return true
	})
}
