// ABOUTME: Builds offline automation schedules on the 60 Hz logical grid
// ABOUTME: Orbit schedules are closed-form; reactive ones replay the analyser
package trajectory

import (
	"context"
	"fmt"
	"math"

	"github.com/Resonate-Protocol/orbit/pkg/analysis"
	"github.com/Resonate-Protocol/orbit/pkg/audio"
	"github.com/Resonate-Protocol/orbit/pkg/spatial"
)

// Steps returns the number of automation points for a duration in seconds
func Steps(seconds float64) int {
	if seconds <= 0 || !finite(seconds) {
		return 0
	}
	return int(math.Floor(seconds * StepRate))
}

// OrbitSchedule commits floor(seconds*60) orbit points at t = i/60
func OrbitSchedule(seconds, radius float64) *spatial.Schedule {
	o := &Orbit{Radius: radius}
	n := Steps(seconds)
	s := spatial.NewSchedule(n)
	for i := 0; i < n; i++ {
		t := float64(i) / StepRate
		// Grid times and circle points are finite, Add cannot fail here
		_ = s.Add(t, o.Step(t, nil))
	}
	return s
}

// ReactiveSchedule runs the analyser and the reactive strategy over buf at
// the logical step rate, as if it were being played back live
func ReactiveSchedule(ctx context.Context, buf *audio.Buffer, config analysis.Config, maxSpeed float64) (*spatial.Schedule, error) {
	analyser, err := analysis.NewAnalyser(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyser: %w", err)
	}

	mono := buf.Mono().Data[0]
	n := Steps(buf.Seconds())
	s := spatial.NewSchedule(n)
	r := NewReactive(maxSpeed)
	scratch := make([]uint8, analyser.BinCount())

	for i := 0; i < n; i++ {
		if i%StepRate == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		t := float64(i) / StepRate
		playhead := int(math.Round(t * float64(buf.SampleRate)))

		var res *analysis.Result
		result, spectrum, err := analyser.Analyze(mono, playhead, buf.SampleRate, scratch)
		if err == nil {
			res = &result
		}
		scratch = spectrum

		if err := s.Add(t, r.Step(t, res)); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	return s, nil
}

// Build returns the schedule for mode over buf
func Build(ctx context.Context, mode Mode, buf *audio.Buffer, radius float64, config analysis.Config, maxSpeed float64) (*spatial.Schedule, error) {
	switch mode {
	case ModeOrbit:
		return OrbitSchedule(buf.Seconds(), radius), nil
	case ModeReactive:
		return ReactiveSchedule(ctx, buf, config, maxSpeed)
	default:
		return nil, fmt.Errorf("unknown trajectory mode %v", mode)
	}
}
