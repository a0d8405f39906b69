// ABOUTME: Tests for offline render jobs
// ABOUTME: Covers output length, size cap, atomic file writes and error paths
package render

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Resonate-Protocol/orbit/pkg/audio"
	"github.com/Resonate-Protocol/orbit/pkg/audio/encode"
	"github.com/Resonate-Protocol/orbit/pkg/spatial"
	"github.com/Resonate-Protocol/orbit/pkg/trajectory"
)

type failingRenderer struct{}

func (failingRenderer) Render(ctx context.Context, in *audio.Buffer, schedule *spatial.Schedule, channels int) (*audio.Buffer, error) {
	return nil, errors.New("engine unavailable")
}

func constantBuffer(sampleRate, channels, frames int, v float32) *audio.Buffer {
	buf := audio.NewBuffer(sampleRate, channels, frames)
	for ch := range buf.Data {
		for i := range buf.Data[ch] {
			buf.Data[ch][i] = v
		}
	}
	return buf
}

func TestRender_Length(t *testing.T) {
	tests := []struct {
		name           string
		in             *audio.Buffer
		mode           trajectory.Mode
		expectedFrames int
		expectedPoints int
	}{
		{"stereo at render rate", constantBuffer(44100, 2, 44100, 0.5), trajectory.ModeOrbit, 44100, 60},
		{"mono upsampled", constantBuffer(22050, 1, 11025, 0.5), trajectory.ModeOrbit, 22050, 30},
		{"reactive mode", constantBuffer(44100, 2, 22050, 0.1), trajectory.ModeReactive, 22050, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.Mode = tt.mode

			res, err := New(config).Render(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Frames != tt.expectedFrames {
				t.Errorf("expected %d frames, got %d", tt.expectedFrames, res.Frames)
			}
			expectedLen := encode.HeaderSize + tt.expectedFrames*2*2
			if len(res.WAV) != expectedLen {
				t.Errorf("expected %d bytes, got %d", expectedLen, len(res.WAV))
			}
			if res.Schedule.Len() != tt.expectedPoints {
				t.Errorf("expected %d automation points, got %d", tt.expectedPoints, res.Schedule.Len())
			}
			if got := binary.LittleEndian.Uint32(res.WAV[24:28]); got != 44100 {
				t.Errorf("expected header sample rate 44100, got %d", got)
			}
		})
	}
}

func TestRender_DoesNotModifyInput(t *testing.T) {
	in := constantBuffer(44100, 2, 4410, 0.5)
	if _, err := New(DefaultConfig()).Render(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for ch := range in.Data {
		for i, v := range in.Data[ch] {
			if v != 0.5 {
				t.Fatalf("channel %d frame %d: expected 0.5, got %v", ch, i, v)
			}
		}
	}
}

func TestRender_FirstFrameAtOrbitStart(t *testing.T) {
	// The orbit starts at angle 0, i.e. hard right at radius 1.5
	in := constantBuffer(44100, 1, 100, 1)
	res, err := New(DefaultConfig()).Render(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	left := int16(binary.LittleEndian.Uint16(res.WAV[44:46]))
	right := int16(binary.LittleEndian.Uint16(res.WAV[46:48]))
	if left != 0 {
		t.Errorf("expected silent left channel, got %d", left)
	}
	// gain 1/1.5 of full scale, truncated
	gain := float32(1 / 1.5)
	expected := int16(float64(gain) * 0x7FFF)
	if right != expected {
		t.Errorf("expected right %d, got %d", expected, right)
	}
}

func TestRender_Errors(t *testing.T) {
	capped := DefaultConfig()
	capped.MaxDuration = 100 * time.Millisecond

	surround := DefaultConfig()
	surround.Channels = 6

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name   string
		ctx    context.Context
		r      *Renderer
		in     *audio.Buffer
		target error
	}{
		{"over duration cap", context.Background(), New(capped), constantBuffer(44100, 2, 44100, 0), audio.ErrResourceExhausted},
		{"unsupported output channels", context.Background(), New(surround), constantBuffer(44100, 2, 100, 0), audio.ErrUnsupportedFormat},
		{"invalid input", context.Background(), New(DefaultConfig()), &audio.Buffer{SampleRate: 0, Data: [][]float32{{0}}}, audio.ErrUnsupportedFormat},
		{"cancelled", cancelled, New(DefaultConfig()), constantBuffer(44100, 2, 44100, 0), context.Canceled},
		{"engine failure", context.Background(), NewWithRenderer(DefaultConfig(), failingRenderer{}), constantBuffer(44100, 2, 100, 0), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), encode.FileName)
			_, err := tt.r.RenderToFile(tt.ctx, tt.in, path)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
			if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
				t.Errorf("expected no file after failed render, stat returned %v", statErr)
			}
			entries, _ := os.ReadDir(filepath.Dir(path))
			if len(entries) != 0 {
				t.Errorf("expected empty directory, found %d entries", len(entries))
			}
		})
	}
}

func TestRenderToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, encode.FileName)

	res, err := New(DefaultConfig()).RenderToFile(context.Background(), constantBuffer(44100, 2, 4410, 0.2), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read render: %v", err)
	}
	if len(data) != len(res.WAV) {
		t.Errorf("expected %d bytes on disk, got %d", len(res.WAV), len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("expected RIFF/WAVE header")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to list dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the render in the directory, found %d entries", len(entries))
	}
}

func TestWriteFile_Mode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	path := filepath.Join(t.TempDir(), encode.FileName)

	if err := WriteFile(path, []byte("RIFF")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat render: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("expected mode 0644, got %v", info.Mode().Perm())
	}
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.wav")
	if err := WriteFile(path, []byte("x")); err == nil {
		t.Error("expected error for missing directory")
	}
}
