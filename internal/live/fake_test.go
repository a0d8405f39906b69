// ABOUTME: In-memory output used by live session tests
// ABOUTME: Records writes and can block until closed like a full device
package live

import (
	"errors"
	"sync"

	"github.com/Resonate-Protocol/orbit/pkg/audio/output"
)

type fakeOutput struct {
	mu       sync.Mutex
	block    bool
	openErr  error
	opened   bool
	closes   int
	samples  []float32
	closedCh chan struct{}
}

func newFakeOutput(block bool) *fakeOutput {
	return &fakeOutput{block: block, closedCh: make(chan struct{})}
}

func (f *fakeOutput) Open(sampleRate, channels int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = true
	return nil
}

func (f *fakeOutput) Write(samples []float32) error {
	if f.block {
		<-f.closedCh
		return output.ErrClosed
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = append(f.samples, samples...)
	return nil
}

func (f *fakeOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closes == 0 {
		close(f.closedCh)
	}
	f.closes++
	return nil
}

func (f *fakeOutput) written() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.samples)
}

func (f *fakeOutput) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

var errOpen = errors.New("no device")
