// ABOUTME: Real-time binaural sample generator driven by the device callback
// ABOUTME: Keeps per-ear phase accumulators and emits silence once cancelled
package binaural

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/binaural-go/binaural/pkg/audio"
)

const (
	// stereoGain leaves headroom when the two ears are summed downstream.
	stereoGain = 0.5
	// monoGain applies to the sum of both tones on a single-channel device.
	monoGain = 0.25
)

// PhaseState holds the running sample index of each ear. Indices are float64
// so that hour-long sessions do not drift.
type PhaseState struct {
	Left  float64
	Right float64
}

// EngineStats are counters published by the render callback
type EngineStats struct {
	Frames   uint64 // frames rendered with tone
	Buffers  uint64 // callback invocations
	Silenced uint64 // buffers silenced because the phase state was busy
}

// Engine renders interleaved float32 frames for one session.
// Render is the only method safe to call from the audio thread.
type Engine struct {
	leftStep  float64 // 2π·leftHz/sampleRate
	rightStep float64
	channels  int
	signal    *Signal

	mu    sync.Mutex
	phase PhaseState

	frames   atomic.Uint64
	buffers  atomic.Uint64
	silenced atomic.Uint64
}

// NewEngine binds validated params to a device format and a cancellation signal
func NewEngine(p Params, cfg audio.DeviceConfig, sig *Signal) *Engine {
	if sig == nil {
		sig = NewSignal()
	}

	channels := int(cfg.Channels)
	if channels < 1 {
		channels = 1
	}

	e := &Engine{
		channels: channels,
		signal:   sig,
	}
	if cfg.SampleRate > 0 {
		e.leftStep = 2 * math.Pi * p.LeftHz() / float64(cfg.SampleRate)
		e.rightStep = 2 * math.Pi * p.RightHz() / float64(cfg.SampleRate)
	}
	return e
}

// Render fills out with interleaved frames. It never allocates, blocks or
// panics; if the phase state is held elsewhere the buffer is left silent.
func (e *Engine) Render(out []float32) {
	e.buffers.Add(1)

	if e.signal.Cancelled() {
		silence(out)
		return
	}
	if !e.mu.TryLock() {
		e.silenced.Add(1)
		silence(out)
		return
	}

	ch := e.channels
	frames := len(out) / ch
	rendered := 0

	for i := 0; i < frames; i++ {
		if e.signal.Cancelled() {
			silence(out[i*ch:])
			break
		}

		l := math.Sin(e.leftStep * e.phase.Left)
		e.phase.Left++
		r := math.Sin(e.rightStep * e.phase.Right)
		e.phase.Right++

		mapFrame(out[i*ch:i*ch+ch], l, r)
		rendered++
	}
	e.mu.Unlock()

	// Partial trailing frame
	silence(out[frames*ch:])
	e.frames.Add(uint64(rendered))
}

// Snapshot copies the phase state. Not for use on the audio thread.
func (e *Engine) Snapshot() PhaseState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Stats returns the render counters
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		Frames:   e.frames.Load(),
		Buffers:  e.buffers.Load(),
		Silenced: e.silenced.Load(),
	}
}

// Channels is the interleave width Render expects
func (e *Engine) Channels() int {
	return e.channels
}

// mapFrame writes one frame of the two ear samples onto the device channels.
// Channels beyond the second are left silent.
func mapFrame(frame []float32, left, right float64) {
	switch len(frame) {
	case 1:
		frame[0] = float32((left + right) * monoGain)
	default:
		frame[0] = float32(left * stereoGain)
		frame[1] = float32(right * stereoGain)
		for c := 2; c < len(frame); c++ {
			frame[c] = 0
		}
	}
}

func silence(out []float32) {
	for i := range out {
		out[i] = 0
	}
}
