// ABOUTME: Audio output device and stream interfaces
// ABOUTME: Backend selection and the shared float32-to-PCM buffer writer
package output

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/binaural-go/binaural/pkg/audio"
	"go.uber.org/zap"
)

var (
	// ErrNoDevice means the host has no usable default output device.
	ErrNoDevice = errors.New("no default audio output device available")
	// ErrConfigRejected means the device refused the requested stream format.
	ErrConfigRejected = errors.New("audio device rejected the stream configuration")
	// ErrUnknownBackend is returned by New for an unrecognised backend name.
	ErrUnknownBackend = errors.New("unknown audio backend")
)

// RenderFunc fills an interleaved float32 buffer. It is called on the
// device's audio thread and must not block.
type RenderFunc func(out []float32)

// ErrorFunc receives errors reported asynchronously by a running stream
type ErrorFunc func(err error)

// Device is a host audio output
type Device interface {
	// Name identifies the backend
	Name() string

	// DefaultConfig queries the device's preferred sample rate, channel
	// count and sample format
	DefaultConfig() (audio.DeviceConfig, error)

	// Open creates a stream that pulls samples from render
	Open(cfg audio.DeviceConfig, render RenderFunc, onError ErrorFunc) (Stream, error)
}

// Stream is an opened output stream
type Stream interface {
	// Start begins pulling samples from the render function
	Start() error

	// Close stops playback and releases the device
	Close() error
}

// Options configure a backend. Zero values mean "use the device default".
type Options struct {
	SampleRate uint32
	Channels   uint8
	Format     audio.SampleFormat
	// Latency is the target buffer length, where the backend supports it
	Latency time.Duration
	// AppName is shown by sound servers that list clients
	AppName string
	Logger  *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) appName() string {
	if o.AppName == "" {
		return "binaural"
	}
	return o.AppName
}

// override applies explicitly requested rate and channels on top of what the
// device reported.
func (o Options) override(cfg audio.DeviceConfig) audio.DeviceConfig {
	if o.SampleRate > 0 {
		cfg.SampleRate = o.SampleRate
	}
	if o.Channels > 0 {
		cfg.Channels = o.Channels
	}
	return cfg
}

var backends = map[string]func(Options) Device{
	"malgo":     func(o Options) Device { return NewMalgo(o) },
	"pulse":     func(o Options) Device { return NewPulse(o) },
	"oto":       func(o Options) Device { return NewOto(o) },
	"portaudio": func(o Options) Device { return NewPortAudio(o) },
}

// DefaultBackend is used when no backend is named
const DefaultBackend = "malgo"

// Backends lists the backend names New accepts
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns the named backend
func New(backend string, opts Options) (Device, error) {
	name := strings.ToLower(strings.TrimSpace(backend))
	if name == "" {
		name = DefaultBackend
	}
	ctor, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownBackend, backend, strings.Join(Backends(), ", "))
	}
	return ctor(opts), nil
}

// pcmWriter renders float32 frames into a byte buffer of the device's sample
// format. The scratch slice is sized up front so the audio thread does not
// allocate in the steady state.
type pcmWriter struct {
	format     audio.SampleFormat
	channels   int
	frameBytes int
	render     RenderFunc
	scratch    []float32
}

func newPCMWriter(cfg audio.DeviceConfig, render RenderFunc, frames int) *pcmWriter {
	if cfg.Channels < 1 {
		cfg.Channels = 1
	}
	if frames < 1 {
		frames = 4096
	}
	channels := int(cfg.Channels)
	return &pcmWriter{
		format:     cfg.Format,
		channels:   channels,
		frameBytes: cfg.BytesPerFrame(),
		render:     render,
		scratch:    make([]float32, frames*channels),
	}
}

// fill renders whole frames into dst and zeroes any remainder. It returns
// the number of bytes that hold rendered frames.
func (w *pcmWriter) fill(dst []byte) int {
	frames := len(dst) / w.frameBytes
	samples := frames * w.channels

	if samples > cap(w.scratch) {
		w.scratch = make([]float32, samples)
	}
	buf := w.scratch[:samples]
	w.render(buf)

	n := 0
	switch w.format {
	case audio.FormatInt16:
		for i, s := range buf {
			binary.LittleEndian.PutUint16(dst[i*2:], uint16(audio.Float32ToInt16(s)))
		}
		n = samples * 2
	default:
		n = audio.PutFloat32LE(dst, buf)
	}

	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return n
}
