// ABOUTME: PulseAudio output using the pure-Go pulse client
// ABOUTME: Plays float32 samples on the default sink without cgo
package output

import (
	"fmt"
	"sync"
	"time"

	"github.com/binaural-go/binaural/pkg/audio"
	"github.com/jfreymuth/pulse"
	"go.uber.org/zap"
)

// pulseWatchInterval is how often a running stream is checked for errors
const pulseWatchInterval = 250 * time.Millisecond

// Pulse output implementation using a native PulseAudio protocol client
type Pulse struct {
	opts   Options
	logger *zap.Logger

	mu     sync.Mutex
	client *pulse.Client
}

// NewPulse creates a new PulseAudio output
func NewPulse(opts Options) *Pulse {
	return &Pulse{
		opts:   opts,
		logger: opts.logger().With(zap.String("backend", "pulse")),
	}
}

// Name implements Device
func (p *Pulse) Name() string { return "pulse" }

func (p *Pulse) connect() (*pulse.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	c, err := pulse.NewClient(pulse.ClientApplicationName(p.opts.appName()))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to pulseaudio: %w", ErrNoDevice, err)
	}
	p.client = c
	return c, nil
}

// DefaultConfig reads the default sink's sample rate and channel map.
// Streams are mono or stereo only, so wider sinks report two channels.
func (p *Pulse) DefaultConfig() (audio.DeviceConfig, error) {
	c, err := p.connect()
	if err != nil {
		return audio.DeviceConfig{}, err
	}

	sink, err := c.DefaultSink()
	if err != nil {
		return audio.DeviceConfig{}, fmt.Errorf("%w: %w", ErrNoDevice, err)
	}

	channels := len(sink.Channels())
	if channels > 2 {
		channels = 2
	}

	cfg := audio.DeviceConfig{
		Name:       sink.Name(),
		SampleRate: uint32(sink.SampleRate()),
		Channels:   uint8(channels),
		Format:     audio.FormatFloat32,
	}
	cfg = p.opts.override(cfg)
	if cfg.Channels > 2 {
		cfg.Channels = 2
	}
	return cfg, nil
}

// Open creates a playback stream fed by render
func (p *Pulse) Open(cfg audio.DeviceConfig, render RenderFunc, onError ErrorFunc) (Stream, error) {
	if !cfg.Valid() || cfg.Channels > 2 {
		return nil, fmt.Errorf("%w: %s", ErrConfigRejected, cfg)
	}

	c, err := p.connect()
	if err != nil {
		return nil, err
	}

	layout := pulse.PlaybackStereo
	if cfg.Channels == 1 {
		layout = pulse.PlaybackMono
	}
	opts := []pulse.PlaybackOption{
		layout,
		pulse.PlaybackSampleRate(int(cfg.SampleRate)),
	}
	if p.opts.Latency > 0 {
		opts = append(opts, pulse.PlaybackLatency(p.opts.Latency.Seconds()))
	}

	reader := pulse.Float32Reader(func(out []float32) (int, error) {
		render(out)
		return len(out), nil
	})

	stream, err := c.NewPlayback(reader, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create playback stream: %w", ErrConfigRejected, err)
	}

	p.logger.Info("audio output initialized",
		zap.String("sink", cfg.Name),
		zap.Uint32("sampleRate", cfg.SampleRate),
		zap.Uint8("channels", cfg.Channels))

	return &pulseStream{
		owner:   p,
		stream:  stream,
		onError: onError,
		done:    make(chan struct{}),
	}, nil
}

func (p *Pulse) release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}

type pulseStream struct {
	owner   *Pulse
	stream  *pulse.PlaybackStream
	onError ErrorFunc
	done    chan struct{}
	once    sync.Once
}

// Start implements Stream
func (s *pulseStream) Start() error {
	s.stream.Start()
	go s.watch()
	return nil
}

// watch forwards the first stream error to onError
func (s *pulseStream) watch() {
	ticker := time.NewTicker(pulseWatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.stream.Error(); err != nil {
				if s.onError != nil {
					s.onError(err)
				}
				return
			}
		}
	}
}

// Close implements Stream
func (s *pulseStream) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.stream.Stop()
		s.stream.Close()
		s.owner.release()
	})
	return nil
}
