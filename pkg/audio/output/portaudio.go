//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform callback output using PortAudio
package output

import (
	"fmt"
	"sync"

	"github.com/binaural-go/binaural/pkg/audio"
	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

// PortAudio output implementation
type PortAudio struct {
	opts   Options
	logger *zap.Logger
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio(opts Options) Device {
	return &PortAudio{
		opts:   opts,
		logger: opts.logger().With(zap.String("backend", "portaudio")),
	}
}

// Name implements Device
func (p *PortAudio) Name() string { return "portaudio" }

// DefaultConfig reads the default output device's rate and channel count
func (p *PortAudio) DefaultConfig() (audio.DeviceConfig, error) {
	if err := portaudio.Initialize(); err != nil {
		return audio.DeviceConfig{}, fmt.Errorf("%w: failed to initialize portaudio: %w", ErrNoDevice, err)
	}
	defer portaudio.Terminate()

	dev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return audio.DeviceConfig{}, fmt.Errorf("%w: %w", ErrNoDevice, err)
	}

	channels := dev.MaxOutputChannels
	if channels > 255 {
		channels = 255
	}
	cfg := audio.DeviceConfig{
		Name:       dev.Name,
		SampleRate: uint32(dev.DefaultSampleRate),
		Channels:   uint8(channels),
		Format:     audio.FormatFloat32,
	}
	return p.opts.override(cfg), nil
}

// Open initializes PortAudio and opens a float32 stream on the default device
func (p *PortAudio) Open(cfg audio.DeviceConfig, render RenderFunc, onError ErrorFunc) (Stream, error) {
	if !cfg.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrConfigRejected, cfg)
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize portaudio: %w", ErrNoDevice, err)
	}

	stream, err := portaudio.OpenDefaultStream(0, int(cfg.Channels), float64(cfg.SampleRate), 0, func(out []float32) {
		render(out)
	})
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: failed to open stream: %w", ErrConfigRejected, err)
	}

	p.logger.Info("audio output initialized",
		zap.String("device", cfg.Name),
		zap.Uint32("sampleRate", cfg.SampleRate),
		zap.Uint8("channels", cfg.Channels))

	return &portAudioStream{stream: stream}, nil
}

type portAudioStream struct {
	stream *portaudio.Stream
	once   sync.Once
}

// Start implements Stream
func (s *portAudioStream) Start() error {
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigRejected, err)
	}
	return nil
}

// Close releases resources
func (s *portAudioStream) Close() error {
	var err error
	s.once.Do(func() {
		if stopErr := s.stream.Stop(); stopErr != nil {
			err = stopErr
		}
		if closeErr := s.stream.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if termErr := portaudio.Terminate(); termErr != nil && err == nil {
			err = termErr
		}
	})
	return err
}
