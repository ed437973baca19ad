// ABOUTME: Malgo-based audio output using the miniaudio callback model
// ABOUTME: The device thread pulls samples straight from the render function
package output

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/binaural-go/binaural/pkg/audio"
	"github.com/gen2brain/malgo"
	"go.uber.org/zap"
)

// errDeviceStopped is reported when miniaudio stops a stream we did not close
var errDeviceStopped = errors.New("playback device stopped unexpectedly")

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	opts   Options
	logger *zap.Logger

	mu       sync.Mutex
	malgoCtx *malgo.AllocatedContext
}

// NewMalgo creates a new Malgo output
func NewMalgo(opts Options) *Malgo {
	return &Malgo{
		opts:   opts,
		logger: opts.logger().With(zap.String("backend", "malgo")),
	}
}

// Name implements Device
func (m *Malgo) Name() string { return "malgo" }

// context lazily initialises the miniaudio context (must hold m.mu)
func (m *Malgo) context() (*malgo.AllocatedContext, error) {
	if m.malgoCtx != nil {
		return m.malgoCtx, nil
	}
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		m.logger.Debug("miniaudio", zap.String("message", message))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize malgo context: %w", ErrNoDevice, err)
	}
	m.malgoCtx = ctx
	return ctx, nil
}

// DefaultConfig opens the default playback device with no format constraints
// and reads back what miniaudio negotiated.
func (m *Malgo) DefaultConfig() (audio.DeviceConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, err := m.context()
	if err != nil {
		return audio.DeviceConfig{}, err
	}

	probeConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	probeConfig.Playback.Format = malgoFormat(m.opts.Format)
	probeConfig.Alsa.NoMMap = 1

	probe, err := malgo.InitDevice(ctx.Context, probeConfig, malgo.DeviceCallbacks{})
	if err != nil {
		return audio.DeviceConfig{}, fmt.Errorf("%w: %w", ErrNoDevice, err)
	}
	defer probe.Uninit()

	cfg := audio.DeviceConfig{
		Name:       "default",
		SampleRate: probe.SampleRate(),
		Channels:   clampChannels(probe.PlaybackChannels()),
		Format:     m.opts.Format,
	}
	return m.opts.override(cfg), nil
}

// Open initializes a playback device with the given format
func (m *Malgo) Open(cfg audio.DeviceConfig, render RenderFunc, onError ErrorFunc) (Stream, error) {
	if !cfg.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrConfigRejected, cfg)
	}

	m.mu.Lock()
	ctx, err := m.context()
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s := &malgoStream{
		owner:   m,
		writer:  newPCMWriter(cfg, render, int(cfg.SampleRate)),
		onError: onError,
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgoFormat(cfg.Format)
	deviceConfig.Playback.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = cfg.SampleRate
	deviceConfig.Alsa.NoMMap = 1
	if m.opts.Latency > 0 {
		deviceConfig.PeriodSizeInMilliseconds = uint32(m.opts.Latency.Milliseconds())
	}

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			s.writer.fill(pOutputSample)
		},
		Stop: s.stopped,
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize playback device: %w", ErrConfigRejected, err)
	}
	s.device = device

	m.logger.Info("audio output initialized",
		zap.Uint32("sampleRate", cfg.SampleRate),
		zap.Uint8("channels", cfg.Channels),
		zap.String("format", formatName(deviceConfig.Playback.Format)))

	return s, nil
}

// release frees the miniaudio context
func (m *Malgo) release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			m.logger.Warn("malgo context uninit error", zap.Error(err))
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
}

type malgoStream struct {
	owner   *Malgo
	device  *malgo.Device
	writer  *pcmWriter
	onError ErrorFunc
	closing atomic.Bool
	once    sync.Once
}

// Start implements Stream
func (s *malgoStream) Start() error {
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("%w: failed to start device: %w", ErrConfigRejected, err)
	}
	return nil
}

// stopped runs on miniaudio's thread whenever the device stops
func (s *malgoStream) stopped() {
	if s.closing.Load() || s.onError == nil {
		return
	}
	go s.onError(errDeviceStopped)
}

// Close implements Stream
func (s *malgoStream) Close() error {
	var err error
	s.once.Do(func() {
		s.closing.Store(true)
		if s.device.IsStarted() {
			if stopErr := s.device.Stop(); stopErr != nil {
				err = fmt.Errorf("device stop: %w", stopErr)
			}
		}
		s.device.Uninit()
		s.owner.release()
	})
	return err
}

func malgoFormat(f audio.SampleFormat) malgo.FormatType {
	if f == audio.FormatInt16 {
		return malgo.FormatS16
	}
	return malgo.FormatF32
}

func clampChannels(n uint32) uint8 {
	if n > 255 {
		return 255
	}
	return uint8(n)
}

// formatName returns human-readable format name
func formatName(format malgo.FormatType) string {
	switch format {
	case malgo.FormatS16:
		return "S16"
	case malgo.FormatF32:
		return "F32"
	default:
		return fmt.Sprintf("Unknown(%d)", format)
	}
}
