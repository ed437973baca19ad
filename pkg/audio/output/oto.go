// ABOUTME: Oto-based audio output implementation
// ABOUTME: Oto's mixer pulls rendered frames through an io.Reader
package output

import (
	"fmt"
	"sync"
	"time"

	"github.com/binaural-go/binaural/pkg/audio"
	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

const (
	otoDefaultSampleRate = 48000
	otoDefaultChannels   = 2
	otoWatchInterval     = 250 * time.Millisecond
)

// oto allows one context per process; it is created on first Open and kept.
var (
	otoMu     sync.Mutex
	otoCtx    *oto.Context
	otoFormat audio.DeviceConfig
)

// Oto output implementation using oto library
type Oto struct {
	opts   Options
	logger *zap.Logger
}

// NewOto creates a new Oto output
func NewOto(opts Options) *Oto {
	return &Oto{
		opts:   opts,
		logger: opts.logger().With(zap.String("backend", "oto")),
	}
}

// Name implements Device
func (o *Oto) Name() string { return "oto" }

// DefaultConfig returns the configured format. Oto cannot query the device,
// so this is 48kHz stereo unless options say otherwise, or the format of an
// already-created context.
func (o *Oto) DefaultConfig() (audio.DeviceConfig, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		return otoFormat, nil
	}

	cfg := o.opts.override(audio.DeviceConfig{
		Name:       "default",
		SampleRate: otoDefaultSampleRate,
		Channels:   otoDefaultChannels,
		Format:     o.opts.Format,
	})
	if cfg.Channels > 2 {
		cfg.Channels = 2
	}
	return cfg, nil
}

// context returns the process-wide oto context, creating it for cfg
func (o *Oto) context(cfg audio.DeviceConfig) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if otoFormat.SampleRate != cfg.SampleRate || otoFormat.Channels != cfg.Channels || otoFormat.Format != cfg.Format {
			return nil, fmt.Errorf("%w: oto context already running as %s, cannot reinitialize as %s",
				ErrConfigRejected, otoFormat, cfg)
		}
		if err := otoCtx.Resume(); err != nil {
			return nil, fmt.Errorf("%w: failed to resume oto context: %w", ErrNoDevice, err)
		}
		return otoCtx, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   int(cfg.SampleRate),
		ChannelCount: int(cfg.Channels),
		Format:       otoSampleFormat(cfg.Format),
		BufferSize:   o.opts.Latency,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create oto context: %w", ErrNoDevice, err)
	}
	<-readyChan

	otoCtx = ctx
	otoFormat = cfg
	return ctx, nil
}

// Open creates a player reading from render
func (o *Oto) Open(cfg audio.DeviceConfig, render RenderFunc, onError ErrorFunc) (Stream, error) {
	if !cfg.Valid() || cfg.Channels > 2 {
		return nil, fmt.Errorf("%w: %s", ErrConfigRejected, cfg)
	}

	ctx, err := o.context(cfg)
	if err != nil {
		return nil, err
	}

	reader := &otoReader{writer: newPCMWriter(cfg, render, int(cfg.SampleRate)/2)}
	player := ctx.NewPlayer(reader)

	o.logger.Info("audio output initialized",
		zap.Uint32("sampleRate", cfg.SampleRate),
		zap.Uint8("channels", cfg.Channels),
		zap.Stringer("format", cfg.Format))

	return &otoStream{
		ctx:     ctx,
		player:  player,
		onError: onError,
		done:    make(chan struct{}),
	}, nil
}

// otoReader adapts a render function to the io.Reader oto pulls from.
// Reads always end on a frame boundary.
type otoReader struct {
	writer *pcmWriter
}

func (r *otoReader) Read(p []byte) (int, error) {
	return r.writer.fill(p), nil
}

type otoStream struct {
	ctx     *oto.Context
	player  *oto.Player
	onError ErrorFunc
	done    chan struct{}
	once    sync.Once
}

// Start implements Stream
func (s *otoStream) Start() error {
	s.player.Play()
	if err := s.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigRejected, err)
	}
	go s.watch()
	return nil
}

func (s *otoStream) watch() {
	ticker := time.NewTicker(otoWatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			err := s.ctx.Err()
			if err == nil {
				err = s.player.Err()
			}
			if err != nil {
				if s.onError != nil {
					s.onError(err)
				}
				return
			}
		}
	}
}

// Close implements Stream. The context is suspended, not destroyed, since
// oto cannot create a second one.
func (s *otoStream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		s.player.Pause()
		if closeErr := s.player.Close(); closeErr != nil {
			err = fmt.Errorf("player close: %w", closeErr)
		}
		otoMu.Lock()
		defer otoMu.Unlock()
		if suspendErr := s.ctx.Suspend(); suspendErr != nil && err == nil {
			err = fmt.Errorf("context suspend: %w", suspendErr)
		}
	})
	return err
}

func otoSampleFormat(f audio.SampleFormat) oto.Format {
	if f == audio.FormatInt16 {
		return oto.FormatSignedInt16LE
	}
	return oto.FormatFloat32LE
}
