// ABOUTME: Session controller that runs one binaural playback to completion
// ABOUTME: Validates, opens the output stream, waits for timeout or cancel, tears down
package binaural

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/binaural-go/binaural/pkg/audio"
	"github.com/binaural-go/binaural/pkg/audio/output"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultPollInterval is how often the controller checks for timeout or cancel
	DefaultPollInterval = 500 * time.Millisecond
	// MaxPollInterval bounds the teardown latency after cancellation
	MaxPollInterval = 500 * time.Millisecond
)

// State is a step of the session lifecycle
type State int

const (
	StateIdle State = iota
	StateValidating
	StateStreamStarting
	StatePlaying
	StateStopping
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateStreamStarting:
		return "stream-starting"
	case StatePlaying:
		return "playing"
	case StateStopping:
		return "stopping"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transitions can happen
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// StopReason says why playback ended
type StopReason string

const (
	StopNone      StopReason = ""
	StopTimeout   StopReason = "timeout"
	StopCancelled StopReason = "cancelled"
	StopContext   StopReason = "context"
)

// SessionConfig holds session configuration
type SessionConfig struct {
	// Params are the carrier, beat and duration to play
	Params Params

	// Device is the host audio output
	Device output.Device

	// PollInterval is how often the controller checks for timeout or
	// cancellation (default and maximum: 500ms)
	PollInterval time.Duration

	// Signal is the cancellation flag. A fresh one is created when nil; pass
	// one in to share it with listeners started before Run.
	Signal *Signal

	// Logger receives lifecycle and device error logs
	Logger *zap.Logger

	// OnStateChange is called on every state transition
	OnStateChange func(State)

	// OnError is called for asynchronous device errors during playback
	OnError func(error)
}

// Status is a point-in-time view of a session
type Status struct {
	ID        string             `json:"id"`
	State     string             `json:"state"`
	Reason    StopReason         `json:"reason,omitempty"`
	CarrierHz float64            `json:"carrierHz"`
	BeatHz    float64            `json:"beatHz"`
	LeftHz    float64            `json:"leftHz"`
	RightHz   float64            `json:"rightHz"`
	Minutes   uint32             `json:"durationMinutes"`
	Device    audio.DeviceConfig `json:"device"`
	Elapsed   time.Duration      `json:"elapsed"`
	Remaining time.Duration      `json:"remaining"`
	Cancelled bool               `json:"cancelled"`
	Engine    EngineStats        `json:"engine"`
}

// Session runs a single playback. It is not reusable: a failed or finished
// session must be replaced by a new one.
type Session struct {
	id     string
	config SessionConfig
	signal *Signal
	logger *zap.Logger
	now    func() time.Time
	used   atomic.Bool

	mu      sync.RWMutex
	state   State
	reason  StopReason
	device  audio.DeviceConfig
	engine  *Engine
	started time.Time
	stopped time.Time
}

// NewSession creates an idle session
func NewSession(config SessionConfig) *Session {
	if config.PollInterval <= 0 || config.PollInterval > MaxPollInterval {
		config.PollInterval = DefaultPollInterval
	}
	if config.Signal == nil {
		config.Signal = NewSignal()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	id := uuid.New().String()

	return &Session{
		id:     id,
		config: config,
		signal: config.Signal,
		logger: logger.With(zap.String("session", id)),
		now:    time.Now,
		state:  StateIdle,
	}
}

// ID returns the session's unique id
func (s *Session) ID() string { return s.id }

// Signal returns the cancellation handle
func (s *Session) Signal() *Signal { return s.signal }

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Cancel requests an early stop; the stream is torn down at the next poll
func (s *Session) Cancel() {
	if s.signal.Cancel() {
		s.logger.Info("cancellation requested")
	}
}

// Run validates the parameters, starts the stream and blocks until the
// duration elapses, the signal is set or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	if !s.used.CompareAndSwap(false, true) {
		return ErrSessionUsed
	}

	p := s.config.Params

	s.setState(StateValidating)
	if err := p.Validate(); err != nil {
		s.logger.Warn("invalid playback parameters", zap.Error(err))
		s.setState(StateFailed)
		return err
	}

	s.setState(StateStreamStarting)
	stream, err := s.startStream(p)
	if err != nil {
		s.logger.Error("failed to start output stream", zap.Error(err))
		s.setState(StateFailed)
		return err
	}

	s.mu.Lock()
	s.started = s.now()
	s.mu.Unlock()
	s.setState(StatePlaying)
	s.logger.Info("playing",
		zap.Float64("carrierHz", p.CarrierHz),
		zap.Float64("beatHz", p.BeatHz),
		zap.Float64("leftHz", p.LeftHz()),
		zap.Float64("rightHz", p.RightHz()),
		zap.Uint32("minutes", p.DurationMinutes))

	reason := s.wait(ctx, p.Duration())

	s.mu.Lock()
	s.reason = reason
	s.stopped = s.now()
	s.mu.Unlock()
	s.setState(StateStopping)

	// The callback keeps rendering until Close returns; make it silent.
	s.signal.Cancel()

	closeErr := stream.Close()
	s.setState(StateDone)

	stats := s.engine.Stats()
	s.logger.Info("playback finished",
		zap.String("reason", string(reason)),
		zap.Uint64("frames", stats.Frames),
		zap.Uint64("buffers", stats.Buffers),
		zap.Uint64("silencedBuffers", stats.Silenced))

	if closeErr != nil {
		return &DeviceError{Op: "close stream", Err: closeErr}
	}
	return nil
}

// startStream queries the device format and opens a stream bound to a fresh
// engine and the session signal.
func (s *Session) startStream(p Params) (output.Stream, error) {
	dev := s.config.Device
	if dev == nil {
		return nil, &DeviceError{Op: "select device", Err: ErrNoOutputDevice}
	}

	cfg, err := dev.DefaultConfig()
	if err != nil {
		return nil, deviceErr("query default config", err, ErrNoOutputDevice)
	}
	if !cfg.Valid() {
		return nil, &DeviceError{
			Op:  "query default config",
			Err: fmt.Errorf("%w: %d Hz, %d channels", ErrStreamConfigurationRejected, cfg.SampleRate, cfg.Channels),
		}
	}

	s.logger.Info("output device", zap.String("backend", dev.Name()), zap.Stringer("config", cfg))

	engine := NewEngine(p, cfg, s.signal)
	s.mu.Lock()
	s.device = cfg
	s.engine = engine
	s.mu.Unlock()

	stream, err := dev.Open(cfg, engine.Render, s.handleDeviceError)
	if err != nil {
		return nil, deviceErr("open stream", err, ErrStreamConfigurationRejected)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, deviceErr("start stream", err, ErrStreamConfigurationRejected)
	}
	return stream, nil
}

// wait polls for timeout or cancellation at the configured interval
func (s *Session) wait(ctx context.Context, total time.Duration) StopReason {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	s.mu.RLock()
	start := s.started
	s.mu.RUnlock()

	for {
		if s.signal.Cancelled() {
			s.logger.Info("playback cancelled by user")
			return StopCancelled
		}
		if s.now().Sub(start) >= total {
			s.logger.Info("session duration reached")
			return StopTimeout
		}

		select {
		case <-ctx.Done():
			s.logger.Info("session context done", zap.Error(ctx.Err()))
			return StopContext
		case <-ticker.C:
		}
	}
}

// handleDeviceError is the stream's asynchronous error sink
func (s *Session) handleDeviceError(err error) {
	devErr := deviceErr("playback", err, ErrDeviceRuntime)
	s.logger.Error("output device error", zap.Error(devErr))
	if s.config.OnError != nil {
		s.config.OnError(devErr)
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	prev := s.state
	s.state = state
	s.mu.Unlock()

	if prev != state {
		s.logger.Debug("session state", zap.Stringer("from", prev), zap.Stringer("to", state))
		if s.config.OnStateChange != nil {
			s.config.OnStateChange(state)
		}
	}
}

// Status returns a snapshot for display or remote polling
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.config.Params
	st := Status{
		ID:        s.id,
		State:     s.state.String(),
		Reason:    s.reason,
		CarrierHz: p.CarrierHz,
		BeatHz:    p.BeatHz,
		LeftHz:    p.LeftHz(),
		RightHz:   p.RightHz(),
		Minutes:   p.DurationMinutes,
		Device:    s.device,
		Cancelled: s.signal.Cancelled(),
	}

	if !s.started.IsZero() {
		end := s.now()
		if !s.stopped.IsZero() {
			end = s.stopped
		}
		st.Elapsed = end.Sub(s.started)
		if remaining := p.Duration() - st.Elapsed; remaining > 0 && s.stopped.IsZero() {
			st.Remaining = remaining
		}
	}
	if s.engine != nil {
		st.Engine = s.engine.Stats()
	}
	return st
}
