// ABOUTME: Error taxonomy for binaural playback sessions
// ABOUTME: Separates configuration problems from audio device problems
package binaural

import (
	"errors"
	"fmt"

	"github.com/binaural-go/binaural/pkg/audio/output"
)

var (
	// ErrInvalidFrequency means a computed ear frequency is zero or negative.
	ErrInvalidFrequency = errors.New("calculated frequency for one ear is zero or negative")
	// ErrInvalidDuration means the session would last zero minutes.
	ErrInvalidDuration = errors.New("duration must be greater than zero minutes")

	ErrNoOutputDevice              = output.ErrNoDevice
	ErrStreamConfigurationRejected = output.ErrConfigRejected

	// ErrDeviceRuntime marks asynchronous errors reported after the stream started.
	ErrDeviceRuntime = errors.New("audio device failed during playback")

	// ErrSessionUsed is returned when Run is called twice on one Session.
	ErrSessionUsed = errors.New("session already run")
)

// ConfigError reports playback parameters that failed validation.
// No device resources have been acquired when it is returned.
type ConfigError struct {
	Params Params
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid playback parameters (carrier %.2f Hz, beat %.2f Hz, %d min): %v",
		e.Params.CarrierHz, e.Params.BeatHz, e.Params.DurationMinutes, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// DeviceError reports a failure of the host audio subsystem
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device: %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// Describe turns a session error into a message for the listener that says
// whether to fix the preset values or the audio setup.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return fmt.Sprintf("Configuration problem: %v.\nAdjust the carrier frequency, beat frequency or duration and try again.", cfgErr.Err)
	}

	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return fmt.Sprintf("Audio device problem: %v.\nCheck that an output device is connected and its driver is working, then try again.", devErr.Err)
	}

	return err.Error()
}

// deviceErr wraps err as a DeviceError, tagging it with fallback unless it
// already carries one of the device sentinels.
func deviceErr(op string, err error, fallback error) *DeviceError {
	if errors.Is(err, ErrNoOutputDevice) || errors.Is(err, ErrStreamConfigurationRejected) || errors.Is(err, ErrDeviceRuntime) {
		return &DeviceError{Op: op, Err: err}
	}
	return &DeviceError{Op: op, Err: fmt.Errorf("%w: %w", fallback, err)}
}
