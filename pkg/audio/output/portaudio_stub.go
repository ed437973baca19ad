//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"errors"
	"fmt"

	"github.com/binaural-go/binaural/pkg/audio"
)

var errPortAudioDisabled = errors.New("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio output implementation (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio output
func NewPortAudio(opts Options) Device {
	return &PortAudio{}
}

// Name implements Device
func (p *PortAudio) Name() string { return "portaudio" }

// DefaultConfig always fails without the portaudio build tag
func (p *PortAudio) DefaultConfig() (audio.DeviceConfig, error) {
	return audio.DeviceConfig{}, fmt.Errorf("%w: %w", ErrNoDevice, errPortAudioDisabled)
}

// Open always fails without the portaudio build tag
func (p *PortAudio) Open(cfg audio.DeviceConfig, render RenderFunc, onError ErrorFunc) (Stream, error) {
	return nil, fmt.Errorf("%w: %w", ErrNoDevice, errPortAudioDisabled)
}
