// ABOUTME: Audio type definitions
// ABOUTME: Defines output device configuration and float32 sample packing
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// SampleFormat identifies how samples are laid out in a device buffer
type SampleFormat int

const (
	FormatFloat32 SampleFormat = iota
	FormatInt16
)

// String returns a short human-readable format name
func (f SampleFormat) String() string {
	switch f {
	case FormatFloat32:
		return "F32"
	case FormatInt16:
		return "S16"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// BytesPerSample returns the size of one sample of this format
func (f SampleFormat) BytesPerSample() int {
	if f == FormatInt16 {
		return 2
	}
	return 4
}

// DeviceConfig describes an output device's stream format.
// It is read once at session start and treated as immutable afterwards.
type DeviceConfig struct {
	Name       string
	SampleRate uint32
	Channels   uint8
	Format     SampleFormat
}

// Valid reports whether the config can drive a stream
func (c DeviceConfig) Valid() bool {
	return c.SampleRate > 0 && c.Channels > 0
}

// BytesPerFrame returns the size of one interleaved frame
func (c DeviceConfig) BytesPerFrame() int {
	return int(c.Channels) * c.Format.BytesPerSample()
}

// FrameDuration converts a frame count to wall-clock time at this sample rate
func (c DeviceConfig) FrameDuration(frames uint64) time.Duration {
	if c.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(frames) / float64(c.SampleRate) * float64(time.Second))
}

func (c DeviceConfig) String() string {
	name := c.Name
	if name == "" {
		name = "default"
	}
	return fmt.Sprintf("%s (%dHz, %s, %s)", name, c.SampleRate, ChannelName(int(c.Channels)), c.Format)
}

// ChannelName returns "Mono", "Stereo" or "<n>ch"
func ChannelName(channels int) string {
	switch channels {
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	default:
		return fmt.Sprintf("%dch", channels)
	}
}

// PutFloat32LE packs src into dst as little-endian IEEE-754 floats and
// returns the number of bytes written. dst must hold len(src)*4 bytes.
func PutFloat32LE(dst []byte, src []float32) int {
	for i, s := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(s))
	}
	return len(src) * 4
}

// Float32ToInt16 converts a [-1, 1] sample to 16-bit PCM with clipping
func Float32ToInt16(sample float32) int16 {
	if sample > 1 {
		sample = 1
	} else if sample < -1 {
		sample = -1
	}
	return int16(sample * math.MaxInt16)
}
