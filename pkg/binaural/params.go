// ABOUTME: Playback parameters and ear-frequency calculation
// ABOUTME: Validates carrier/beat/duration before any device is opened
package binaural

import (
	"fmt"
	"math"
	"time"
)

// Params are the concrete values of one playback session
type Params struct {
	CarrierHz       float64
	BeatHz          float64
	DurationMinutes uint32
}

// EarFrequencies splits a carrier around a beat: the ears differ by beatHz.
func EarFrequencies(carrierHz, beatHz float64) (leftHz, rightHz float64) {
	return carrierHz - beatHz/2, carrierHz + beatHz/2
}

// LeftHz is the tone played to the left ear
func (p Params) LeftHz() float64 {
	l, _ := EarFrequencies(p.CarrierHz, p.BeatHz)
	return l
}

// RightHz is the tone played to the right ear
func (p Params) RightHz() float64 {
	_, r := EarFrequencies(p.CarrierHz, p.BeatHz)
	return r
}

// maxMinutes is the longest session time.Duration can hold
const maxMinutes = math.MaxInt64 / int64(time.Minute)

// Duration is the configured session length. Lengths beyond what
// time.Duration can represent saturate instead of wrapping.
func (p Params) Duration() time.Duration {
	if int64(p.DurationMinutes) > maxMinutes {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(p.DurationMinutes) * time.Minute
}

// Validate checks both ear frequencies are positive and finite and the
// duration is at least one minute. Failures are returned as *ConfigError.
func (p Params) Validate() error {
	left, right := EarFrequencies(p.CarrierHz, p.BeatHz)
	if !positive(left) || !positive(right) {
		return &ConfigError{
			Params: p,
			Err:    fmt.Errorf("%w (left %.2f Hz, right %.2f Hz)", ErrInvalidFrequency, left, right),
		}
	}
	if p.DurationMinutes == 0 {
		return &ConfigError{Params: p, Err: ErrInvalidDuration}
	}
	return nil
}

func (p Params) String() string {
	return fmt.Sprintf("carrier=%.2fHz beat=%.2fHz left=%.2fHz right=%.2fHz duration=%dmin",
		p.CarrierHz, p.BeatHz, p.LeftHz(), p.RightHz(), p.DurationMinutes)
}

func positive(hz float64) bool {
	return hz > 0 && !math.IsInf(hz, 0) && !math.IsNaN(hz)
}
