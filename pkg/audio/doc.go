// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines DeviceConfig and sample packing used by the output backends
// Package audio provides fundamental audio types shared by the synthesis engine
// and the output backends.
//
// This package defines:
//   - DeviceConfig: the sample rate, channel count and sample format of an output device
//   - SampleFormat: the in-buffer sample layout
//
// It also provides allocation-free helpers for packing float32 samples into the
// byte buffers that callback-style audio APIs hand out.
//
// Example:
//
//	cfg := audio.DeviceConfig{SampleRate: 48000, Channels: 2, Format: audio.FormatFloat32}
//	n := audio.PutFloat32LE(out, samples)
package audio
