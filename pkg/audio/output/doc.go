// ABOUTME: Audio output package for callback-driven playback
// ABOUTME: Provides the Device and Stream interfaces and their backends
// Package output provides host audio playback for a render function.
//
// A Device reports its preferred format with DefaultConfig and opens a
// Stream that repeatedly calls a RenderFunc for interleaved float32 frames.
// Backends: malgo (miniaudio, default), pulse (PulseAudio protocol), oto and
// portaudio (build tag "portaudio").
//
// Example:
//
//	dev, err := output.New("malgo", output.Options{Logger: logger})
//	cfg, err := dev.DefaultConfig()
//	stream, err := dev.Open(cfg, engine.Render, func(err error) { log(err) })
//	err = stream.Start()
//	defer stream.Close()
package output
