// ABOUTME: Package documentation for presets
// ABOUTME: Explains bands, durations and resolution into playback params
// Package preset maps named presets, frequency bands and duration buckets to
// binaural.Params.
//
// Example:
//
//	params := preset.Resolve(preset.Alpha) // 300 Hz carrier, 10 Hz beat, 30 min
//	custom := preset.ResolveCustom(preset.SolfeggioHeart, preset.CustomHz(7.83), preset.CustomMinutes(45))
package preset
