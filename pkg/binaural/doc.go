// ABOUTME: Package documentation for the binaural playback engine
// ABOUTME: Describes the engine, session and cancellation pieces
// Package binaural generates binaural beat audio on a live output device.
//
// A Session validates Params, opens a stream on an output.Device and feeds it
// from an Engine, whose Render method runs on the device's audio thread. The
// session stops when its duration elapses or its Signal is cancelled, for
// example by Listen reacting to an Enter key press.
//
// Example:
//
//	session := binaural.NewSession(binaural.SessionConfig{
//		Params: binaural.Params{CarrierHz: 300, BeatHz: 10, DurationMinutes: 30},
//		Device: dev,
//	})
//	go binaural.Listen(ctx, keys, session.Signal(), binaural.StopOn("enter"), logger)
//	if err := session.Run(ctx); err != nil {
//		fmt.Println(binaural.Describe(err))
//	}
package binaural
