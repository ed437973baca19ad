// ABOUTME: Cancellation signal shared by the controller, listener and audio callback
// ABOUTME: A single atomic flag that only ever goes from false to true
package binaural

import "sync/atomic"

// Signal is the session's cancellation flag. It is read from the audio
// rendering thread, so it never blocks.
type Signal struct {
	cancelled atomic.Bool
}

// NewSignal returns an unset signal
func NewSignal() *Signal {
	return &Signal{}
}

// Cancel sets the signal. It reports true only for the call that flipped it.
func (s *Signal) Cancel() bool {
	return s.cancelled.CompareAndSwap(false, true)
}

// Cancelled reports whether the signal has been set
func (s *Signal) Cancelled() bool {
	return s.cancelled.Load()
}
