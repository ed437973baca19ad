// ABOUTME: Cancellation listener that watches an external stop trigger
// ABOUTME: Raises the session signal once when a matching event arrives
package binaural

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// retryBackoff is the pause after a failed read before trying again
const retryBackoff = 100 * time.Millisecond

// Event is one user or system action that may stop playback
type Event struct {
	Key    string // "enter", "q", "ctrl+c", "signal", "http"
	Source string // where it came from, for logs
}

// Source produces events. Next blocks until an event arrives, ctx is done or
// the source is exhausted (io.EOF).
type Source interface {
	Next(ctx context.Context) (Event, error)
}

// StopOn matches events whose key is one of keys
func StopOn(keys ...string) func(Event) bool {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return func(ev Event) bool {
		_, ok := set[ev.Key]
		return ok
	}
}

// Listen reads events from src until ctx is done or src returns io.EOF, and
// cancels sig on the first event isStop accepts. A nil isStop accepts every
// event. Read errors are logged and retried; they never cancel playback.
func Listen(ctx context.Context, src Source, sig *Signal, isStop func(Event) bool, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for {
		ev, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			if errors.Is(err, io.EOF) {
				logger.Debug("stop source closed")
				return
			}

			logger.Warn("failed to read stop trigger", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryBackoff):
			}
			continue
		}

		if isStop != nil && !isStop(ev) {
			continue
		}
		if sig.Cancel() {
			logger.Info("stop requested", zap.String("key", ev.Key), zap.String("source", ev.Source))
		}
	}
}

// ChanSource is an in-process event source. Send never blocks; an event
// sent while the buffer is full is dropped and Send reports false. A stop
// can only be lost that way if the buffer holds events the listener will
// ignore, so producers that send non-stop events need room for them too.
type ChanSource struct {
	events chan Event
	closed chan struct{}
	once   sync.Once
}

// NewChanSource creates a source with room for size pending events
func NewChanSource(size int) *ChanSource {
	if size < 1 {
		size = 1
	}
	return &ChanSource{
		events: make(chan Event, size),
		closed: make(chan struct{}),
	}
}

// Send queues an event. It reports false if it was dropped.
func (c *ChanSource) Send(ev Event) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.events <- ev:
		return true
	default:
		return false
	}
}

// Closed reports whether Close has been called
func (c *ChanSource) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Close makes Next return io.EOF once pending events are drained
func (c *ChanSource) Close() {
	c.once.Do(func() { close(c.closed) })
}

// Next implements Source
func (c *ChanSource) Next(ctx context.Context) (Event, error) {
	select {
	case ev := <-c.events:
		return ev, nil
	default:
	}

	select {
	case ev := <-c.events:
		return ev, nil
	case <-c.closed:
		return Event{}, io.EOF
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}
