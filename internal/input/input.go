// ABOUTME: Stop-trigger sources for the plain terminal mode
// ABOUTME: Enter key presses on stdin and OS termination signals
package input

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/binaural-go/binaural/pkg/binaural"
)

type result struct {
	ev  binaural.Event
	err error
}

// LineSource emits an "enter" event for every line read from r
type LineSource struct {
	r       io.Reader
	source  string
	once    sync.Once
	results chan result
}

// NewLineSource reads lines from r; source labels the events
func NewLineSource(r io.Reader, source string) *LineSource {
	return &LineSource{
		r:       r,
		source:  source,
		results: make(chan result),
	}
}

// NewStdinSource watches the terminal for Enter
func NewStdinSource() *LineSource {
	return NewLineSource(os.Stdin, "stdin")
}

// start runs the reader goroutine. A read error is delivered and reading
// resumes with a fresh scanner; only a clean EOF closes results.
func (s *LineSource) start() {
	go func() {
		defer close(s.results)
		for {
			scanner := bufio.NewScanner(s.r)
			for scanner.Scan() {
				s.results <- result{ev: binaural.Event{Key: "enter", Source: s.source}}
			}
			err := scanner.Err()
			if err == nil {
				return
			}
			s.results <- result{err: err}
		}
	}()
}

// Next implements binaural.Source. The reader goroutine stays blocked in
// Read after ctx is done; stdin cannot be interrupted portably.
func (s *LineSource) Next(ctx context.Context) (binaural.Event, error) {
	s.once.Do(s.start)

	select {
	case r, ok := <-s.results:
		if !ok {
			return binaural.Event{}, io.EOF
		}
		return r.ev, r.err
	case <-ctx.Done():
		return binaural.Event{}, ctx.Err()
	}
}

// SignalSource emits a "signal" event for each OS signal received
type SignalSource struct {
	ch chan os.Signal
}

// NewSignalSource subscribes to sigs until Stop is called
func NewSignalSource(sigs ...os.Signal) *SignalSource {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	return &SignalSource{ch: ch}
}

// Next implements binaural.Source
func (s *SignalSource) Next(ctx context.Context) (binaural.Event, error) {
	select {
	case sig := <-s.ch:
		return binaural.Event{Key: "signal", Source: sig.String()}, nil
	case <-ctx.Done():
		return binaural.Event{}, ctx.Err()
	}
}

// Stop unsubscribes from the signals
func (s *SignalSource) Stop() {
	signal.Stop(s.ch)
}
