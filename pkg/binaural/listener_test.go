// ABOUTME: Tests for the cancellation listener and signal
// ABOUTME: Covers stop matching, idempotence and read error retry
package binaural

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalFlipsOnce(t *testing.T) {
	sig := NewSignal()
	assert.False(t, sig.Cancelled())

	var flipped atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sig.Cancel() {
				flipped.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), flipped.Load())
	assert.True(t, sig.Cancelled())
}

func TestStopOn(t *testing.T) {
	isStop := StopOn("enter", "q")

	assert.True(t, isStop(Event{Key: "enter"}))
	assert.True(t, isStop(Event{Key: "q"}))
	assert.False(t, isStop(Event{Key: "x"}))
	assert.False(t, StopOn()(Event{Key: "enter"}))
}

func TestListenCancelsOnMatchingEvent(t *testing.T) {
	src := NewChanSource(4)
	sig := NewSignal()
	done := make(chan struct{})

	go func() {
		Listen(context.Background(), src, sig, StopOn("enter"), nil)
		close(done)
	}()

	require.True(t, src.Send(Event{Key: "x", Source: "test"}))
	time.Sleep(20 * time.Millisecond)
	assert.False(t, sig.Cancelled(), "non-stop key must be ignored")

	require.True(t, src.Send(Event{Key: "enter", Source: "test"}))
	require.Eventually(t, sig.Cancelled, time.Second, 5*time.Millisecond)

	// A second trigger is harmless
	src.Send(Event{Key: "enter", Source: "test"})
	src.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not return after source closed")
	}
	assert.True(t, sig.Cancelled())
}

func TestListenReturnsOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sig := NewSignal()
	done := make(chan struct{})

	go func() {
		Listen(ctx, NewChanSource(1), sig, nil, nil)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not return after context cancel")
	}
	assert.False(t, sig.Cancelled(), "context cancellation is not a stop request")
}

// flakySource fails a few reads before reporting EOF
type flakySource struct {
	failures int
	calls    atomic.Int32
}

func (f *flakySource) Next(ctx context.Context) (Event, error) {
	n := int(f.calls.Add(1))
	if n <= f.failures {
		return Event{}, errors.New("terminal read failed")
	}
	return Event{}, io.EOF
}

func TestListenRetriesReadErrors(t *testing.T) {
	src := &flakySource{failures: 3}
	sig := NewSignal()

	start := time.Now()
	Listen(context.Background(), src, sig, nil, nil)

	assert.Equal(t, int32(4), src.calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), 3*retryBackoff)
	assert.False(t, sig.Cancelled(), "read errors must never raise the signal")
}

func TestChanSourceDropsWhenFull(t *testing.T) {
	src := NewChanSource(1)

	assert.True(t, src.Send(Event{Key: "a"}))
	assert.False(t, src.Send(Event{Key: "b"}))

	ev, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", ev.Key)

	assert.False(t, src.Closed())
	src.Close()
	assert.True(t, src.Closed())
	assert.False(t, src.Send(Event{Key: "c"}))
	_, err = src.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestChanSourceStopBehindIgnoredEvent(t *testing.T) {
	src := NewChanSource(2)
	sig := NewSignal()

	require.True(t, src.Send(Event{Key: "x"}))
	require.True(t, src.Send(Event{Key: "enter"}))
	src.Close()

	Listen(context.Background(), src, sig, StopOn("enter"), nil)

	assert.True(t, sig.Cancelled())
}
