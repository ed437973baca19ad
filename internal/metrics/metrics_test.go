// ABOUTME: Tests for session metrics
// ABOUTME: Checks state gauges, counter deltas and outcome labels
package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/binaural-go/binaural/pkg/binaural"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSetsOneHotState(t *testing.T) {
	r := NewRecorder()
	r.Observe(binaural.Status{State: "playing", Remaining: 90 * time.Second, CarrierHz: 300, BeatHz: 10})

	assert.Equal(t, 1.0, testutil.ToFloat64(SessionState.WithLabelValues("playing")))
	assert.Equal(t, 0.0, testutil.ToFloat64(SessionState.WithLabelValues("idle")))
	assert.Equal(t, 90.0, testutil.ToFloat64(RemainingSeconds))
	assert.Equal(t, 300.0, testutil.ToFloat64(CarrierHz))

	r.Observe(binaural.Status{State: "done"})
	assert.Equal(t, 0.0, testutil.ToFloat64(SessionState.WithLabelValues("playing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(SessionState.WithLabelValues("done")))
}

func TestObserveAddsDeltas(t *testing.T) {
	before := testutil.ToFloat64(FramesRenderedTotal)
	silencedBefore := testutil.ToFloat64(SilencedBuffersTotal)

	r := NewRecorder()
	r.Observe(binaural.Status{Engine: binaural.EngineStats{Frames: 1000, Silenced: 1}})
	r.Observe(binaural.Status{Engine: binaural.EngineStats{Frames: 1500, Silenced: 1}})
	r.Observe(binaural.Status{Engine: binaural.EngineStats{Frames: 1500, Silenced: 3}})

	assert.Equal(t, 1500.0, testutil.ToFloat64(FramesRenderedTotal)-before)
	assert.Equal(t, 3.0, testutil.ToFloat64(SilencedBuffersTotal)-silencedBefore)
}

func TestFinishCountsOutcome(t *testing.T) {
	before := testutil.ToFloat64(SessionsTotal.WithLabelValues("timeout"))

	NewRecorder().Finish(binaural.Status{State: "done", Reason: binaural.StopTimeout}, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(SessionsTotal.WithLabelValues("timeout"))-before)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		st   binaural.Status
		err  error
		want string
	}{
		{binaural.Status{Reason: binaural.StopCancelled}, nil, "cancelled"},
		{binaural.Status{Reason: binaural.StopTimeout}, nil, "timeout"},
		{binaural.Status{}, &binaural.ConfigError{Err: binaural.ErrInvalidFrequency}, "config_error"},
		{binaural.Status{}, fmt.Errorf("run: %w", &binaural.DeviceError{Op: "open", Err: binaural.ErrNoOutputDevice}), "device_error"},
		{binaural.Status{}, errors.New("boom"), "error"},
		{binaural.Status{}, nil, "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.st, tt.err))
	}
}

func TestStopRequested(t *testing.T) {
	before := testutil.ToFloat64(StopRequestsTotal.WithLabelValues("http"))
	r := NewRecorder()
	r.StopRequested("http")
	r.StopRequested("")

	assert.Equal(t, 1.0, testutil.ToFloat64(StopRequestsTotal.WithLabelValues("http"))-before)
	assert.GreaterOrEqual(t, testutil.ToFloat64(StopRequestsTotal.WithLabelValues("unknown")), 1.0)
}
