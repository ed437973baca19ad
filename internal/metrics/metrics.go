// ABOUTME: Prometheus metrics for playback sessions
// ABOUTME: Fed from the status loop, served on /metrics by the control server
package metrics

import (
	"errors"
	"sync"

	"github.com/binaural-go/binaural/pkg/binaural"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gauges
var (
	SessionState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "binaural_session_state",
		Help: "1 for the current session state, 0 for the others",
	}, []string{"state"})
	RemainingSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "binaural_session_remaining_seconds",
		Help: "Seconds until the current session times out",
	})
	CarrierHz = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "binaural_carrier_hz",
		Help: "Carrier frequency of the current session",
	})
	BeatHz = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "binaural_beat_hz",
		Help: "Beat frequency of the current session",
	})
)

// Counters
var (
	SessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "binaural_sessions_total",
		Help: "Finished sessions by outcome",
	}, []string{"outcome"})
	FramesRenderedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "binaural_frames_rendered_total",
		Help: "Audio frames rendered with tone",
	})
	SilencedBuffersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "binaural_silenced_buffers_total",
		Help: "Device buffers filled with silence because the phase state was busy",
	})
	DeviceErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "binaural_device_errors_total",
		Help: "Errors reported by the audio device",
	})
	StopRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "binaural_stop_requests_total",
		Help: "Stop requests by source",
	}, []string{"source"})
)

var states = []binaural.State{
	binaural.StateIdle,
	binaural.StateValidating,
	binaural.StateStreamStarting,
	binaural.StatePlaying,
	binaural.StateStopping,
	binaural.StateDone,
	binaural.StateFailed,
}

// Recorder turns the cumulative engine counters of one session into
// counter increments.
type Recorder struct {
	mu       sync.Mutex
	frames   uint64
	silenced uint64
}

// NewRecorder creates a recorder for a new session
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Observe publishes a status snapshot
func (r *Recorder) Observe(st binaural.Status) {
	for _, s := range states {
		v := 0.0
		if s.String() == st.State {
			v = 1
		}
		SessionState.WithLabelValues(s.String()).Set(v)
	}
	RemainingSeconds.Set(st.Remaining.Seconds())
	CarrierHz.Set(st.CarrierHz)
	BeatHz.Set(st.BeatHz)

	r.mu.Lock()
	defer r.mu.Unlock()
	if st.Engine.Frames > r.frames {
		FramesRenderedTotal.Add(float64(st.Engine.Frames - r.frames))
		r.frames = st.Engine.Frames
	}
	if st.Engine.Silenced > r.silenced {
		SilencedBuffersTotal.Add(float64(st.Engine.Silenced - r.silenced))
		r.silenced = st.Engine.Silenced
	}
}

// Finish records the final status and outcome of the session
func (r *Recorder) Finish(st binaural.Status, err error) {
	r.Observe(st)
	SessionsTotal.WithLabelValues(Outcome(st, err)).Inc()
}

// DeviceError counts an asynchronous device error
func (r *Recorder) DeviceError() {
	DeviceErrorsTotal.Inc()
}

// StopRequested counts a stop event from source
func (r *Recorder) StopRequested(source string) {
	if source == "" {
		source = "unknown"
	}
	StopRequestsTotal.WithLabelValues(source).Inc()
}

// Outcome names how a session ended: its stop reason, or the kind of failure
func Outcome(st binaural.Status, err error) string {
	var cfgErr *binaural.ConfigError
	var devErr *binaural.DeviceError
	switch {
	case errors.As(err, &cfgErr):
		return "config_error"
	case errors.As(err, &devErr):
		return "device_error"
	case err != nil:
		return "error"
	case st.Reason != binaural.StopNone:
		return string(st.Reason)
	default:
		return "unknown"
	}
}
