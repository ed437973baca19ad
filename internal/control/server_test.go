// ABOUTME: Tests for the HTTP control API
// ABOUTME: Exercises status, stop, the WebSocket feed and server lifecycle
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/binaural-go/binaural/pkg/binaural"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStatus() binaural.Status {
	return binaural.Status{ID: "abc", State: "playing", CarrierHz: 300, BeatHz: 10, LeftHz: 295, RightHz: 305, Minutes: 30}
}

func newTestServer(t *testing.T) (*Server, *binaural.ChanSource, *httptest.Server) {
	t.Helper()
	stop := binaural.NewChanSource(1)
	s := New(Config{Status: testStatus, Stop: stop, StatusInterval: 10 * time.Millisecond})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, stop, ts
}

func TestHealth(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestStatus(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var st binaural.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "playing", st.State)
	assert.Equal(t, 295.0, st.LeftHz)
	assert.Equal(t, uint32(30), st.Minutes)
}

func TestStatusWithoutSession(t *testing.T) {
	s := New(Config{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStopSendsEvent(t *testing.T) {
	_, stop, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/stop", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ev, err := stop.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, binaural.Event{Key: "stop", Source: "http"}, ev)
}

func TestStopWithPendingStopIsAccepted(t *testing.T) {
	_, stop, ts := newTestServer(t)
	require.True(t, stop.Send(binaural.Event{Key: "enter", Source: "tui"}))

	resp, err := http.Post(ts.URL+"/stop", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestStopAfterCloseConflicts(t *testing.T) {
	_, stop, ts := newTestServer(t)
	stop.Close()

	resp, err := http.Post(ts.URL+"/stop", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestStopRequiresPost(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/stop")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	_, _, ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/stop", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebSocketStreamsStatusAndStops(t *testing.T) {
	_, stop, ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	for i := 0; i < 2; i++ {
		var st binaural.Status
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		require.NoError(t, conn.ReadJSON(&st))
		assert.Equal(t, "abc", st.ID)
	}

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("stop")))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ev, err := stop.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http", ev.Source)
}

func TestServeLifecycle(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0", Status: testStatus})

	assert.ErrorIs(t, s.Serve(context.Background()), ErrNotListening)
	require.NoError(t, s.Listen())
	require.NotZero(t, s.Port())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/healthz", s.Port())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
