// ABOUTME: Audio output interface tests
// ABOUTME: Verifies backend selection and PCM buffer conversion
package output

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/binaural-go/binaural/pkg/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendsImplementDevice(t *testing.T) {
	var _ Device = (*Malgo)(nil)
	var _ Device = (*Pulse)(nil)
	var _ Device = (*Oto)(nil)
	var _ Device = (*PortAudio)(nil)
}

func TestNew(t *testing.T) {
	tests := []struct {
		backend string
		want    string
	}{
		{"", "malgo"},
		{"malgo", "malgo"},
		{"Pulse", "pulse"},
		{" oto ", "oto"},
		{"portaudio", "portaudio"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			dev, err := New(tt.backend, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, dev.Name())
		})
	}
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New("jack", Options{})
	require.ErrorIs(t, err, ErrUnknownBackend)
	assert.Contains(t, err.Error(), "malgo")
}

func TestBackendsSorted(t *testing.T) {
	assert.Equal(t, []string{"malgo", "oto", "portaudio", "pulse"}, Backends())
}

func TestOptionsOverride(t *testing.T) {
	base := audio.DeviceConfig{SampleRate: 44100, Channels: 6}

	assert.Equal(t, base, Options{}.override(base))

	got := Options{SampleRate: 48000, Channels: 2}.override(base)
	assert.Equal(t, uint32(48000), got.SampleRate)
	assert.Equal(t, uint8(2), got.Channels)
}

func ramp(out []float32) {
	for i := range out {
		out[i] = float32(i) * 0.25
	}
}

func TestPCMWriterFloat32(t *testing.T) {
	cfg := audio.DeviceConfig{SampleRate: 48000, Channels: 2, Format: audio.FormatFloat32}
	w := newPCMWriter(cfg, ramp, 16)

	// 3 whole frames plus 5 stray bytes
	dst := make([]byte, 3*8+5)
	for i := range dst {
		dst[i] = 0xff
	}

	n := w.fill(dst)
	require.Equal(t, 24, n)

	for i := 0; i < 6; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(dst[i*4:]))
		assert.Equal(t, float32(i)*0.25, got)
	}
	for i := n; i < len(dst); i++ {
		assert.Zero(t, dst[i], "byte %d after last frame should be zero", i)
	}
}

func TestPCMWriterInt16(t *testing.T) {
	cfg := audio.DeviceConfig{SampleRate: 48000, Channels: 1, Format: audio.FormatInt16}
	w := newPCMWriter(cfg, func(out []float32) {
		copy(out, []float32{0, 1, -1, 2, 0.5})
	}, 8)

	dst := make([]byte, 10)
	n := w.fill(dst)
	require.Equal(t, 10, n)

	want := []int16{0, math.MaxInt16, -math.MaxInt16, math.MaxInt16, 16383}
	for i, v := range want {
		assert.Equal(t, v, int16(binary.LittleEndian.Uint16(dst[i*2:])), "sample %d", i)
	}
}

func TestPCMWriterGrowsScratch(t *testing.T) {
	cfg := audio.DeviceConfig{SampleRate: 48000, Channels: 2, Format: audio.FormatFloat32}
	calls := 0
	w := newPCMWriter(cfg, func(out []float32) {
		calls++
		assert.Len(t, out, 200)
	}, 10)

	w.fill(make([]byte, 100*8))
	assert.Equal(t, 1, calls)
	assert.GreaterOrEqual(t, cap(w.scratch), 200)
}

func TestPCMWriterFrameSize(t *testing.T) {
	stereo := newPCMWriter(audio.DeviceConfig{SampleRate: 48000, Channels: 2, Format: audio.FormatInt16}, ramp, 16)
	assert.Equal(t, 4, stereo.frameBytes)

	unset := newPCMWriter(audio.DeviceConfig{SampleRate: 48000, Format: audio.FormatFloat32}, ramp, 16)
	assert.Equal(t, 1, unset.channels)
	assert.Equal(t, 4, unset.frameBytes)
}

func TestOtoReaderFrameAligned(t *testing.T) {
	cfg := audio.DeviceConfig{SampleRate: 48000, Channels: 2, Format: audio.FormatInt16}
	r := &otoReader{writer: newPCMWriter(cfg, ramp, 64)}

	// 4 bytes per frame; 10 bytes holds two frames
	n, err := r.Read(make([]byte, 10))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestNewPortAudio(t *testing.T) {
	dev := NewPortAudio(Options{})
	if _, ok := dev.(*PortAudio); !ok {
		t.Fatalf("expected *PortAudio, got %T", dev)
	}
}
