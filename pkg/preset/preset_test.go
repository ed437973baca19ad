// ABOUTME: Tests for preset resolution, bands and durations
// ABOUTME: Verifies every preset maps to valid playback parameters
package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllPresetsResolveToValidParams(t *testing.T) {
	all := All()
	require.Len(t, all, 32)

	seen := make(map[string]bool)
	for _, p := range all {
		t.Run(p.String(), func(t *testing.T) {
			params := Resolve(p)
			assert.NoError(t, params.Validate())
			assert.NotEmpty(t, p.Description())
			assert.False(t, seen[p.String()], "duplicate display name")
			seen[p.String()] = true
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		preset  Preset
		carrier float64
		beat    float64
		minutes uint32
	}{
		{Focus, 400, 20, 30},
		{HighFocus, 500, 40, 30},
		{Relaxation, 300, 10, 15},
		{Sleep, 100, 2, 60},
		{Astral, 140, 6.3, 60},
		{Healing, 100, 6, 60},
		{Alpha, 300, 10, 30},
		{Intelligence, 500, 40, 10},
		{Euphoria, 210.42, 20, 10},
		{CrownAstral, 172.06, 2, 60},
		{SolfeggioHeartChakra, 639, 10, 15},
		{SolfeggioCrownChakra, 963, 40, 10},
		{TuningForkSolarPlexusChakra, 126.22, 10, 30},
		{TuningForkThirdEyeChakra, 221.23, 20, 10},
	}

	for _, tt := range tests {
		t.Run(tt.preset.String(), func(t *testing.T) {
			p := Resolve(tt.preset)
			assert.InDelta(t, tt.carrier, p.CarrierHz, 1e-9)
			assert.InDelta(t, tt.beat, p.BeatHz, 1e-9)
			assert.Equal(t, tt.minutes, p.DurationMinutes)
		})
	}
}

func TestAlphaPresetEarFrequencies(t *testing.T) {
	p := Resolve(Alpha)
	assert.Equal(t, 295.0, p.LeftHz())
	assert.Equal(t, 305.0, p.RightHz())
}

func TestUnmappedPresetPanics(t *testing.T) {
	assert.Panics(t, func() { Preset(99).Definition() })
	assert.Panics(t, func() { Carrier(99).Hz() })
	assert.Panics(t, func() { Beat(-1).Hz() })
	assert.Panics(t, func() { Duration(42).Minutes() })
}

func TestCustomValuesPassThrough(t *testing.T) {
	p := ResolveCustom(CustomHz(432), CustomHz(7.83), CustomMinutes(45))
	assert.Equal(t, 432.0, p.CarrierHz)
	assert.Equal(t, 7.83, p.BeatHz)
	assert.Equal(t, uint32(45), p.DurationMinutes)

	mixed := ResolveCustom(SolfeggioHeart, BeatAlpha, TwentyMinutes)
	assert.Equal(t, 639.0, mixed.CarrierHz)
	assert.Equal(t, 10.0, mixed.BeatHz)
	assert.Equal(t, uint32(20), mixed.DurationMinutes)
}

func TestDurations(t *testing.T) {
	var minutes []uint32
	var labels []string
	for _, d := range Durations() {
		minutes = append(minutes, d.Minutes())
		labels = append(labels, d.String())
	}

	assert.Equal(t, []uint32{5, 10, 15, 20, 30, 35, 40, 50, 60}, minutes)
	assert.Equal(t, "5 min", labels[0])
	assert.Equal(t, "60 min", labels[len(labels)-1])
}

func TestDurationIndex(t *testing.T) {
	assert.Equal(t, 0, DurationIndex(5))
	assert.Equal(t, 4, DurationIndex(30))
	assert.Equal(t, 8, DurationIndex(60))
	assert.Equal(t, -1, DurationIndex(45))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		want Preset
	}{
		{"Focus", Focus},
		{"high focus", HighFocus},
		{"high-focus", HighFocus},
		{"Crown Chakra Focus", CrownFocus},
		{"tuning_fork_third_eye_chakra", TuningForkThirdEyeChakra},
	}

	for _, tt := range tests {
		got, err := Parse(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got)
	}

	_, err := Parse("lucid dreaming")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestLookupPrefersExtraDefinitions(t *testing.T) {
	extra := []Definition{
		Custom("Schumann", "Earth resonance", 200, 7.83, 20),
		Custom("Focus", "My own focus", 250, 14, 25),
	}

	d, err := Lookup("schumann", extra)
	require.NoError(t, err)
	assert.Equal(t, 7.83, d.Params().BeatHz)

	d, err = Lookup("focus", extra)
	require.NoError(t, err)
	assert.Equal(t, "My own focus", d.Description)

	d, err = Lookup("Deep Relaxation", extra)
	require.NoError(t, err)
	assert.Equal(t, Resolve(DeepRelaxation), d.Params())

	_, err = Lookup("nope", extra)
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestFrequencyStrings(t *testing.T) {
	assert.Equal(t, "Solfeggio Third Eye", SolfeggioThirdEye.String())
	assert.Equal(t, "Gamma", BeatGamma.String())
	assert.Equal(t, "Custom 7.83 Hz", CustomHz(7.83).String())
	assert.Equal(t, "45 min", CustomMinutes(45).String())
}
