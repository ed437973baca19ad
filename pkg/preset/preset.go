// ABOUTME: Built-in binaural presets and their carrier/beat/duration values
// ABOUTME: Resolves presets or custom values into playback parameters
package preset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/binaural-go/binaural/pkg/binaural"
)

// ErrUnknownPreset is returned by Parse and Lookup for names that match nothing
var ErrUnknownPreset = errors.New("unknown preset")

// Preset is one of the built-in presets
type Preset int

const (
	Focus Preset = iota
	HighFocus
	Relaxation
	DeepRelaxation
	Sleep
	Chanting
	Intuition
	Astral
	Healing
	Alpha
	Intelligence
	Euphoria

	CrownFocus
	CrownRelaxation
	CrownSleep
	CrownChanting
	CrownIntuition
	CrownAstral

	SolfeggioRootChakra
	SolfeggioSacralChakra
	SolfeggioSolarPlexusChakra
	SolfeggioHeartChakra
	SolfeggioThroatChakra
	SolfeggioThirdEyeChakra
	SolfeggioCrownChakra

	TuningForkRootChakra
	TuningForkSacralChakra
	TuningForkSolarPlexusChakra
	TuningForkHeartChakra
	TuningForkThroatChakra
	TuningForkThirdEyeChakra
	TuningForkCrownChakra
)

// Definition is a resolved preset: what to play and for how long
type Definition struct {
	Name        string
	Description string
	Carrier     FrequencySpec
	Beat        FrequencySpec
	Duration    DurationSpec
}

// Params converts the definition into unvalidated playback parameters
func (d Definition) Params() binaural.Params {
	return ResolveCustom(d.Carrier, d.Beat, d.Duration)
}

func def(p Preset, carrier, beat FrequencySpec, d Duration) Definition {
	return Definition{
		Name:        p.String(),
		Description: p.Description(),
		Carrier:     carrier,
		Beat:        beat,
		Duration:    d,
	}
}

// Definition returns the preset's values. Every Preset constant is mapped;
// anything else is a programming error and panics.
func (p Preset) Definition() Definition {
	switch p {
	case Focus:
		return def(p, CarrierBeta, BeatBeta, ThirtyMinutes)
	case HighFocus:
		return def(p, CarrierGamma, BeatGamma, ThirtyMinutes)
	case Relaxation:
		return def(p, CarrierAlpha, BeatAlpha, FifteenMinutes)
	case DeepRelaxation:
		return def(p, CarrierTheta, BeatTheta, FifteenMinutes)
	case Sleep:
		return def(p, CarrierDelta, BeatDelta, SixtyMinutes)
	case Chanting:
		return def(p, CarrierTheta, BeatTheta, ThirtyMinutes)
	case Intuition:
		return def(p, CarrierTheta, BeatTheta, FifteenMinutes)
	case Astral:
		return def(p, CustomHz(140), CustomHz(6.3), SixtyMinutes)
	case Healing:
		return def(p, CarrierDelta, BeatTheta, SixtyMinutes)
	case Alpha:
		return def(p, CarrierAlpha, BeatAlpha, ThirtyMinutes)
	case Intelligence:
		return def(p, CarrierGamma, BeatGamma, TenMinutes)
	case Euphoria:
		return def(p, CustomHz(210.42), CustomHz(20), TenMinutes)

	case CrownFocus:
		return def(p, TuningForkCrown, BeatBeta, ThirtyMinutes)
	case CrownRelaxation:
		return def(p, TuningForkCrown, BeatAlpha, FifteenMinutes)
	case CrownSleep:
		return def(p, TuningForkCrown, BeatDelta, SixtyMinutes)
	case CrownChanting:
		return def(p, TuningForkCrown, BeatTheta, ThirtyMinutes)
	case CrownIntuition:
		return def(p, TuningForkCrown, BeatTheta, FifteenMinutes)
	case CrownAstral:
		return def(p, TuningForkCrown, BeatDelta, SixtyMinutes)

	case SolfeggioRootChakra:
		return def(p, SolfeggioRoot, BeatDelta, ThirtyMinutes)
	case SolfeggioSacralChakra:
		return def(p, SolfeggioSacral, BeatTheta, ThirtyMinutes)
	case SolfeggioSolarPlexusChakra:
		return def(p, SolfeggioSolarPlexus, BeatAlpha, ThirtyMinutes)
	case SolfeggioHeartChakra:
		return def(p, SolfeggioHeart, BeatAlpha, FifteenMinutes)
	case SolfeggioThroatChakra:
		return def(p, SolfeggioThroat, BeatBeta, TenMinutes)
	case SolfeggioThirdEyeChakra:
		return def(p, SolfeggioThirdEye, BeatBeta, TenMinutes)
	case SolfeggioCrownChakra:
		return def(p, SolfeggioCrown, BeatGamma, TenMinutes)

	case TuningForkRootChakra:
		return def(p, TuningForkRoot, BeatDelta, ThirtyMinutes)
	case TuningForkSacralChakra:
		return def(p, TuningForkSacral, BeatTheta, ThirtyMinutes)
	case TuningForkSolarPlexusChakra:
		return def(p, TuningForkSolarPlexus, BeatAlpha, ThirtyMinutes)
	case TuningForkHeartChakra:
		return def(p, TuningForkHeart, BeatAlpha, FifteenMinutes)
	case TuningForkThroatChakra:
		return def(p, TuningForkThroat, BeatBeta, TenMinutes)
	case TuningForkThirdEyeChakra:
		return def(p, TuningForkThirdEye, BeatBeta, TenMinutes)
	case TuningForkCrownChakra:
		return def(p, TuningForkCrown, BeatGamma, TenMinutes)

	default:
		panic(fmt.Sprintf("preset: unmapped preset %d", int(p)))
	}
}

// String returns the display name
func (p Preset) String() string {
	switch p {
	case Focus:
		return "Focus"
	case HighFocus:
		return "High Focus"
	case Relaxation:
		return "Relaxation"
	case DeepRelaxation:
		return "Deep Relaxation"
	case Sleep:
		return "Sleep"
	case Chanting:
		return "Chanting"
	case Intuition:
		return "Intuition"
	case Astral:
		return "Astral"
	case Healing:
		return "Healing"
	case Alpha:
		return "Alpha"
	case Intelligence:
		return "Intelligence"
	case Euphoria:
		return "Euphoria"
	case CrownFocus:
		return "Crown Chakra Focus"
	case CrownRelaxation:
		return "Crown Chakra Relaxation"
	case CrownSleep:
		return "Crown Chakra Sleep"
	case CrownChanting:
		return "Crown Chakra Chanting"
	case CrownIntuition:
		return "Crown Chakra Intuition"
	case CrownAstral:
		return "Crown Chakra Astral"
	case SolfeggioRootChakra:
		return "Solfeggio Root Chakra"
	case SolfeggioSacralChakra:
		return "Solfeggio Sacral Chakra"
	case SolfeggioSolarPlexusChakra:
		return "Solfeggio Solar Plexus Chakra"
	case SolfeggioHeartChakra:
		return "Solfeggio Heart Chakra"
	case SolfeggioThroatChakra:
		return "Solfeggio Throat Chakra"
	case SolfeggioThirdEyeChakra:
		return "Solfeggio Third Eye Chakra"
	case SolfeggioCrownChakra:
		return "Solfeggio Crown Chakra"
	case TuningForkRootChakra:
		return "Tuning Fork Root Chakra"
	case TuningForkSacralChakra:
		return "Tuning Fork Sacral Chakra"
	case TuningForkSolarPlexusChakra:
		return "Tuning Fork Solar Plexus Chakra"
	case TuningForkHeartChakra:
		return "Tuning Fork Heart Chakra"
	case TuningForkThroatChakra:
		return "Tuning Fork Throat Chakra"
	case TuningForkThirdEyeChakra:
		return "Tuning Fork Third Eye Chakra"
	case TuningForkCrownChakra:
		return "Tuning Fork Crown Chakra"
	default:
		return fmt.Sprintf("Preset(%d)", int(p))
	}
}

// Description is a one-line summary shown next to the preset in menus
func (p Preset) Description() string {
	switch p {
	case Focus:
		return "Concentration and alertness for study or problem solving (Beta)"
	case HighFocus:
		return "Peak concentration and heavy cognitive work (Gamma)"
	case Relaxation:
		return "Calm alertness for unwinding or light meditation (Alpha)"
	case DeepRelaxation:
		return "Deep calm between wakefulness and sleep (Theta)"
	case Sleep:
		return "Deep, restorative, dreamless sleep (Delta)"
	case Chanting:
		return "The meditative state reached while chanting (Theta)"
	case Intuition:
		return "Intuition, insight and creativity (Theta)"
	case Astral:
		return "Deep Theta beat on a low carrier for strongly altered states"
	case Healing:
		return "Restorative processes associated with deep sleep (Delta carrier)"
	case Alpha:
		return "Relaxed awareness and stress reduction (Alpha)"
	case Intelligence:
		return "Learning and high-level information processing (Gamma)"
	case Euphoria:
		return "Happiness and well-being"
	case CrownFocus:
		return "Crown tuning fork tone with a Beta beat for focused meditation"
	case CrownRelaxation:
		return "Crown tuning fork tone with an Alpha beat for a relaxed spiritual state"
	case CrownSleep:
		return "Crown tuning fork tone with a Delta beat for rest and renewal"
	case CrownChanting:
		return "Crown tuning fork tone with a Theta beat for meditative practice"
	case CrownIntuition:
		return "Crown tuning fork tone with a Theta beat for intuition and awareness"
	case CrownAstral:
		return "Crown tuning fork tone with a Delta beat for advanced meditation"
	case SolfeggioRootChakra:
		return "396 Hz with a Delta beat for grounding and stability"
	case SolfeggioSacralChakra:
		return "417 Hz with a Theta beat for creativity and emotional release"
	case SolfeggioSolarPlexusChakra:
		return "528 Hz with an Alpha beat for transformation and motivation"
	case SolfeggioHeartChakra:
		return "639 Hz with an Alpha beat for love and connection"
	case SolfeggioThroatChakra:
		return "741 Hz with a Beta beat for communication and expression"
	case SolfeggioThirdEyeChakra:
		return "852 Hz with a Beta beat for clarity and intuition"
	case SolfeggioCrownChakra:
		return "963 Hz with a Gamma beat for spiritual connection and unity"
	case TuningForkRootChakra:
		return "194.18 Hz with a Delta beat for grounding"
	case TuningForkSacralChakra:
		return "210.42 Hz with a Theta beat for emotional flow"
	case TuningForkSolarPlexusChakra:
		return "126.22 Hz with an Alpha beat for confidence"
	case TuningForkHeartChakra:
		return "136.10 Hz with an Alpha beat for love and compassion"
	case TuningForkThroatChakra:
		return "141.27 Hz with a Beta beat for communication"
	case TuningForkThirdEyeChakra:
		return "221.23 Hz with a Beta beat for insight and wisdom"
	case TuningForkCrownChakra:
		return "172.06 Hz with a Gamma beat for spiritual transcendence"
	default:
		return ""
	}
}

// All lists the built-in presets in menu order
func All() []Preset {
	all := make([]Preset, 0, int(TuningForkCrownChakra)+1)
	for p := Focus; p <= TuningForkCrownChakra; p++ {
		all = append(all, p)
	}
	return all
}

// Resolve returns the playback parameters of a built-in preset
func Resolve(p Preset) binaural.Params {
	return p.Definition().Params()
}

// ResolveCustom builds playback parameters from explicit values. The result
// is not validated.
func ResolveCustom(carrier, beat FrequencySpec, d DurationSpec) binaural.Params {
	return binaural.Params{
		CarrierHz:       carrier.Hz(),
		BeatHz:          beat.Hz(),
		DurationMinutes: d.Minutes(),
	}
}

// Custom builds a definition from raw values, e.g. a user preset file entry
func Custom(name, description string, carrierHz, beatHz float64, minutes uint32) Definition {
	return Definition{
		Name:        name,
		Description: description,
		Carrier:     CustomHz(carrierHz),
		Beat:        CustomHz(beatHz),
		Duration:    CustomMinutes(minutes),
	}
}

// Slug normalises a preset name for matching: "Crown Chakra Focus",
// "crown-chakra-focus" and "crown_chakra_focus" all become "crownchakrafocus".
func Slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Parse finds a built-in preset by display name, ignoring case and punctuation
func Parse(name string) (Preset, error) {
	want := Slug(name)
	for _, p := range All() {
		if Slug(p.String()) == want {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// Lookup searches extra definitions first, then the built-ins
func Lookup(name string, extra []Definition) (Definition, error) {
	want := Slug(name)
	for _, d := range extra {
		if Slug(d.Name) == want {
			return d, nil
		}
	}
	p, err := Parse(name)
	if err != nil {
		return Definition{}, err
	}
	return p.Definition(), nil
}
