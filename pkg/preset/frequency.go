// ABOUTME: Named carrier and beat frequency bands plus custom frequencies
// ABOUTME: Each band maps to a fixed Hz value used to build playback params
package preset

import "fmt"

// FrequencySpec is a frequency that is either a named band or a custom value
type FrequencySpec interface {
	Hz() float64
	fmt.Stringer
}

// Carrier is a named carrier tone
type Carrier int

const (
	CarrierDelta Carrier = iota
	CarrierTheta
	CarrierAlpha
	CarrierBeta
	CarrierGamma

	SolfeggioRoot
	SolfeggioSacral
	SolfeggioSolarPlexus
	SolfeggioHeart
	SolfeggioThroat
	SolfeggioThirdEye
	SolfeggioCrown

	TuningForkRoot
	TuningForkSacral
	TuningForkSolarPlexus
	TuningForkHeart
	TuningForkThroat
	TuningForkThirdEye
	TuningForkCrown
)

// Hz returns the carrier frequency. Panics on an unknown band.
func (c Carrier) Hz() float64 {
	switch c {
	case CarrierDelta:
		return 100
	case CarrierTheta:
		return 200
	case CarrierAlpha:
		return 300
	case CarrierBeta:
		return 400
	case CarrierGamma:
		return 500
	case SolfeggioRoot:
		return 396
	case SolfeggioSacral:
		return 417
	case SolfeggioSolarPlexus:
		return 528
	case SolfeggioHeart:
		return 639
	case SolfeggioThroat:
		return 741
	case SolfeggioThirdEye:
		return 852
	case SolfeggioCrown:
		return 963
	case TuningForkRoot:
		return 194.18
	case TuningForkSacral:
		return 210.42
	case TuningForkSolarPlexus:
		return 126.22
	case TuningForkHeart:
		return 136.10
	case TuningForkThroat:
		return 141.27
	case TuningForkThirdEye:
		return 221.23
	case TuningForkCrown:
		return 172.06
	default:
		panic(fmt.Sprintf("preset: unmapped carrier %d", int(c)))
	}
}

func (c Carrier) String() string {
	switch c {
	case CarrierDelta:
		return "Delta"
	case CarrierTheta:
		return "Theta"
	case CarrierAlpha:
		return "Alpha"
	case CarrierBeta:
		return "Beta"
	case CarrierGamma:
		return "Gamma"
	case SolfeggioRoot:
		return "Solfeggio Root"
	case SolfeggioSacral:
		return "Solfeggio Sacral"
	case SolfeggioSolarPlexus:
		return "Solfeggio Solar Plexus"
	case SolfeggioHeart:
		return "Solfeggio Heart"
	case SolfeggioThroat:
		return "Solfeggio Throat"
	case SolfeggioThirdEye:
		return "Solfeggio Third Eye"
	case SolfeggioCrown:
		return "Solfeggio Crown"
	case TuningForkRoot:
		return "Tuning Fork Root"
	case TuningForkSacral:
		return "Tuning Fork Sacral"
	case TuningForkSolarPlexus:
		return "Tuning Fork Solar Plexus"
	case TuningForkHeart:
		return "Tuning Fork Heart"
	case TuningForkThroat:
		return "Tuning Fork Throat"
	case TuningForkThirdEye:
		return "Tuning Fork Third Eye"
	case TuningForkCrown:
		return "Tuning Fork Crown"
	default:
		return fmt.Sprintf("Carrier(%d)", int(c))
	}
}

// Beat is a named brainwave band used as the beat frequency
type Beat int

const (
	BeatDelta Beat = iota
	BeatTheta
	BeatAlpha
	BeatBeta
	BeatGamma
)

// Hz returns the beat frequency. Panics on an unknown band.
func (b Beat) Hz() float64 {
	switch b {
	case BeatDelta:
		return 2
	case BeatTheta:
		return 6
	case BeatAlpha:
		return 10
	case BeatBeta:
		return 20
	case BeatGamma:
		return 40
	default:
		panic(fmt.Sprintf("preset: unmapped beat %d", int(b)))
	}
}

func (b Beat) String() string {
	switch b {
	case BeatDelta:
		return "Delta"
	case BeatTheta:
		return "Theta"
	case BeatAlpha:
		return "Alpha"
	case BeatBeta:
		return "Beta"
	case BeatGamma:
		return "Gamma"
	default:
		return fmt.Sprintf("Beat(%d)", int(b))
	}
}

// CustomHz is an explicit frequency, used for either carrier or beat
type CustomHz float64

// Hz returns the value unchanged
func (c CustomHz) Hz() float64 { return float64(c) }

func (c CustomHz) String() string {
	return fmt.Sprintf("Custom %.2f Hz", float64(c))
}
