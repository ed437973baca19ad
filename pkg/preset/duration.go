// ABOUTME: Session length buckets offered in the duration menu
// ABOUTME: Named buckets and custom minute counts share the DurationSpec interface
package preset

import "fmt"

// DurationSpec is a session length in whole minutes
type DurationSpec interface {
	Minutes() uint32
	fmt.Stringer
}

// Duration is a named session length
type Duration int

const (
	FiveMinutes Duration = iota
	TenMinutes
	FifteenMinutes
	TwentyMinutes
	ThirtyMinutes
	ThirtyFiveMinutes
	FortyMinutes
	FiftyMinutes
	SixtyMinutes
)

// Minutes returns the bucket length. Panics on an unknown bucket.
func (d Duration) Minutes() uint32 {
	switch d {
	case FiveMinutes:
		return 5
	case TenMinutes:
		return 10
	case FifteenMinutes:
		return 15
	case TwentyMinutes:
		return 20
	case ThirtyMinutes:
		return 30
	case ThirtyFiveMinutes:
		return 35
	case FortyMinutes:
		return 40
	case FiftyMinutes:
		return 50
	case SixtyMinutes:
		return 60
	default:
		panic(fmt.Sprintf("preset: unmapped duration %d", int(d)))
	}
}

// String returns the menu label, e.g. "5 min"
func (d Duration) String() string {
	return fmt.Sprintf("%d min", d.Minutes())
}

// CustomMinutes is an explicit session length
type CustomMinutes uint32

// Minutes returns the value unchanged
func (c CustomMinutes) Minutes() uint32 { return uint32(c) }

func (c CustomMinutes) String() string {
	return fmt.Sprintf("%d min", uint32(c))
}

// Durations lists the named buckets in menu order
func Durations() []Duration {
	return []Duration{
		FiveMinutes,
		TenMinutes,
		FifteenMinutes,
		TwentyMinutes,
		ThirtyMinutes,
		ThirtyFiveMinutes,
		FortyMinutes,
		FiftyMinutes,
		SixtyMinutes,
	}
}

// DurationIndex returns the menu position of the bucket with the given
// length, or -1 when no bucket matches.
func DurationIndex(minutes uint32) int {
	for i, d := range Durations() {
		if d.Minutes() == minutes {
			return i
		}
	}
	return -1
}
