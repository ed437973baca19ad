// ABOUTME: Runtime configuration for the binaural player
// ABOUTME: Layers defaults, BINAURAL_* environment variables and command-line flags
package config

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/binaural-go/binaural/pkg/audio"
	"github.com/binaural-go/binaural/pkg/audio/output"
	"github.com/binaural-go/binaural/pkg/binaural"
	"github.com/binaural-go/binaural/pkg/preset"
)

// DefaultCustomMinutes is the session length for -carrier/-beat without -duration
const DefaultCustomMinutes = 30

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all runtime configuration
type Config struct {
	// Audio output
	Backend    string
	SampleRate int // 0 = device default
	Channels   int // 0 = device default
	Format     string
	Latency    time.Duration

	// Session
	PollInterval time.Duration

	// Logging
	LogFile string
	Debug   bool
	NoTUI   bool

	// Remote control
	ControlAddr string // empty disables the HTTP control server
	MDNS        bool
	Name        string

	// What to play
	Preset      string
	Duration    int // minutes; 0 = preset default
	Carrier     float64
	Beat        float64
	PresetsFile string

	// One-shot commands
	List       bool
	Version    bool
	Discover   bool
	Remote     string // address of another player's control API
	RemoteStop bool
}

// Defaults returns the configuration used when nothing is set
func Defaults() Config {
	return Config{
		Backend:      output.DefaultBackend,
		Format:       "f32",
		Latency:      50 * time.Millisecond,
		PollInterval: binaural.DefaultPollInterval,
		LogFile:      "binaural.log",
	}
}

// FromEnv overlays BINAURAL_* environment variables on the defaults
func FromEnv() Config {
	d := Defaults()
	return Config{
		Backend:    envStr("BINAURAL_BACKEND", d.Backend),
		SampleRate: envInt("BINAURAL_SAMPLE_RATE", d.SampleRate),
		Channels:   envInt("BINAURAL_CHANNELS", d.Channels),
		Format:     envStr("BINAURAL_FORMAT", d.Format),
		Latency:    time.Duration(envInt("BINAURAL_LATENCY_MS", int(d.Latency/time.Millisecond))) * time.Millisecond,

		PollInterval: time.Duration(envInt("BINAURAL_POLL_MS", int(d.PollInterval/time.Millisecond))) * time.Millisecond,

		LogFile: envStr("BINAURAL_LOG_FILE", d.LogFile),
		Debug:   envBool("BINAURAL_DEBUG", d.Debug),
		NoTUI:   envBool("BINAURAL_NO_TUI", d.NoTUI),

		ControlAddr: envStr("BINAURAL_CONTROL_ADDR", d.ControlAddr),
		MDNS:        envBool("BINAURAL_MDNS", d.MDNS),
		Name:        envStr("BINAURAL_NAME", d.Name),

		Preset:      envStr("BINAURAL_PRESET", d.Preset),
		Duration:    envInt("BINAURAL_DURATION", d.Duration),
		Carrier:     envFloat("BINAURAL_CARRIER", d.Carrier),
		Beat:        envFloat("BINAURAL_BEAT", d.Beat),
		PresetsFile: envStr("BINAURAL_PRESETS_FILE", d.PresetsFile),
	}
}

// RegisterFlags binds every option to fs, using the current values as defaults
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Backend, "backend", c.Backend, "Audio backend: "+strings.Join(output.Backends(), ", "))
	fs.IntVar(&c.SampleRate, "sample-rate", c.SampleRate, "Output sample rate in Hz (0: device default)")
	fs.IntVar(&c.Channels, "channels", c.Channels, "Output channel count (0: device default)")
	fs.StringVar(&c.Format, "format", c.Format, "Sample format for byte-oriented backends: f32 or s16")
	fs.DurationVar(&c.Latency, "latency", c.Latency, "Target output buffer length")
	fs.DurationVar(&c.PollInterval, "poll", c.PollInterval, "How often the session checks for stop requests (max 500ms)")

	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Log file path")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging")
	fs.BoolVar(&c.NoTUI, "no-tui", c.NoTUI, "Disable TUI, use streaming logs instead")
	fs.BoolVar(&c.NoTUI, "stream-logs", c.NoTUI, "Alias for -no-tui")

	fs.StringVar(&c.ControlAddr, "control", c.ControlAddr, "Listen address for the HTTP control API, e.g. :8928 (empty: disabled)")
	fs.BoolVar(&c.MDNS, "mdns", c.MDNS, "Advertise the control API via mDNS")
	fs.StringVar(&c.Name, "name", c.Name, "Friendly name for mDNS (default: hostname-binaural)")

	fs.StringVar(&c.Preset, "preset", c.Preset, "Preset name, e.g. \"Deep Relaxation\" or deep-relaxation")
	fs.IntVar(&c.Duration, "duration", c.Duration, "Session length in minutes (0: preset default)")
	fs.Float64Var(&c.Carrier, "carrier", c.Carrier, "Custom carrier frequency in Hz")
	fs.Float64Var(&c.Beat, "beat", c.Beat, "Custom beat frequency in Hz")
	fs.StringVar(&c.PresetsFile, "presets", c.PresetsFile, "YAML file with additional presets")

	fs.BoolVar(&c.List, "list", c.List, "List presets and exit")
	fs.BoolVar(&c.Version, "version", c.Version, "Print version and exit")
	fs.BoolVar(&c.Discover, "discover", c.Discover, "List binaural players advertised on the local network and exit")
	fs.StringVar(&c.Remote, "remote", c.Remote, "Follow the session of the player at host:port instead of playing")
	fs.BoolVar(&c.RemoteStop, "remote-stop", c.RemoteStop, "With -remote: stop that player's session and exit")
}

// Load builds the configuration from the environment and args (without the
// program name) and validates it.
func Load(args []string) (Config, error) {
	cfg := FromEnv()

	fs := flag.NewFlagSet("binaural", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("%w: unexpected argument %q", ErrInvalidConfig, fs.Arg(0))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks option ranges and combinations. Carrier and beat values
// themselves are checked by the session before any device is opened.
func (c Config) Validate() error {
	if c.RemoteStop && c.Remote == "" {
		return fmt.Errorf("%w: -remote-stop needs -remote", ErrInvalidConfig)
	}
	if c.List || c.Version || c.Discover || c.Remote != "" {
		return nil
	}

	if _, err := c.SampleFormat(); err != nil {
		return err
	}
	if c.SampleRate < 0 || c.SampleRate > 384000 {
		return fmt.Errorf("%w: sample rate %d out of range", ErrInvalidConfig, c.SampleRate)
	}
	if c.Channels < 0 || c.Channels > 32 {
		return fmt.Errorf("%w: channel count %d out of range", ErrInvalidConfig, c.Channels)
	}
	if c.Latency < 0 {
		return fmt.Errorf("%w: negative latency", ErrInvalidConfig)
	}
	if c.PollInterval <= 0 || c.PollInterval > binaural.MaxPollInterval {
		return fmt.Errorf("%w: poll interval must be in (0, %v]", ErrInvalidConfig, binaural.MaxPollInterval)
	}
	if c.Duration < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidConfig)
	}
	if int64(c.Duration) > math.MaxUint32 {
		return fmt.Errorf("%w: duration %d exceeds %d minutes", ErrInvalidConfig, c.Duration, uint32(math.MaxUint32))
	}
	if c.Custom() {
		if c.Preset != "" {
			return fmt.Errorf("%w: -preset cannot be combined with -carrier/-beat", ErrInvalidConfig)
		}
		if c.Carrier == 0 || c.Beat == 0 {
			return fmt.Errorf("%w: custom playback needs both -carrier and -beat", ErrInvalidConfig)
		}
	}
	if c.Interactive() && c.NoTUI {
		return fmt.Errorf("%w: pass -preset or -carrier/-beat when the TUI is disabled", ErrInvalidConfig)
	}
	if c.MDNS && c.ControlAddr == "" {
		return fmt.Errorf("%w: -mdns needs -control", ErrInvalidConfig)
	}
	return nil
}

// Custom reports whether explicit carrier/beat values were given
func (c Config) Custom() bool {
	return c.Carrier != 0 || c.Beat != 0
}

// Interactive reports whether the preset must be chosen from the menu
func (c Config) Interactive() bool {
	return !c.Custom() && c.Preset == ""
}

// SampleFormat maps the -format option
func (c Config) SampleFormat() (audio.SampleFormat, error) {
	switch strings.ToLower(c.Format) {
	case "", "f32", "float32":
		return audio.FormatFloat32, nil
	case "s16", "int16":
		return audio.FormatInt16, nil
	default:
		return 0, fmt.Errorf("%w: unknown sample format %q", ErrInvalidConfig, c.Format)
	}
}

// OutputOptions builds backend options from the audio settings
func (c Config) OutputOptions() output.Options {
	format, _ := c.SampleFormat()
	return output.Options{
		SampleRate: uint32(c.SampleRate),
		Channels:   uint8(c.Channels),
		Format:     format,
		Latency:    c.Latency,
	}
}

// Resolve returns what to play when the menu is not used: the custom values,
// or the named preset looked up in extra and then the built-ins, with
// -duration applied on top.
func (c Config) Resolve(extra []preset.Definition) (preset.Definition, error) {
	if c.Custom() {
		minutes := c.Duration
		if minutes == 0 {
			minutes = DefaultCustomMinutes
		}
		def := preset.Custom("Custom", "User-defined carrier and beat frequencies.", c.Carrier, c.Beat, uint32(minutes))
		return def, nil
	}

	def, err := preset.Lookup(c.Preset, extra)
	if err != nil {
		return preset.Definition{}, err
	}
	if c.Duration > 0 {
		def.Duration = durationSpec(uint32(c.Duration))
	}
	return def, nil
}

// durationSpec prefers a named bucket so it displays like the menu entries
func durationSpec(minutes uint32) preset.DurationSpec {
	if idx := preset.DurationIndex(minutes); idx >= 0 {
		return preset.Durations()[idx]
	}
	return preset.CustomMinutes(minutes)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
