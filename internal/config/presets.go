// ABOUTME: YAML file of user-defined presets
// ABOUTME: Entries are validated like built-ins before they reach the menu
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/binaural-go/binaural/pkg/preset"
	"gopkg.in/yaml.v3"
)

// PresetEntry is one preset in the YAML file
type PresetEntry struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	CarrierHz   float64 `yaml:"carrier_hz"`
	BeatHz      float64 `yaml:"beat_hz"`
	Minutes     uint32  `yaml:"minutes"`
}

// PresetFile is the document layout:
//
//	presets:
//	  - name: Schumann
//	    description: Earth resonance
//	    carrier_hz: 200
//	    beat_hz: 7.83
//	    minutes: 45
type PresetFile struct {
	Presets []PresetEntry `yaml:"presets"`
}

// LoadPresets reads a preset file. An empty path yields no presets.
func LoadPresets(path string) ([]preset.Definition, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets file: %w", err)
	}
	defs, err := ParsePresets(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// ParsePresets decodes and validates a preset document. Unknown keys,
// duplicate names and unplayable values are rejected.
func ParsePresets(data []byte) ([]preset.Definition, error) {
	var file PresetFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parse presets: %w", ErrInvalidConfig, err)
	}

	seen := make(map[string]bool, len(file.Presets))
	defs := make([]preset.Definition, 0, len(file.Presets))
	for i, e := range file.Presets {
		name := strings.TrimSpace(e.Name)
		slug := preset.Slug(name)
		if slug == "" {
			return nil, fmt.Errorf("%w: preset %d has no name", ErrInvalidConfig, i+1)
		}
		if seen[slug] {
			return nil, fmt.Errorf("%w: duplicate preset %q", ErrInvalidConfig, name)
		}
		seen[slug] = true

		def := preset.Custom(name, e.Description, e.CarrierHz, e.BeatHz, e.Minutes)
		if err := def.Params().Validate(); err != nil {
			return nil, fmt.Errorf("%w: preset %q: %w", ErrInvalidConfig, name, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}
