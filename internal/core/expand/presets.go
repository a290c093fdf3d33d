package expand

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is a reusable prefix/suffix list loaded from a YAML file.
type Preset struct {
	Prefixes []string `yaml:"prefixes"`
	Suffixes []string `yaml:"suffixes"`
}

// BuiltinPresetName selects the built-in B2B-oriented preset.
const BuiltinPresetName = "default"

// DefaultPreset is a starter prefix/suffix set for commercial keyword
// research.
func DefaultPreset() Preset {
	return Preset{
		Prefixes: []string{"best", "cheap", "enterprise", "what is"},
		Suffixes: []string{"software", "services", "near me", "for small business"},
	}
}

// LoadPreset reads a prefix/suffix preset from a YAML file. The name
// "default" resolves to the built-in preset without touching disk.
func LoadPreset(path string) (Preset, error) {
	if path == BuiltinPresetName {
		return DefaultPreset(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("read preset file: %w", err)
	}

	var preset Preset
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return Preset{}, fmt.Errorf("parse preset file: %w", err)
	}

	preset.Prefixes = Lines(preset.Prefixes)
	preset.Suffixes = Lines(preset.Suffixes)
	return preset, nil
}
