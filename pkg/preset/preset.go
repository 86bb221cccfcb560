// Package preset holds the named quality levels for compression without a
// size target.
package preset

import (
	"fmt"
	"sort"
	"strings"
)

// Preset is a fixed render scale and encoder quality.
type Preset struct {
	Name        string
	Description string
	// Quality is the encoder quality in (0, 1].
	Quality float64
	// Scale is the render scale applied to each page's point size.
	Scale float64
}

// Available presets
var presets = map[string]Preset{
	"low": {
		Name:        "low",
		Description: "Smallest file, visibly softer pages",
		Quality:     0.40,
		Scale:       1.0,
	},
	"medium": {
		Name:        "medium",
		Description: "Balanced size and readability",
		Quality:     0.65,
		Scale:       1.5,
	},
	"high": {
		Name:        "high",
		Description: "Near-original look, modest savings",
		Quality:     0.82,
		Scale:       2.0,
	},
}

// Default is used when no preset is named.
const Default = "medium"

// Get returns a preset by name
func Get(name string) (Preset, error) {
	normalizedName := strings.ToLower(strings.TrimSpace(name))
	if normalizedName == "" {
		normalizedName = Default
	}

	if p, exists := presets[normalizedName]; exists {
		return p, nil
	}

	return Preset{}, fmt.Errorf("unknown preset '%s'. Available presets: %v", name, Names())
}

// List returns all presets ordered from smallest to largest output
func List() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quality < out[j].Quality })
	return out
}

// Names returns the preset names ordered from smallest to largest output
func Names() []string {
	var names []string
	for _, p := range List() {
		names = append(names, p.Name)
	}
	return names
}
