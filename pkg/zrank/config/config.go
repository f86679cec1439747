// Package config loads the YAML session profile used by cmd/zrank: the
// default search strategy, the world-set memory ceiling, CSV export
// options and explanation verbosity. It follows the teacher's
// pkg/korel/config pattern of a plain Load function returning a typed
// value, rather than a builder.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/zrank/pkg/zrank/world"
)

// Profile is a session's configuration, usually loaded once at CLI
// startup.
type Profile struct {
	// Strategy names the default tolerance-pair search strategy:
	// "brute", "search_all" or "search_min".
	Strategy string `yaml:"strategy"`

	// MaxInterpretables caps the world set's interpretable count, the
	// same knob as world.Limits.MaxInterpretables.
	MaxInterpretables int `yaml:"max_interpretables"`

	CSV     CSVOptions `yaml:"csv"`
	Explain ExplainOptions `yaml:"explain"`
}

// CSVOptions controls pkg/zrank/csvio export.
type CSVOptions struct {
	// InfinitySentinel is the literal written for an infinite rank.
	// Defaults to "inf".
	InfinitySentinel string `yaml:"infinity_sentinel"`
}

// ExplainOptions controls explanation-tree verbosity.
type ExplainOptions struct {
	// Enabled turns on explanation-tree recording for query answers.
	Enabled bool `yaml:"enabled"`
}

// Default returns the profile used when no YAML file is given: the
// backtracking-all strategy, world.DefaultLimits, the "inf" sentinel, and
// explanations off.
func Default() Profile {
	return Profile{
		Strategy:          "search_all",
		MaxInterpretables: world.DefaultLimits.MaxInterpretables,
		CSV:               CSVOptions{InfinitySentinel: "inf"},
		Explain:           ExplainOptions{Enabled: false},
	}
}

// Load reads a session profile from a YAML file at path, filling in
// Default() for any field the file leaves zero-valued.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, err
	}
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if p.MaxInterpretables <= 0 {
		p.MaxInterpretables = world.DefaultLimits.MaxInterpretables
	}
	if p.CSV.InfinitySentinel == "" {
		p.CSV.InfinitySentinel = "inf"
	}
	return p, nil
}

// Limits adapts the profile's memory ceiling to world.Limits.
func (p Profile) Limits() world.Limits {
	return world.Limits{MaxInterpretables: p.MaxInterpretables}
}
