// pkg/config/markers.go

package config

import (
	"os"

	cerr "github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// MarkerOverrides lets an operator extend or replace the log severity marker
// sets without rebuilding the harness. Loaded from the markers_file setting.
type MarkerOverrides struct {
	// Severe patterns are regression signatures; any match in a scenario's
	// log window is a hard failure.
	Severe []string `yaml:"severe"`
	// Informational patterns are recorded but never fail a scenario.
	Informational []string `yaml:"informational"`
	// Replace drops the built-in sets instead of appending to them.
	Replace bool `yaml:"replace"`
}

// LoadMarkerOverrides parses a marker override file. A missing path returns
// empty overrides, not an error.
func LoadMarkerOverrides(path string) (*MarkerOverrides, error) {
	if path == "" {
		return &MarkerOverrides{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &MarkerOverrides{}, nil
		}
		return nil, cerr.Wrapf(err, "reading marker file %s", path)
	}

	var m MarkerOverrides
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, cerr.Wrapf(err, "parsing marker file %s", path)
	}
	return &m, nil
}
