// Package territory builds and caches the per-territory coverage maps and
// reverse indexes the location iterator walks.
package territory

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"geosampler/pkg/geo"
)

// Territory is a named bounding box. Reference rows whose name matches
// Pattern (anchored at the start, empty matches everything) are drawn into
// it.
type Territory struct {
	Key       string    `yaml:"key"`
	Pattern   string    `yaml:"pattern"`
	NorthEast geo.Point `yaml:"north_east"`
	SouthWest geo.Point `yaml:"south_west"`
}

// Germany is the default territory.
var Germany = Territory{
	Key:       "de",
	Pattern:   ".*",
	NorthEast: geo.NewPoint(55.036449, 14.735913),
	SouthWest: geo.NewPoint(47.214631, 6.298413),
}

func (t Territory) Area() geo.Area {
	return geo.NewArea(t.SouthWest, t.NorthEast)
}

func (t Territory) compile() (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + t.Pattern + ")")
	if err != nil {
		return nil, fmt.Errorf("territory %s: invalid pattern %q: %w", t.Key, t.Pattern, err)
	}
	return re, nil
}

type file struct {
	Territories []Territory `yaml:"territories"`
}

// LoadFile reads territory definitions from a YAML file.
func LoadFile(path string) ([]Territory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read territories file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML territory definitions.
func Parse(data []byte) ([]Territory, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode territories: %w", err)
	}
	if len(f.Territories) == 0 {
		return nil, fmt.Errorf("no territories defined")
	}
	seen := make(map[string]struct{}, len(f.Territories))
	for _, t := range f.Territories {
		if t.Key == "" {
			return nil, fmt.Errorf("territory without key")
		}
		if _, dup := seen[t.Key]; dup {
			return nil, fmt.Errorf("duplicate territory %s", t.Key)
		}
		seen[t.Key] = struct{}{}
		if _, err := t.compile(); err != nil {
			return nil, err
		}
	}
	return f.Territories, nil
}
