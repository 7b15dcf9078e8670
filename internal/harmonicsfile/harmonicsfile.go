// Package harmonicsfile reads station definitions from YAML or TOML
// harmonics files.
//
// A file holds a list of stations. Reference stations list their harmonic
// constituents; subordinate stations name a reference station and give time
// and level offsets:
//
//	stations:
//	  - id: "8443970"
//	    name: Boston
//	    units: ft
//	    datum: 5.1
//	    constituents:
//	      - {name: M2, amplitude: 4.5, phase: 110}
//	  - id: "8444162"
//	    name: Weymouth Fore River
//	    reference: "8443970"
//	    offsets: {max_time_add: "0:10", min_time_add: 25m, max_level_multiply: 1.05}
package harmonicsfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ngmaloney/tidecast/internal/harmonics"
	"github.com/ngmaloney/tidecast/internal/stations"
	"github.com/ngmaloney/tidecast/internal/tides"
	"gopkg.in/yaml.v3"
)

// Format is a harmonics file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DetectFormat determines the file format from its extension
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unsupported harmonics file %s: want .yaml, .yml or .toml", filepath.Base(path))
}

type file struct {
	Stations []stationDoc `yaml:"stations" toml:"stations"`
}

type stationDoc struct {
	ID           string           `yaml:"id" toml:"id"`
	Name         string           `yaml:"name" toml:"name"`
	Timezone     string           `yaml:"timezone" toml:"timezone"`
	Latitude     *float64         `yaml:"latitude" toml:"latitude"`
	Longitude    *float64         `yaml:"longitude" toml:"longitude"`
	Units        string           `yaml:"units" toml:"units"`
	Datum        float64          `yaml:"datum" toml:"datum"`
	MarkLevel    *float64         `yaml:"mark_level" toml:"mark_level"`
	Reference    string           `yaml:"reference" toml:"reference"`
	Constituents []constituentDoc `yaml:"constituents" toml:"constituents"`
	Offsets      *offsetsDoc      `yaml:"offsets" toml:"offsets"`
}

type constituentDoc struct {
	Name            string    `yaml:"name" toml:"name"`
	Speed           *float64  `yaml:"speed" toml:"speed"`
	Amplitude       float64   `yaml:"amplitude" toml:"amplitude"`
	Phase           float64   `yaml:"phase" toml:"phase"`
	FirstYear       int       `yaml:"first_year" toml:"first_year"`
	NodeFactors     []float64 `yaml:"node_factors" toml:"node_factors"`
	EquilibriumArgs []float64 `yaml:"equilibrium_args" toml:"equilibrium_args"`
}

type offsetsDoc struct {
	MaxTimeAdd       string   `yaml:"max_time_add" toml:"max_time_add"`
	MinTimeAdd       string   `yaml:"min_time_add" toml:"min_time_add"`
	FloodBegins      *string  `yaml:"flood_begins" toml:"flood_begins"`
	EbbBegins        *string  `yaml:"ebb_begins" toml:"ebb_begins"`
	MaxLevelMultiply *float64 `yaml:"max_level_multiply" toml:"max_level_multiply"`
	MinLevelMultiply *float64 `yaml:"min_level_multiply" toml:"min_level_multiply"`
	MaxLevelAdd      float64  `yaml:"max_level_add" toml:"max_level_add"`
	MinLevelAdd      float64  `yaml:"min_level_add" toml:"min_level_add"`
}

// Load reads and converts the harmonics file at path.
func Load(path string) ([]stations.Definition, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening harmonics file: %w", err)
	}
	defer f.Close()
	return Parse(f, format)
}

// Parse decodes a harmonics document. Unknown keys are rejected so that
// misspelt offsets do not silently default to zero.
func Parse(r io.Reader, format Format) ([]stations.Definition, error) {
	var doc file
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("YAML parse error: %w", err)
		}
	case FormatTOML:
		content, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading harmonics file: %w", err)
		}
		md, err := toml.NewDecoder(bytes.NewReader(content)).Decode(&doc)
		if err != nil {
			return nil, fmt.Errorf("TOML parse error: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("TOML parse error: unknown key %s", undecoded[0])
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	defs := make([]stations.Definition, 0, len(doc.Stations))
	seen := make(map[string]bool, len(doc.Stations))
	for i, s := range doc.Stations {
		def, err := s.definition()
		if err != nil {
			return nil, fmt.Errorf("station %d: %w", i+1, err)
		}
		if seen[def.ID] {
			return nil, fmt.Errorf("station %s defined twice", def.ID)
		}
		seen[def.ID] = true
		defs = append(defs, def)
	}
	return defs, nil
}

func (s stationDoc) definition() (stations.Definition, error) {
	def := stations.Definition{
		ID:        s.ID,
		Name:      s.Name,
		Timezone:  s.Timezone,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Units:     s.Units,
		Datum:     s.Datum,
		MarkLevel: s.MarkLevel,
		Reference: s.Reference,
	}

	if s.Reference != "" && len(s.Constituents) > 0 {
		return def, fmt.Errorf("%s: a subordinate station cannot list constituents", s.ID)
	}
	if s.Reference == "" && s.Offsets != nil {
		return def, fmt.Errorf("%s: offsets need a reference station", s.ID)
	}

	for _, c := range s.Constituents {
		hc, err := c.constituent()
		if err != nil {
			return def, fmt.Errorf("%s: %w", s.ID, err)
		}
		def.Constituents = append(def.Constituents, hc)
	}

	if s.Reference != "" {
		offsets := &tides.Offsets{}
		if s.Offsets != nil {
			var err error
			if offsets, err = s.Offsets.offsets(); err != nil {
				return def, fmt.Errorf("%s: %w", s.ID, err)
			}
		}
		def.Offsets = offsets
	}

	if err := def.Validate(); err != nil {
		return def, err
	}
	return def, nil
}

func (c constituentDoc) constituent() (harmonics.Constituent, error) {
	hc := harmonics.Constituent{
		Name:            c.Name,
		Amplitude:       c.Amplitude,
		Phase:           c.Phase,
		FirstYear:       c.FirstYear,
		NodeFactors:     c.NodeFactors,
		EquilibriumArgs: c.EquilibriumArgs,
	}
	switch {
	case c.Speed != nil:
		hc.Speed = *c.Speed
	default:
		speed, ok := StandardSpeed(c.Name)
		if !ok {
			return hc, fmt.Errorf("constituent %s: no speed given and not a standard constituent", c.Name)
		}
		hc.Speed = speed
	}
	return hc, nil
}

func (o offsetsDoc) offsets() (*tides.Offsets, error) {
	var err error
	out := &tides.Offsets{
		MaxLevelMultiply: 1,
		MinLevelMultiply: 1,
		MaxLevelAdd:      o.MaxLevelAdd,
		MinLevelAdd:      o.MinLevelAdd,
	}
	if o.MaxLevelMultiply != nil {
		out.MaxLevelMultiply = *o.MaxLevelMultiply
	}
	if o.MinLevelMultiply != nil {
		out.MinLevelMultiply = *o.MinLevelMultiply
	}
	if out.MaxTimeAdd, err = ParseOffset(o.MaxTimeAdd); err != nil {
		return nil, fmt.Errorf("max_time_add: %w", err)
	}
	if out.MinTimeAdd, err = ParseOffset(o.MinTimeAdd); err != nil {
		return nil, fmt.Errorf("min_time_add: %w", err)
	}
	if out.FloodBegins, err = optionalOffset(o.FloodBegins); err != nil {
		return nil, fmt.Errorf("flood_begins: %w", err)
	}
	if out.EbbBegins, err = optionalOffset(o.EbbBegins); err != nil {
		return nil, fmt.Errorf("ebb_begins: %w", err)
	}
	return out, nil
}

func optionalOffset(s *string) (*time.Duration, error) {
	if s == nil {
		return nil, nil
	}
	d, err := ParseOffset(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ParseOffset reads a time offset either as a Go duration ("-1h25m") or as
// signed hours and minutes ("-1:25"). An empty string is zero.
func ParseOffset(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	hours, minutes, ok := strings.Cut(s, ":")
	if !ok {
		return time.ParseDuration(s)
	}

	sign := time.Duration(1)
	switch {
	case strings.HasPrefix(hours, "-"):
		sign, hours = -1, hours[1:]
	case strings.HasPrefix(hours, "+"):
		hours = hours[1:]
	}
	h, err := strconv.Atoi(hours)
	if err != nil || h < 0 {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	return sign * (time.Duration(h)*time.Hour + time.Duration(m)*time.Minute), nil
}
