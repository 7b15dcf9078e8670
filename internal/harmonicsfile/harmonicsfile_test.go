package harmonicsfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bostonYAML = `
stations:
  - id: "8443970"
    name: Boston
    timezone: America/New_York
    latitude: 42.3548
    longitude: -71.0534
    units: ft
    datum: 5.1
    mark_level: 9.0
    constituents:
      - name: M2
        amplitude: 4.5
        phase: 110
        first_year: 2025
        node_factors: [1.02, 1.03]
        equilibrium_args: [200.5, 10.25]
      - {name: S2, amplitude: 0.7, phase: 150}
      - {name: X9, speed: 12.5, amplitude: 0.1, phase: 0}
  - id: "8444162"
    name: Weymouth Fore River
    reference: "8443970"
    offsets:
      max_time_add: "0:10"
      min_time_add: 25m
      flood_begins: "-0:30"
      max_level_multiply: 1.05
      max_level_add: 0.2
`

const bostonTOML = `
[[stations]]
id = "8443970"
name = "Boston"
timezone = "America/New_York"
latitude = 42.3548
longitude = -71.0534
units = "ft"
datum = 5.1
mark_level = 9.0

  [[stations.constituents]]
  name = "M2"
  amplitude = 4.5
  phase = 110.0
  first_year = 2025
  node_factors = [1.02, 1.03]
  equilibrium_args = [200.5, 10.25]

  [[stations.constituents]]
  name = "S2"
  amplitude = 0.7
  phase = 150.0

  [[stations.constituents]]
  name = "X9"
  speed = 12.5
  amplitude = 0.1
  phase = 0.0

[[stations]]
id = "8444162"
name = "Weymouth Fore River"
reference = "8443970"

  [stations.offsets]
  max_time_add = "0:10"
  min_time_add = "25m"
  flood_begins = "-0:30"
  max_level_multiply = 1.05
  max_level_add = 0.2
`

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		format Format
		doc    string
	}{
		{FormatYAML, bostonYAML},
		{FormatTOML, bostonTOML},
	} {
		t.Run(string(tc.format), func(t *testing.T) {
			defs, err := Parse(strings.NewReader(tc.doc), tc.format)
			require.NoError(t, err)
			require.Len(t, defs, 2)

			ref := defs[0]
			assert.Equal(t, "8443970", ref.ID)
			assert.Equal(t, "America/New_York", ref.Timezone)
			require.NotNil(t, ref.Latitude)
			assert.InDelta(t, 42.3548, *ref.Latitude, 1e-12)
			require.NotNil(t, ref.MarkLevel)
			assert.InDelta(t, 9.0, *ref.MarkLevel, 1e-12)
			require.Len(t, ref.Constituents, 3)
			assert.InDelta(t, 28.9841042, ref.Constituents[0].Speed, 1e-9)
			assert.Equal(t, 2025, ref.Constituents[0].FirstYear)
			assert.Equal(t, []float64{1.02, 1.03}, ref.Constituents[0].NodeFactors)
			assert.InDelta(t, 30.0, ref.Constituents[1].Speed, 1e-9)
			assert.InDelta(t, 12.5, ref.Constituents[2].Speed, 1e-9)
			assert.Nil(t, ref.Offsets)

			sub := defs[1]
			assert.True(t, sub.IsSubordinate())
			require.NotNil(t, sub.Offsets)
			assert.Equal(t, 10*time.Minute, sub.Offsets.MaxTimeAdd)
			assert.Equal(t, 25*time.Minute, sub.Offsets.MinTimeAdd)
			require.NotNil(t, sub.Offsets.FloodBegins)
			assert.Equal(t, -30*time.Minute, *sub.Offsets.FloodBegins)
			assert.Nil(t, sub.Offsets.EbbBegins)
			assert.InDelta(t, 1.05, sub.Offsets.MaxLevelMultiply, 1e-12)
			assert.InDelta(t, 1.0, sub.Offsets.MinLevelMultiply, 1e-12)
			assert.InDelta(t, 0.2, sub.Offsets.MaxLevelAdd, 1e-12)

			st, err := sub.Station(&ref)
			require.NoError(t, err)
			assert.Equal(t, "America/New_York", st.Timezone)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		doc    string
		errMsg string
	}{
		{"unknown yaml key", FormatYAML, "stations:\n  - id: a\n    nmae: x\n", "YAML parse error"},
		{"unknown toml key", FormatTOML, "[[stations]]\nid = \"a\"\nnmae = \"x\"\n", "unknown key"},
		{"unknown constituent", FormatYAML, "stations:\n  - {id: a, name: x, units: ft, constituents: [{name: ZZ9, amplitude: 1}]}\n", "not a standard constituent"},
		{"bad offset", FormatYAML, "stations:\n  - {id: b, name: y, reference: a, offsets: {max_time_add: \"1:75\"}}\n", "max_time_add"},
		{"offsets on reference", FormatYAML, "stations:\n  - {id: a, name: x, units: ft, offsets: {max_level_add: 1}}\n", "need a reference"},
		{"constituents on subordinate", FormatYAML, "stations:\n  - {id: b, name: y, reference: a, constituents: [{name: M2, amplitude: 1}]}\n", "cannot list constituents"},
		{"duplicate", FormatYAML, "stations:\n  - {id: b, name: y, reference: a}\n  - {id: b, name: z, reference: a}\n", "defined twice"},
		{"missing name", FormatYAML, "stations:\n  - {id: b, reference: a}\n", "missing name"},
		{"bad format", Format("xml"), "", "unsupported format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc), tt.format)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	defs, err := Parse(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "boston.yml")
	tomlPath := filepath.Join(dir, "boston.toml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(bostonYAML), 0o644))
	require.NoError(t, os.WriteFile(tomlPath, []byte(bostonTOML), 0o644))

	fromYAML, err := Load(yamlPath)
	require.NoError(t, err)
	fromTOML, err := Load(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, fromYAML, fromTOML)

	_, err = Load(filepath.Join(dir, "boston.json"))
	assert.Error(t, err)
	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"1:25", 85 * time.Minute, false},
		{"+0:05", 5 * time.Minute, false},
		{"-1:25", -85 * time.Minute, false},
		{"-45m", -45 * time.Minute, false},
		{"2h", 2 * time.Hour, false},
		{"1:60", 0, true},
		{"x:10", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOffset(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStandardSpeed(t *testing.T) {
	v, ok := StandardSpeed(" m2 ")
	assert.True(t, ok)
	assert.InDelta(t, 28.9841042, v, 1e-9)
	_, ok = StandardSpeed("Z0")
	assert.False(t, ok)
}
