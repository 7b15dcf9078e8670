// Package config holds the engine settings shared by every prediction entry
// point and loads them through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Event mask letters. A letter present in the mask suppresses that kind of
// sun/moon event.
const (
	MaskPhase    = 'p'
	MaskSunrise  = 'S'
	MaskSunset   = 's'
	MaskMoonrise = 'M'
	MaskMoonset  = 'm'
)

const maskLetters = "pSsMm"

// Engine carries the precision settings and event mask. It is passed by value
// into every engine entry point.
type Engine struct {
	// Epsilon is the time precision of every root search.
	Epsilon time.Duration `mapstructure:"epsilon"`
	// SafetyMargin is the duplicate-suppression window and the overlap used
	// when extending an event stream.
	SafetyMargin time.Duration `mapstructure:"safety_margin"`
	// EventMask lists the sun/moon event kinds to leave out.
	EventMask string `mapstructure:"event_mask"`
}

// Default returns the stock engine settings.
func Default() Engine {
	return Engine{
		Epsilon:      15 * time.Second,
		SafetyMargin: 60 * time.Second,
	}
}

// Validate checks the engine invariants.
func (e Engine) Validate() error {
	if e.Epsilon <= 0 {
		return fmt.Errorf("%w: epsilon must be positive, got %v", ErrInvalid, e.Epsilon)
	}
	if e.SafetyMargin <= e.Epsilon {
		return fmt.Errorf("%w: safety margin %v must exceed epsilon %v", ErrInvalid, e.SafetyMargin, e.Epsilon)
	}
	for _, r := range e.EventMask {
		if !strings.ContainsRune(maskLetters, r) {
			return fmt.Errorf("%w: unknown event mask letter %q", ErrInvalid, r)
		}
	}
	return nil
}

// Masked reports whether the mask suppresses the given letter.
func (e Engine) Masked(letter rune) bool {
	return strings.ContainsRune(e.EventMask, letter)
}

// NOAA locates the CO-OPS web services. Empty URLs mean the public ones.
type NOAA struct {
	DataURL     string `mapstructure:"data_url"`
	MetadataURL string `mapstructure:"metadata_url"`
}

// Settings is everything the CLI reads from config files and the
// environment.
type Settings struct {
	Engine   `mapstructure:",squash"`
	DBPath   string `mapstructure:"db"`
	Timezone string `mapstructure:"timezone"`
	NOAA     NOAA   `mapstructure:"noaa"`

	// GeocoderURL is a Nominatim compatible search endpoint.
	GeocoderURL string `mapstructure:"geocoder_url"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper, dbPath string) {
	d := Default()
	v.SetDefault("epsilon", d.Epsilon)
	v.SetDefault("safety_margin", d.SafetyMargin)
	v.SetDefault("event_mask", d.EventMask)
	v.SetDefault("db", dbPath)
	v.SetDefault("timezone", "")
	v.SetDefault("noaa.data_url", "")
	v.SetDefault("noaa.metadata_url", "")
	v.SetDefault("geocoder_url", "")
}

// Load decodes and validates settings from v.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := s.Engine.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
