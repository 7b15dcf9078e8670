package skycal

import (
	"fmt"
	"time"

	"github.com/ngmaloney/tidecast/internal/models"
	"github.com/ngmaloney/tidecast/internal/rootfind"
)

// Body is the object whose rising and setting is searched for.
type Body int

const (
	Sun Body = iota
	Moon
)

func (b Body) String() string {
	switch b {
	case Sun:
		return "sun"
	case Moon:
		return "moon"
	}
	return fmt.Sprintf("Body(%d)", int(b))
}

// RiseAltitude is the apparent altitude in degrees of the upper limb at
// rise and set for an observer at sea level, refraction included.
const RiseAltitude = -0.83

const (
	seedInterval = 4 * time.Hour
	maxSeeds     = 12
)

// Altitude returns the topocentric altitude of body in degrees.
func Altitude(at time.Time, c models.Coordinates, body Body) float64 {
	return altitude(julianDay(at), c.Latitude, -c.Longitude/15, body)
}

// NextRiseOrSet returns the first rise or set of body strictly after
// after+eps. ok is false when no crossing of the rise altitude is found
// within two days of seeds, as happens near the poles.
func NextRiseOrSet(after time.Time, c models.Coordinates, body Body, eps time.Duration) (models.Event, bool) {
	orig := after.Add(eps)
	alt := func(t time.Time) float64 { return Altitude(t, c, body) }
	lookingForRise := alt(orig) < RiseAltitude
	opts := rootfind.DefaultSecantOptions(eps)

	seed := orig
	for i := 0; i < maxSeeds; i++ {
		t, rising, ok := rootfind.Secant(alt, seed, RiseAltitude, opts)
		seed = seed.Add(seedInterval)
		if !ok || !t.After(orig) || rising != lookingForRise {
			continue
		}
		return models.Event{Time: t, Type: riseSetType(body, rising)}, true
	}
	return models.Event{}, false
}

func riseSetType(body Body, rising bool) models.EventType {
	switch {
	case body == Moon && rising:
		return models.EventMoonrise
	case body == Moon:
		return models.EventMoonset
	case rising:
		return models.EventSunrise
	}
	return models.EventSunset
}

// SunIsUp reports whether the sun is at or above the rise altitude.
func SunIsUp(at time.Time, c models.Coordinates) bool {
	return Altitude(at, c, Sun) >= RiseAltitude
}
