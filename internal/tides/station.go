// Package tides finds the tide and current events of a station: extrema,
// slack water and mark crossings.
package tides

import (
	"time"

	"github.com/ngmaloney/tidecast/internal/harmonics"
	"github.com/ngmaloney/tidecast/internal/models"
)

// Offsets turn a reference model into a subordinate station prediction.
//
// A zero level multiplier is read as 1. FloodBegins and EbbBegins are
// optional; without them slack water is interpolated.
type Offsets struct {
	MaxTimeAdd       time.Duration
	MinTimeAdd       time.Duration
	FloodBegins      *time.Duration
	EbbBegins        *time.Duration
	MaxLevelMultiply float64
	MinLevelMultiply float64
	MaxLevelAdd      float64
	MinLevelAdd      float64
}

func (o *Offsets) maxMultiply() float64 {
	if o.MaxLevelMultiply == 0 {
		return 1
	}
	return o.MaxLevelMultiply
}

func (o *Offsets) minMultiply() float64 {
	if o.MinLevelMultiply == 0 {
		return 1
	}
	return o.MinLevelMultiply
}

// timeBounds returns the smallest and largest time offset in use.
func (o *Offsets) timeBounds() (lo, hi time.Duration) {
	lo, hi = o.MaxTimeAdd, o.MaxTimeAdd
	consider := func(d time.Duration) {
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	consider(o.MinTimeAdd)
	if o.FloodBegins != nil {
		consider(*o.FloodBegins)
	}
	if o.EbbBegins != nil {
		consider(*o.EbbBegins)
	}
	return lo, hi
}

// Station is everything the detectors need to know about a location.
type Station struct {
	ID          string
	Name        string
	Model       *harmonics.Model
	Offsets     *Offsets // nil for reference stations
	MarkLevel   *float64
	Coordinates *models.Coordinates
	Timezone    string
}

// IsSubordinate reports whether predictions are corrected by offsets.
func (s *Station) IsSubordinate() bool { return s.Offsets != nil }

// IsCurrent reports whether the station predicts current velocity.
func (s *Station) IsCurrent() bool { return s.Model.IsCurrent() }

func (s *Station) haveFloodBegins() bool {
	return s.Offsets == nil || s.Offsets.FloodBegins != nil
}

func (s *Station) haveEbbBegins() bool {
	return s.Offsets == nil || s.Offsets.EbbBegins != nil
}
